package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/iudanet/studyroom/internal/client/api"
	"github.com/iudanet/studyroom/internal/client/iocli"
	"github.com/iudanet/studyroom/internal/client/room"
	"github.com/iudanet/studyroom/internal/models"
)

// ANSI цвета для имен участников
var userColors = []string{
	"\033[35m", "\033[95m", "\033[34m", "\033[94m",
	"\033[36m", "\033[96m", "\033[32m", "\033[92m",
	"\033[33m", "\033[93m", "\033[31m", "\033[91m",
}

const colorReset = "\033[0m"

// Terminal выводит состояние комнаты в терминал.
// Реализует room.Renderer, room.ChatView и room.Notifier.
type Terminal struct {
	ctx        context.Context
	io         iocli.IO
	downloader *api.Client
	logger     *slog.Logger
	persistent map[string]string
	username   string
	cacheDir   string
	mu         sync.Mutex
	color      bool
	shown      bool
}

var (
	_ room.Renderer = (*Terminal)(nil)
	_ room.ChatView = (*Terminal)(nil)
	_ room.Notifier = (*Terminal)(nil)
)

// NewTerminal создает Terminal. Если cacheDir не пуст, документы скачиваются в него.
func NewTerminal(ctx context.Context, logger *slog.Logger, io iocli.IO, downloader *api.Client, username, cacheDir string) *Terminal {
	return &Terminal{
		ctx:        ctx,
		io:         io,
		downloader: downloader,
		logger:     logger,
		persistent: make(map[string]string),
		username:   username,
		cacheDir:   cacheDir,
		color:      io.IsInteractive(),
	}
}

func (t *Terminal) RenderDocument(doc *models.Document) {
	t.mu.Lock()
	t.shown = true
	t.mu.Unlock()

	t.io.Printf("📄 %s (shared by %s)\n", doc.OriginalName, doc.UploadedBy)
	if t.cacheDir == "" || t.downloader == nil {
		t.io.Printf("   %s\n", doc.URL)
		return
	}
	go t.download(doc)
}

func (t *Terminal) download(doc *models.Document) {
	name := doc.Filename
	if name == "" {
		name = doc.ID + ".pdf"
	}
	path := filepath.Join(t.cacheDir, filepath.Base(name))

	if err := os.MkdirAll(t.cacheDir, 0o755); err != nil {
		t.logger.Warn("Failed to create cache dir", "error", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		t.logger.Warn("Failed to create file", "path", path, "error", err)
		return
	}
	defer f.Close()

	if _, err := t.downloader.DownloadDocument(t.ctx, doc.URL, f); err != nil {
		t.logger.Warn("Failed to download PDF", "pdf_id", doc.ID, "error", err)
		t.io.Println("Failed to load PDF")
		return
	}
	t.io.Printf("   saved to %s\n", path)
}

func (t *Terminal) RenderAnnotation(a *models.Annotation) {
	line := fmt.Sprintf("   ▍ highlight %s on page %d at (%.0f, %.0f) by %s",
		a.ID, a.Page, a.Coordinates.X, a.Coordinates.Y, a.CreatedBy)
	if a.Text != "" {
		line += fmt.Sprintf(": %q", a.Text)
	}
	t.io.Println(line)
}

func (t *Terminal) RemoveAnnotation(id string) {
	t.io.Printf("   ▍ highlight %s removed\n", id)
}

func (t *Terminal) ClearDocument() {
	t.mu.Lock()
	shown := t.shown
	t.shown = false
	t.mu.Unlock()

	if shown {
		t.io.Println("📄 No PDF loaded")
	}
}

func (t *Terminal) ShowMessage(m models.ChatMessage) {
	switch m.Kind {
	case models.ChatSystem:
		t.io.Printf("ℹ %s\n", m.Text)
	case models.ChatOwn:
		t.io.Printf("[%s] You: %s\n", m.Timestamp.Local().Format("15:04"), m.Text)
	default:
		t.io.Printf("[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), t.colorize(m.Sender), m.Text)
	}
}

func (t *Terminal) ShowUserCount(n int) {
	t.io.Printf("👥 %d in room\n", n)
}

func (t *Terminal) Notify(n room.Notification) {
	if n.Persistent && n.Key != "" {
		t.mu.Lock()
		t.persistent[n.Key] = n.Message
		t.mu.Unlock()
	}
	t.io.Printf("[%s] %s\n", n.Level, n.Message)
}

func (t *Terminal) Dismiss(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.persistent, key)
}

// Pending возвращает активные постоянные уведомления
func (t *Terminal) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.persistent))
	for _, msg := range t.persistent {
		out = append(out, msg)
	}
	return out
}

// colorize раскрашивает имя постоянным для участника цветом
func (t *Terminal) colorize(name string) string {
	if !t.color {
		return name
	}
	return userColors[colorIndex(name)] + name + colorReset
}

func colorIndex(name string) int {
	var hash int32
	for _, r := range name {
		hash = r + ((hash << 5) - hash)
	}
	idx := int(hash % int32(len(userColors)))
	if idx < 0 {
		idx = -idx
	}
	return idx
}
