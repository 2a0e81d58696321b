package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/iudanet/studyroom/internal/client/room"
	"github.com/iudanet/studyroom/internal/client/transcript"
	"github.com/iudanet/studyroom/internal/client/transport"
	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/validation"
)

// runRoom подключается к комнате и запускает интерактивный цикл
func (c *Cli) runRoom(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: studyroom room CODE", ErrUsage)
	}

	code, err := validation.ValidateRoomCode(args[0])
	if err != nil {
		c.io.Println(describeError(err, ""))
		return err
	}

	// Имя определяется до любого сетевого вызова
	username, err := c.bootstrap.Resolve(ctx)
	if err != nil {
		return err
	}

	code, err = c.apiClient.JoinRoom(ctx, username, code)
	if err != nil {
		c.io.Println(describeError(err, "Failed to join room. Please try again."))
		return err
	}
	if err := c.bootstrap.Remember(ctx, username, code); err != nil {
		return err
	}

	wsURL, err := c.apiClient.WebSocketURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := NewTerminal(ctx, c.logger, c.io, c.apiClient, username, c.cfg.CacheDir)

	var conn *transport.Conn
	manager := room.NewManager(c.logger, code, username,
		room.EmitterFunc(func(event string, payload any) error { return conn.Emit(event, payload) }),
		term, term, term,
		room.Options{
			QuietRejoin: c.cfg.QuietRejoin,
			Transcript: transcript.Options{
				Capacity:        c.cfg.HistorySize,
				SuppressOwnEcho: c.cfg.DedupeEcho,
			},
		},
	)
	conn = transport.New(c.logger, wsURL, manager)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = manager.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = conn.Run(ctx)
	}()

	c.io.Printf("Connecting to room %s as %s... Type /help for commands.\n", code, username)
	err = c.inputLoop(ctx, manager, code, username)

	cancel()
	wg.Wait()
	return err
}

// inputLoop читает строки до /quit, конца ввода или отмены ctx
func (c *Cli) inputLoop(ctx context.Context, manager *room.Manager, code, username string) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := c.io.ReadInput("")
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		case line := <-lines:
			quit := c.handleLine(ctx, manager, code, username, line)
			if quit {
				return nil
			}
		}
	}
}

// handleLine выполняет одну строку ввода. Возвращает true для /quit.
func (c *Cli) handleLine(ctx context.Context, manager *room.Manager, code, username, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		if err := manager.SendMessage(ctx, line); err != nil {
			c.reportActionError(err)
		}
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		c.printRoomHelp()

	case "/share":
		c.io.Printf("Room code: %s - share it with your friends.\n", code)

	case "/who":
		v, err := manager.State(ctx)
		if err != nil {
			return false
		}
		c.io.Printf("👥 %d in room (%s)\n", v.UserCount, v.Connection)

	case "/doc":
		c.printDocument(ctx, manager)

	case "/upload":
		if rest == "" {
			c.io.Println("Usage: /upload PATH")
			return false
		}
		_ = c.uploadFile(ctx, code, username, rest)

	case "/highlight":
		page, x, y, err := parseHighlight(rest)
		if err != nil {
			c.io.Println("Usage: /highlight PAGE X Y")
			return false
		}
		if err := manager.AddHighlight(ctx, page, x, y); err != nil {
			c.reportActionError(err)
		}

	case "/note":
		id, text, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(text) == "" {
			c.io.Println("Usage: /note ID TEXT")
			return false
		}
		text = strings.TrimSpace(text)
		if err := manager.UpdateAnnotation(ctx, id, models.AnnotationUpdates{Text: &text}); err != nil {
			c.reportActionError(err)
		}

	case "/unhighlight":
		if rest == "" {
			c.io.Println("Usage: /unhighlight ID")
			return false
		}
		if err := manager.DeleteAnnotation(ctx, rest); err != nil {
			c.reportActionError(err)
		}

	case "/remove":
		if err := manager.RemoveDocument(ctx); err != nil {
			c.reportActionError(err)
		}

	default:
		c.io.Printf("Unknown command %s. Type /help for commands.\n", cmd)
	}
	return false
}

func (c *Cli) reportActionError(err error) {
	switch {
	case errors.Is(err, transport.ErrNotConnected):
		c.io.Println("Not connected. Trying to reconnect...")
	case errors.Is(err, room.ErrNoActiveDocument):
		c.io.Println("No PDF loaded")
	case errors.Is(err, room.ErrAnnotationNotFound):
		c.io.Println("No such highlight")
	case errors.Is(err, room.ErrInvalidPage):
		c.io.Println("Page must be 1 or greater")
	case errors.Is(err, context.Canceled):
	default:
		c.io.Printf("Error: %v\n", err)
	}
}

func (c *Cli) printDocument(ctx context.Context, manager *room.Manager) {
	v, err := manager.State(ctx)
	if err != nil {
		return
	}
	if v.Document == nil {
		c.io.Println("No PDF loaded")
		return
	}
	c.io.Printf("📄 %s (shared by %s)\n", v.Document.OriginalName, v.Document.UploadedBy)
	if len(v.Annotations) == 0 {
		c.io.Println("   no highlights yet")
		return
	}
	for _, a := range v.Annotations {
		line := fmt.Sprintf("   %s  page %d  by %s", a.ID, a.Page, a.CreatedBy)
		if a.Text != "" {
			line += fmt.Sprintf("  %q", a.Text)
		}
		c.io.Println(line)
	}
}

func (c *Cli) printRoomHelp() {
	c.io.Println("Type a message and press Enter to chat.")
	c.io.Println("  /upload PATH          Share a PDF with the room")
	c.io.Println("  /doc                  Show the current PDF and its highlights")
	c.io.Println("  /highlight PAGE X Y   Highlight around a point on a page")
	c.io.Println("  /note ID TEXT         Attach text to a highlight")
	c.io.Println("  /unhighlight ID       Remove a highlight")
	c.io.Println("  /remove               Close the PDF and tell the room")
	c.io.Println("  /who                  Show the participant count")
	c.io.Println("  /share                Show the room code")
	c.io.Println("  /quit                 Leave the room")
}

func parseHighlight(s string) (page int, x, y float64, err error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 arguments, got %d", len(fields))
	}
	if page, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, 0, err
	}
	if x, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, 0, err
	}
	if y, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return 0, 0, 0, err
	}
	return page, x, y, nil
}
