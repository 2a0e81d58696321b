package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/metrics"
	"github.com/iudanet/studyroom/internal/server/storage"
	"github.com/iudanet/studyroom/internal/validation"
	"github.com/iudanet/studyroom/pkg/api"
)

const (
	// память под multipart форму, остальное во временных файлах
	multipartMemory = 32 << 20

	uploadTimestampLayout = "20060102_150405_"
)

// DocumentBroadcaster сообщает участникам комнаты о новом документе
type DocumentBroadcaster interface {
	BroadcastDocument(ctx context.Context, doc *models.Document)
}

// UploadStorage хранилище, нужное для загрузки документов
type UploadStorage interface {
	storage.RoomStorage
	storage.DocumentStorage
}

// UploadHandler обрабатывает загрузку и выдачу PDF
type UploadHandler struct {
	logger      *slog.Logger
	store       UploadStorage
	broadcaster DocumentBroadcaster
	now         func() time.Time
	newID       func() string
	uploadDir   string
	maxSize     int64
}

// NewUploadHandler создает handler загрузок; файлы сохраняются в uploadDir
func NewUploadHandler(logger *slog.Logger, store UploadStorage, broadcaster DocumentBroadcaster, uploadDir string, maxSize int64) *UploadHandler {
	return &UploadHandler{
		logger:      logger,
		store:       store,
		broadcaster: broadcaster,
		now:         time.Now,
		newID:       uuid.NewString,
		uploadDir:   uploadDir,
		maxSize:     maxSize,
	}
}

// Upload обрабатывает POST /api/upload_pdf (multipart: file, room_code, username)
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Запас на поля формы и заголовки частей
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			sendError(w, h.logger, h.tooLargeMessage(), http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.WarnContext(ctx, "failed to parse multipart form", slog.Any("error", err))
		sendError(w, h.logger, "No file provided", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(w, h.logger, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	code := validation.NormalizeRoomCode(r.FormValue("room_code"))
	if code == "" {
		sendError(w, h.logger, "Invalid room code", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetRoom(ctx, code); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			sendError(w, h.logger, "Invalid room code", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get room", slog.Any("error", err))
		sendError(w, h.logger, "Internal server error", http.StatusInternalServerError)
		return
	}

	if header.Filename == "" {
		sendError(w, h.logger, "No file selected", http.StatusBadRequest)
		return
	}
	if !validation.IsPDFFilename(header.Filename) {
		sendError(w, h.logger, "Invalid file type. Only PDF files are allowed.", http.StatusBadRequest)
		return
	}
	if header.Size > h.maxSize {
		sendError(w, h.logger, h.tooLargeMessage(), http.StatusRequestEntityTooLarge)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		username = defaultUsername
	}

	now := h.now()
	original := SecureFilename(header.Filename)
	if original == "" {
		original = "document.pdf"
	}
	// Сегмент id различает загрузки одного файла в одну и ту же секунду
	id := h.newID()
	stored := now.Format(uploadTimestampLayout) + storedNameSegment(id) + "_" + original

	written, err := h.save(stored, file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save upload", slog.Any("error", err))
		sendError(w, h.logger, "Internal server error", http.StatusInternalServerError)
		return
	}

	doc := &models.Document{
		ID:           id,
		RoomCode:     code,
		Filename:     stored,
		OriginalName: original,
		UploadedBy:   username,
		URL:          "/uploads/" + stored,
		UploadedAt:   now,
	}

	if err := h.store.AddDocument(ctx, doc); err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, stored))
		h.logger.ErrorContext(ctx, "failed to store document", slog.Any("error", err))
		sendError(w, h.logger, "Internal server error", http.StatusInternalServerError)
		return
	}

	metrics.DocumentsUploaded.Inc()
	metrics.UploadBytes.Add(float64(written))
	h.logger.InfoContext(ctx, "pdf uploaded",
		slog.String("room_code", code),
		slog.String("pdf_id", doc.ID),
		slog.String("uploaded_by", username),
		slog.Int64("size", written))

	h.broadcaster.BroadcastDocument(ctx, doc)

	pdf := api.DocumentFromModel(doc)
	sendJSON(w, h.logger, api.UploadResponse{
		Success: true,
		Message: "PDF uploaded successfully",
		PDF:     &pdf,
	}, http.StatusOK)
}

func (h *UploadHandler) save(name string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(h.uploadDir, name)
	// O_EXCL: существующий файл другого документа не перезаписывается
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return written, nil
}

// storedNameSegment первые 8 символов id документа
func storedNameSegment(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (h *UploadHandler) tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", h.maxSize/(1024*1024))
}

// ServeFile обрабатывает GET /uploads/{filename}
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		sendError(w, h.logger, "File not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.uploadDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		sendError(w, h.logger, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", api.PDFMimeType)
	http.ServeFile(w, r, path)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename приводит имя файла к безопасному виду:
// только ASCII буквы, цифры, '_', '.', '-', без ведущих точек и каталогов.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
