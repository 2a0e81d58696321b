package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// UploadFile загружаемый файл
type UploadFile struct {
	Content  io.Reader
	Name     string
	MimeType string
	Size     int64
}

// OpenUpload открывает файл для загрузки и определяет его MIME тип по содержимому.
// Вызывающий закрывает возвращенный io.Closer.
func OpenUpload(path string) (UploadFile, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadFile{}, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return UploadFile{}, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = f.Close()
		return UploadFile{}, nil, fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return UploadFile{}, nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	mimeType := http.DetectContentType(head[:n])
	// DetectContentType добавляет параметры (charset)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}

	return UploadFile{
		Content:  f,
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     info.Size(),
	}, f, nil
}
