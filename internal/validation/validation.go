package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Error ошибка валидации пользовательского ввода.
// Возвращается до любого сетевого вызова.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const (
	// MaxDisplayNameLen максимальная длина отображаемого имени (в символах)
	MaxDisplayNameLen = 64
	// MaxUploadSize максимальный размер загружаемого PDF (50MB)
	MaxUploadSize = 50 * 1024 * 1024
	// PDFMimeType единственный допустимый MIME тип
	PDFMimeType = "application/pdf"
)

// RoomCodePattern код комнаты: латинские буквы в верхнем регистре и цифры
var RoomCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,16}$`)

// ValidateDisplayName проверяет отображаемое имя и возвращает его без пробелов по краям
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &Error{Field: "username", Message: "please enter your name"}
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", &Error{
			Field:   "username",
			Message: fmt.Sprintf("name must not exceed %d characters", MaxDisplayNameLen),
		}
	}
	return name, nil
}

// NormalizeRoomCode обрезает пробелы и переводит код в верхний регистр
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateRoomCode нормализует код комнаты и проверяет его формат
func ValidateRoomCode(code string) (string, error) {
	code = NormalizeRoomCode(code)
	if code == "" {
		return "", &Error{Field: "room_code", Message: "please enter a room code"}
	}
	if !RoomCodePattern.MatchString(code) {
		return "", &Error{Field: "room_code", Message: "room code can only contain letters and numbers"}
	}
	return code, nil
}

// ValidateUpload проверяет тип и размер PDF перед загрузкой
func ValidateUpload(mimeType string, size int64) error {
	if mimeType != PDFMimeType {
		return &Error{Field: "file", Message: "please select a PDF file"}
	}
	if size > MaxUploadSize {
		return &Error{Field: "file", Message: "file size must be less than 50MB"}
	}
	return nil
}

// IsPDFFilename проверяет расширение файла (без учета регистра)
func IsPDFFilename(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
