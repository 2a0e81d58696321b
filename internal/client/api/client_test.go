package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/studyroom/internal/validation"
	"github.com/iudanet/studyroom/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:5000/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:5000", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 5*time.Minute, client.uploadClient.Timeout)
}

func TestClient_WebSocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "http://localhost:5000", want: "ws://localhost:5000/ws"},
		{base: "https://rooms.example.com", want: "wss://rooms.example.com/ws"},
		{base: "https://example.com/study/", want: "wss://example.com/study/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := NewClient(tt.base).WebSocketURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestClient_CreateRoom проверяет успешное создание комнаты
func TestClient_CreateRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/create_room", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.CreateRoomRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		_ = json.NewEncoder(w).Encode(api.RoomResponse{
			Success:  true,
			RoomCode: "AB12CD34",
			Message:  "Room created successfully",
		})
	}))
	defer server.Close()

	code, err := NewClient(server.URL).CreateRoom(context.Background(), " alice ")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", code)
}

func TestClient_CreateRoom_EmptyNameNoNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreateRoom(context.Background(), "  ")

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, int32(0), calls.Load())
}

// TestClient_JoinRoom_Errors проверяет обработку ошибок при входе в комнату
func TestClient_JoinRoom_Errors(t *testing.T) {
	tests := []struct {
		responseBody any
		name         string
		wantMessage  string
		statusCode   int
	}{
		{
			name:         "room not found",
			statusCode:   http.StatusNotFound,
			responseBody: api.RoomResponse{Success: false, Message: "Room not found"},
			wantMessage:  "Room not found",
		},
		{
			name:         "success false with 200",
			statusCode:   http.StatusOK,
			responseBody: api.RoomResponse{Success: false, Message: "Room is closed"},
			wantMessage:  "Room is closed",
		},
		{
			name:         "plain text error",
			statusCode:   http.StatusInternalServerError,
			responseBody: "boom",
			wantMessage:  `"boom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/join_room", r.URL.Path)
				var req api.JoinRoomRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "AB12CD34", req.RoomCode)

				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(tt.responseBody)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).JoinRoom(context.Background(), "bob", "ab12cd34")
			require.Error(t, err)

			msg, ok := RejectionMessage(err)
			require.True(t, ok, "expected rejection, got %v", err)
			assert.Equal(t, tt.wantMessage, msg)
		})
	}
}

func TestClient_JoinRoom_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.RoomResponse{Success: true, RoomCode: "AB12CD34"})
	}))
	defer server.Close()

	code, err := NewClient(server.URL).JoinRoom(context.Background(), "bob", "ab12cd34")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", code)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).CreateRoom(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	_, rejected := RejectionMessage(err)
	assert.False(t, rejected)
}

func TestClient_UploadPDF(t *testing.T) {
	content := []byte("%PDF-1.4 test document")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload_pdf", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "AB12CD34", r.FormValue("room_code"))
		assert.Equal(t, "alice", r.FormValue("username"))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.pdf", fh.Filename)
		assert.Equal(t, "application/pdf", fh.Header.Get("Content-Type"))

		got, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, content, got)

		_ = json.NewEncoder(w).Encode(api.UploadResponse{
			Success: true,
			Message: "PDF uploaded successfully",
			PDF: &api.Document{
				ID:           "doc-1",
				Filename:     "20260101_120000_notes.pdf",
				OriginalName: "notes.pdf",
				UploadedBy:   "alice",
				URL:          "/uploads/20260101_120000_notes.pdf",
			},
		})
	}))
	defer server.Close()

	doc, err := NewClient(server.URL).UploadPDF(context.Background(), "AB12CD34", "alice", UploadFile{
		Name:     "notes.pdf",
		MimeType: "application/pdf",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "notes.pdf", doc.OriginalName)
}

// Файлы больше 50MB и не-PDF отклоняются до сетевого вызова
func TestClient_UploadPDF_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		errMsg   string
		size     int64
	}{
		{name: "60MB pdf", mimeType: "application/pdf", size: 60 * 1024 * 1024, errMsg: "less than 50MB"},
		{name: "text file", mimeType: "text/plain", size: 100, errMsg: "please select a PDF file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).UploadPDF(context.Background(), "AB12CD34", "alice", UploadFile{
				Name:     "file",
				MimeType: tt.mimeType,
				Size:     tt.size,
				Content:  strings.NewReader(""),
			})

			var vErr *validation.Error
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Message, tt.errMsg)
			assert.Equal(t, int32(0), calls.Load())
		})
	}
}

func TestClient_UploadPDF_InvalidNameNoNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).UploadPDF(context.Background(), "AB12CD34", "   ", UploadFile{
		Name:     "a.pdf",
		MimeType: "application/pdf",
		Size:     5,
		Content:  strings.NewReader("%PDF-"),
	})

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, int32(0), calls.Load())
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestClient_UploadPDF_ReadErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	readErr := errors.New("disk read failed")
	_, err := NewClient(server.URL).UploadPDF(context.Background(), "AB12CD34", "alice", UploadFile{
		Name:     "a.pdf",
		MimeType: "application/pdf",
		Size:     1024,
		Content:  failingReader{err: readErr},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}

func TestClient_UploadPDF_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "Invalid room code"})
	}))
	defer server.Close()

	_, err := NewClient(server.URL).UploadPDF(context.Background(), "ZZZZ9999", "alice", UploadFile{
		Name:     "a.pdf",
		MimeType: "application/pdf",
		Size:     5,
		Content:  strings.NewReader("%PDF-"),
	})

	var rErr *RejectionError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, http.StatusBadRequest, rErr.Status)
	assert.Equal(t, "Invalid room code", rErr.Message)
}

func TestClient_DownloadDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/a.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var buf bytes.Buffer
	n, err := client.DownloadDocument(context.Background(), "/uploads/a.pdf", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "%PDF-1.7", buf.String())

	_, err = client.DownloadDocument(context.Background(), "/uploads/missing.pdf", io.Discard)
	var rErr *RejectionError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, http.StatusNotFound, rErr.Status)
}

func TestOpenUpload(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.5\n%âãÏÓ\n1 0 obj"), 0600))

	file, closer, err := OpenUpload(pdfPath)
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, "doc.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.MimeType)
	assert.Positive(t, file.Size)

	// Содержимое читается с начала
	head := make([]byte, 5)
	_, err = io.ReadFull(file.Content, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("just text"), 0600))
	file, closer, err = OpenUpload(txtPath)
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, "text/plain", file.MimeType)

	_, _, err = OpenUpload(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
