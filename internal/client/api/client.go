package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/studyroom/internal/validation"
	"github.com/iudanet/studyroom/pkg/api"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 5 * time.Minute
)

// Client представляет HTTP клиент для взаимодействия с сервером комнат
type Client struct {
	httpClient   *http.Client
	uploadClient *http.Client
	baseURL      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
	}
}

// BaseURL возвращает адрес сервера
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebSocketURL возвращает адрес real-time канала (ws:// или wss://)
func (c *Client) WebSocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// CreateRoom создает комнату и возвращает ее код
func (c *Client) CreateRoom(ctx context.Context, username string) (string, error) {
	name, err := validation.ValidateDisplayName(username)
	if err != nil {
		return "", err
	}

	var resp api.RoomResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/create_room", api.CreateRoomRequest{Username: name}, &resp); err != nil {
		return "", fmt.Errorf("create room request failed: %w", err)
	}
	if !resp.Success {
		return "", &RejectionError{Status: http.StatusOK, Message: resp.Message}
	}
	return resp.RoomCode, nil
}

// JoinRoom проверяет существование комнаты и возвращает ее нормализованный код
func (c *Client) JoinRoom(ctx context.Context, username, roomCode string) (string, error) {
	name, err := validation.ValidateDisplayName(username)
	if err != nil {
		return "", err
	}
	code, err := validation.ValidateRoomCode(roomCode)
	if err != nil {
		return "", err
	}

	var resp api.RoomResponse
	req := api.JoinRoomRequest{Username: name, RoomCode: code}
	if err := c.doRequest(ctx, http.MethodPost, "/api/join_room", req, &resp); err != nil {
		return "", fmt.Errorf("join room request failed: %w", err)
	}
	if !resp.Success {
		return "", &RejectionError{Status: http.StatusOK, Message: resp.Message}
	}
	return resp.RoomCode, nil
}

// UploadPDF загружает PDF в комнату.
// Документ появится у участников только после события pdf_uploaded.
// Тело multipart передается потоком, файл не читается в память целиком.
func (c *Client) UploadPDF(ctx context.Context, roomCode, username string, file UploadFile) (*api.Document, error) {
	// Валидация до любого сетевого вызова
	if err := validation.ValidateUpload(file.MimeType, file.Size); err != nil {
		return nil, err
	}
	code, err := validation.ValidateRoomCode(roomCode)
	if err != nil {
		return nil, err
	}
	name, err := validation.ValidateDisplayName(username)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	writeErr := make(chan error, 1)
	go func() {
		err := writeUploadForm(mw, code, name, file)
		_ = pw.CloseWithError(err)
		writeErr <- err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload_pdf", pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		<-writeErr
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp api.UploadResponse
	doErr := c.do(c.uploadClient, req, &resp)

	// Запрос завершен: освобождаем писателя, если сервер не дочитал тело
	_ = pr.Close()
	if err := <-writeErr; err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return nil, err
	}

	if doErr != nil {
		return nil, fmt.Errorf("upload request failed: %w", doErr)
	}
	if !resp.Success || resp.PDF == nil {
		return nil, &RejectionError{Status: http.StatusOK, Message: resp.Message}
	}
	return resp.PDF, nil
}

// writeUploadForm пишет поля формы и содержимое файла в multipart writer
func writeUploadForm(mw *multipart.Writer, code, username string, file UploadFile) error {
	if err := mw.WriteField("room_code", code); err != nil {
		return fmt.Errorf("failed to write room_code: %w", err)
	}
	if err := mw.WriteField("username", username); err != nil {
		return fmt.Errorf("failed to write username: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.MimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return nil
}

// DownloadDocument скачивает PDF по url из события pdf_uploaded.
// Относительный url разрешается относительно адреса сервера.
func (c *Client) DownloadDocument(ctx context.Context, docURL string, w io.Writer) (int64, error) {
	target := docURL
	if strings.HasPrefix(docURL, "/") {
		target = c.baseURL + docURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return 0, &NetworkError{Op: "download", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, &RejectionError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &NetworkError{Op: "download", Err: err}
	}
	return n, nil
}

// doRequest выполняет JSON запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(c.httpClient, req, result)
}

// do отправляет запрос и декодирует ответ
func (c *Client) do(hc *http.Client, req *http.Request, result any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return &RejectionError{Status: resp.StatusCode, Message: errResp.Message}
		}
		return &RejectionError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
