package api

// CreateRoomRequest представляет запрос на создание комнаты
type CreateRoomRequest struct {
	Username string `json:"username"` // имя создателя комнаты
}

// JoinRoomRequest представляет запрос на вход в комнату
type JoinRoomRequest struct {
	Username string `json:"username"`  // отображаемое имя участника
	RoomCode string `json:"room_code"` // код комнаты
}

// RoomResponse представляет ответ на создание комнаты или вход в нее
type RoomResponse struct {
	RoomCode string `json:"room_code,omitempty"` // код комнаты (при успехе)
	Message  string `json:"message,omitempty"`   // сообщение сервера
	Success  bool   `json:"success"`
}

// UploadResponse представляет ответ на загрузку PDF
type UploadResponse struct {
	PDF     *Document `json:"pdf,omitempty"`     // описание сохраненного документа
	Message string    `json:"message,omitempty"` // сообщение сервера
	Success bool      `json:"success"`
}

// RoomInfoResponse представляет ответ GET /room/{code}
type RoomInfoResponse struct {
	RoomCode string `json:"room_code"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// MaxUploadSize максимальный размер загружаемого PDF (50MB)
const MaxUploadSize = 50 * 1024 * 1024

// PDFMimeType единственный допустимый MIME тип загрузки
const PDFMimeType = "application/pdf"

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
