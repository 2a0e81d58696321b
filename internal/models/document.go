package models

import "time"

// Document представляет загруженный в комнату PDF.
// Клиент в каждый момент показывает не более одного документа (активный).
type Document struct {
	UploadedAt   time.Time `json:"uploaded_at"`   // время загрузки
	ID           string    `json:"id"`            // UUID документа
	RoomCode     string    `json:"room_code"`     // комната, в которую загружен документ
	Filename     string    `json:"filename"`      // имя файла в хранилище (с префиксом времени)
	OriginalName string    `json:"original_name"` // исходное имя файла
	UploadedBy   string    `json:"uploaded_by"`   // кто загрузил
	URL          string    `json:"url"`           // путь для скачивания (/uploads/<filename>)
}
