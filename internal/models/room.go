package models

import "time"

// Room представляет учебную комнату, в которую участники входят по коду
type Room struct {
	CreatedAt time.Time `json:"created_at"` // время создания комнаты
	Code      string    `json:"code"`       // код комнаты (8 символов, верхний регистр)
	Creator   string    `json:"creator"`    // имя участника, создавшего комнату
}
