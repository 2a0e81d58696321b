package models

import "time"

const (
	// AnnotationTypeHighlight тип выделения
	AnnotationTypeHighlight = "highlight"

	// DefaultHighlightColor цвет выделения по умолчанию
	DefaultHighlightColor = "#ffff00"
)

// Rect задает прямоугольник в пиксельных координатах отрисованной страницы
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Annotation представляет выделение на странице документа.
// Принадлежит ровно одному документу.
type Annotation struct {
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
	ID          string     `json:"id"`
	DocumentID  string     `json:"document_id"`
	Type        string     `json:"type"`
	Text        string     `json:"text"`
	Color       string     `json:"color"`
	CreatedBy   string     `json:"created_by"`
	ModifiedBy  string     `json:"modified_by,omitempty"`
	Coordinates Rect       `json:"coordinates"`
	Page        int        `json:"page"`
}

// AnnotationUpdates содержит изменяемые поля аннотации.
// nil означает "не менять".
type AnnotationUpdates struct {
	Text        *string `json:"text,omitempty"`
	Color       *string `json:"color,omitempty"`
	Coordinates *Rect   `json:"coordinates,omitempty"`
}

// IsEmpty возвращает true, если ни одно поле не задано
func (u AnnotationUpdates) IsEmpty() bool {
	return u.Text == nil && u.Color == nil && u.Coordinates == nil
}

// Apply применяет изменения и проставляет автора и время изменения.
// Менять можно только text, color и coordinates.
func (a *Annotation) Apply(u AnnotationUpdates, by string, at time.Time) {
	if u.Text != nil {
		a.Text = *u.Text
	}
	if u.Color != nil {
		a.Color = *u.Color
	}
	if u.Coordinates != nil {
		a.Coordinates = *u.Coordinates
	}
	a.ModifiedBy = by
	modified := at
	a.ModifiedAt = &modified
}

// Clone создает глубокую копию аннотации
func (a *Annotation) Clone() *Annotation {
	c := *a
	if a.ModifiedAt != nil {
		m := *a.ModifiedAt
		c.ModifiedAt = &m
	}
	return &c
}
