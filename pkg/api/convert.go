package api

import "github.com/iudanet/studyroom/internal/models"

// DocumentFromModel конвертирует models.Document в формат API
func DocumentFromModel(d *models.Document) Document {
	return Document{
		ID:           d.ID,
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		UploadedBy:   d.UploadedBy,
		UploadedAt:   d.UploadedAt,
		URL:          d.URL,
	}
}

// Model конвертирует документ API в models.Document
func (d Document) Model() *models.Document {
	return &models.Document{
		ID:           d.ID,
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		UploadedBy:   d.UploadedBy,
		UploadedAt:   d.UploadedAt,
		URL:          d.URL,
	}
}

// AnnotationFromModel конвертирует models.Annotation в формат API
func AnnotationFromModel(a *models.Annotation) Annotation {
	return Annotation{
		ID:          a.ID,
		Type:        a.Type,
		Page:        a.Page,
		Coordinates: Coordinates(a.Coordinates),
		Text:        a.Text,
		Color:       a.Color,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		ModifiedBy:  a.ModifiedBy,
		ModifiedAt:  a.ModifiedAt,
	}
}

// Model конвертирует аннотацию API в models.Annotation документа documentID
func (a Annotation) Model(documentID string) *models.Annotation {
	return &models.Annotation{
		ID:          a.ID,
		DocumentID:  documentID,
		Type:        a.Type,
		Page:        a.Page,
		Coordinates: models.Rect(a.Coordinates),
		Text:        a.Text,
		Color:       a.Color,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		ModifiedBy:  a.ModifiedBy,
		ModifiedAt:  a.ModifiedAt,
	}
}

// Model конвертирует изменения API в models.AnnotationUpdates
func (u AnnotationUpdates) Model() models.AnnotationUpdates {
	out := models.AnnotationUpdates{Text: u.Text, Color: u.Color}
	if u.Coordinates != nil {
		r := models.Rect(*u.Coordinates)
		out.Coordinates = &r
	}
	return out
}
