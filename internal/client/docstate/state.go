// Package docstate хранит проекцию активного документа комнаты и его аннотаций.
package docstate

import (
	"github.com/iudanet/studyroom/internal/models"
)

// AnnotationOp вид инкрементального изменения аннотации
type AnnotationOp int

const (
	OpAdd AnnotationOp = iota
	OpUpdate
	OpDelete
)

// AnnotationEvent инкрементальное изменение аннотации документа DocumentID.
// Для OpDelete заполняется только AnnotationID.
type AnnotationEvent struct {
	Annotation   *models.Annotation
	DocumentID   string
	AnnotationID string
	Op           AnnotationOp
}

// State активный документ и его аннотации.
// Не потокобезопасен: используется из одной горутины.
type State struct {
	active *models.Document
	byID   map[string]*models.Annotation
	order  []string
}

// New создает пустое состояние без активного документа
func New() *State {
	return &State{byID: make(map[string]*models.Annotation)}
}

// ApplySnapshot применяет снимок комнаты: активным становится последний документ списка,
// его аннотации заменяют текущий набор. Пустой список оставляет состояние без документа.
func (s *State) ApplySnapshot(documents []*models.Document, annotations map[string][]*models.Annotation) {
	s.reset()
	if len(documents) == 0 {
		return
	}

	s.active = documents[len(documents)-1]
	for _, a := range annotations[s.active.ID] {
		s.put(a)
	}
}

// ApplyDocumentShared заменяет активный документ и очищает аннотации
func (s *State) ApplyDocumentShared(doc *models.Document) {
	s.reset()
	s.active = doc
}

// ApplyAnnotationEvent применяет изменение аннотации.
// События для неактивного документа отбрасываются; возвращает false, если событие не применено.
func (s *State) ApplyAnnotationEvent(ev AnnotationEvent) bool {
	if s.active == nil || ev.DocumentID != s.active.ID {
		return false
	}

	switch ev.Op {
	case OpAdd, OpUpdate:
		if ev.Annotation == nil {
			return false
		}
		s.put(ev.Annotation)
		return true
	case OpDelete:
		if _, ok := s.byID[ev.AnnotationID]; !ok {
			return false
		}
		delete(s.byID, ev.AnnotationID)
		for i, id := range s.order {
			if id == ev.AnnotationID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return true
	default:
		return false
	}
}

// Clear убирает активный документ (локальное действие "remove PDF")
func (s *State) Clear() {
	s.reset()
}

// Active возвращает активный документ или nil
func (s *State) Active() *models.Document {
	return s.active
}

// Annotation возвращает аннотацию активного документа по id
func (s *State) Annotation(id string) (*models.Annotation, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Annotations возвращает аннотации активного документа в порядке добавления
func (s *State) Annotations() []*models.Annotation {
	out := make([]*models.Annotation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// put добавляет или заменяет аннотацию (last write wins)
func (s *State) put(a *models.Annotation) {
	if _, exists := s.byID[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = a
}

func (s *State) reset() {
	s.active = nil
	s.byID = make(map[string]*models.Annotation)
	s.order = nil
}
