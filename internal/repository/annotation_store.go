package repository

import (
	"pdf-annotator/internal/domain"
)

// MemoryAnnotationStore keeps the annotations of one editing session in
// insertion order, which is also the paint order.
//
// A MemoryAnnotationStore is not safe for concurrent use; the owning session
// serializes access.
type MemoryAnnotationStore struct {
	items []domain.Annotation
}

// NewMemoryAnnotationStore creates an empty store.
func NewMemoryAnnotationStore() *MemoryAnnotationStore {
	return &MemoryAnnotationStore{}
}

// Append adds an annotation on top of all existing ones.
func (s *MemoryAnnotationStore) Append(a domain.Annotation) {
	s.items = append(s.items, a.Clone())
}

// Get returns the annotation with the given id.
func (s *MemoryAnnotationStore) Get(id string) (domain.Annotation, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return domain.Annotation{}, false
}

// Replace overwrites the annotation with the same id, keeping its position.
func (s *MemoryAnnotationStore) Replace(a domain.Annotation) bool {
	i := s.indexOf(a.ID)
	if i < 0 {
		return false
	}
	s.items[i] = a.Clone()
	return true
}

// Remove deletes the annotation with the given id.
func (s *MemoryAnnotationStore) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// RemoveLast deletes the most recently appended annotation.
func (s *MemoryAnnotationStore) RemoveLast() (domain.Annotation, bool) {
	n := len(s.items)
	if n == 0 {
		return domain.Annotation{}, false
	}
	last := s.items[n-1]
	s.items[n-1] = domain.Annotation{}
	s.items = s.items[:n-1]
	return last, true
}

// ByPage returns the annotations of one page in insertion order.
func (s *MemoryAnnotationStore) ByPage(page int) []domain.Annotation {
	out := make([]domain.Annotation, 0)
	for _, a := range s.items {
		if a.Page == page {
			out = append(out, a.Clone())
		}
	}
	return out
}

// All returns every annotation in insertion order.
func (s *MemoryAnnotationStore) All() []domain.Annotation {
	out := make([]domain.Annotation, len(s.items))
	for i, a := range s.items {
		out[i] = a.Clone()
	}
	return out
}

// Len returns the number of annotations.
func (s *MemoryAnnotationStore) Len() int {
	return len(s.items)
}

func (s *MemoryAnnotationStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
