package store

import (
	"synoptic-engine/internal/domain"

	"github.com/google/uuid"
)

func (s *Store) AddWordGroup(req *domain.AddWordGroupRequest) bool {
	if req == nil || req.BlockID == "" {
		return false
	}
	return s.mutate("add_word_group", func(doc *domain.ProjectContent) bool {
		doc.WordGroups = append(doc.WordGroups, &domain.WordGroup{
			ID:          uuid.New().String(),
			BlockID:     req.BlockID,
			SourceRange: req.SourceRange,
			TargetRange: req.TargetRange,
			Color:       req.Color,
			Label:       req.Label,
		})
		return true
	})
}

func (s *Store) UpdateWordGroup(id string, req *domain.UpdateWordGroupRequest) bool {
	if req == nil {
		return false
	}
	return s.mutate("update_word_group", func(doc *domain.ProjectContent) bool {
		for _, w := range doc.WordGroups {
			if w.ID != id {
				continue
			}
			if req.SourceRange != nil {
				w.SourceRange = *req.SourceRange
			}
			if req.TargetRange != nil {
				w.TargetRange = *req.TargetRange
			}
			if req.Color != nil {
				w.Color = *req.Color
			}
			if req.Label != nil {
				w.Label = *req.Label
			}
			return true
		}
		return false
	})
}

func (s *Store) DeleteWordGroup(id string) bool {
	return s.mutate("delete_word_group", func(doc *domain.ProjectContent) bool {
		for i, w := range doc.WordGroups {
			if w.ID == id {
				doc.WordGroups = append(doc.WordGroups[:i], doc.WordGroups[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Store) AddArrow(req *domain.AddArrowRequest) bool {
	if req == nil || req.BlockID == "" {
		return false
	}
	return s.mutate("add_arrow", func(doc *domain.ProjectContent) bool {
		doc.Arrows = append(doc.Arrows, &domain.Arrow{
			ID:            uuid.New().String(),
			BlockID:       req.BlockID,
			SourceGroupID: req.SourceGroupID,
			TargetGroupID: req.TargetGroupID,
			Style:         req.Style,
		})
		return true
	})
}

func (s *Store) UpdateArrow(id string, req *domain.UpdateArrowRequest) bool {
	if req == nil {
		return false
	}
	return s.mutate("update_arrow", func(doc *domain.ProjectContent) bool {
		for _, a := range doc.Arrows {
			if a.ID != id {
				continue
			}
			if req.SourceGroupID != nil {
				a.SourceGroupID = *req.SourceGroupID
			}
			if req.TargetGroupID != nil {
				a.TargetGroupID = *req.TargetGroupID
			}
			if req.Style != nil {
				a.Style = *req.Style
			}
			return true
		}
		return false
	})
}

func (s *Store) DeleteArrow(id string) bool {
	return s.mutate("delete_arrow", func(doc *domain.ProjectContent) bool {
		for i, a := range doc.Arrows {
			if a.ID == id {
				doc.Arrows = append(doc.Arrows[:i], doc.Arrows[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Store) AddNote(req *domain.AddNoteRequest) bool {
	if req == nil || req.BlockID == "" {
		return false
	}
	return s.mutate("add_note", func(doc *domain.ProjectContent) bool {
		doc.Notes = append(doc.Notes, &domain.Note{
			ID:      uuid.New().String(),
			BlockID: req.BlockID,
			Text:    req.Text,
			X:       req.X,
			Y:       req.Y,
			Color:   req.Color,
		})
		return true
	})
}

func (s *Store) UpdateNote(id string, req *domain.UpdateNoteRequest) bool {
	if req == nil {
		return false
	}
	return s.mutate("update_note", func(doc *domain.ProjectContent) bool {
		for _, n := range doc.Notes {
			if n.ID != id {
				continue
			}
			if req.Text != nil {
				n.Text = *req.Text
			}
			if req.X != nil {
				n.X = *req.X
			}
			if req.Y != nil {
				n.Y = *req.Y
			}
			if req.Color != nil {
				n.Color = *req.Color
			}
			return true
		}
		return false
	})
}

func (s *Store) DeleteNote(id string) bool {
	return s.mutate("delete_note", func(doc *domain.ProjectContent) bool {
		for i, n := range doc.Notes {
			if n.ID == id {
				doc.Notes = append(doc.Notes[:i], doc.Notes[i+1:]...)
				return true
			}
		}
		return false
	})
}

// AppendAnnotations bulk-appends an AI annotation payload. Entries
// arriving without ids get one assigned; the payload is otherwise
// taken at face value.
func (s *Store) AppendAnnotations(payload *domain.AnnotationPayload) bool {
	if payload == nil {
		return false
	}
	if len(payload.WordGroups) == 0 && len(payload.Arrows) == 0 && len(payload.Notes) == 0 {
		return false
	}
	return s.mutate("append_annotations", func(doc *domain.ProjectContent) bool {
		for _, w := range payload.WordGroups {
			cp := *w
			if cp.ID == "" {
				cp.ID = uuid.New().String()
			}
			doc.WordGroups = append(doc.WordGroups, &cp)
		}
		for _, a := range payload.Arrows {
			cp := *a
			if cp.ID == "" {
				cp.ID = uuid.New().String()
			}
			doc.Arrows = append(doc.Arrows, &cp)
		}
		for _, n := range payload.Notes {
			cp := *n
			if cp.ID == "" {
				cp.ID = uuid.New().String()
			}
			doc.Notes = append(doc.Notes, &cp)
		}
		return true
	})
}

// OrphanedAnnotations lists annotations whose BlockID no longer
// resolves to a live block. Block deletion deliberately does not
// cascade, so callers can surface or sweep orphans themselves.
func (s *Store) OrphanedAnnotations() *domain.AnnotationPayload {
	doc := s.Document()
	live := map[string]bool{}
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			live[b.ID] = true
		}
	}
	out := &domain.AnnotationPayload{}
	for _, w := range doc.WordGroups {
		if !live[w.BlockID] {
			out.WordGroups = append(out.WordGroups, w)
		}
	}
	for _, a := range doc.Arrows {
		if !live[a.BlockID] {
			out.Arrows = append(out.Arrows, a)
		}
	}
	for _, n := range doc.Notes {
		if !live[n.BlockID] {
			out.Notes = append(out.Notes, n)
		}
	}
	return out
}
