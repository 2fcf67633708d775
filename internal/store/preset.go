package store

import (
	"synoptic-engine/internal/domain"

	"github.com/google/uuid"
)

func (s *Store) AddStylePreset(req *domain.AddStylePresetRequest) bool {
	if req == nil || req.Name == "" || req.Kind == "" {
		return false
	}
	return s.mutate("add_style_preset", func(doc *domain.ProjectContent) bool {
		doc.StylePresets = append(doc.StylePresets, &domain.StylePreset{
			ID:       uuid.New().String(),
			Name:     req.Name,
			Kind:     req.Kind,
			Settings: req.Settings,
		})
		return true
	})
}

func (s *Store) UpdateStylePreset(id string, req *domain.UpdateStylePresetRequest) bool {
	if req == nil {
		return false
	}
	return s.mutate("update_style_preset", func(doc *domain.ProjectContent) bool {
		for _, p := range doc.StylePresets {
			if p.ID != id {
				continue
			}
			if req.Name != nil {
				p.Name = *req.Name
			}
			if req.Settings != nil {
				p.Settings = *req.Settings
			}
			return true
		}
		return false
	})
}

func (s *Store) DeleteStylePreset(id string) bool {
	return s.mutate("delete_style_preset", func(doc *domain.ProjectContent) bool {
		for i, p := range doc.StylePresets {
			if p.ID == id {
				doc.StylePresets = append(doc.StylePresets[:i], doc.StylePresets[i+1:]...)
				return true
			}
		}
		return false
	})
}

// ReorderStylePreset moves a preset within the display list.
func (s *Store) ReorderStylePreset(from, to int) bool {
	return s.mutate("reorder_style_preset", func(doc *domain.ProjectContent) bool {
		n := len(doc.StylePresets)
		if from < 0 || from >= n || to < 0 || to >= n {
			return false
		}
		p := doc.StylePresets[from]
		doc.StylePresets = append(doc.StylePresets[:from], doc.StylePresets[from+1:]...)
		doc.StylePresets = append(doc.StylePresets, nil)
		copy(doc.StylePresets[to+1:], doc.StylePresets[to:])
		doc.StylePresets[to] = p
		return true
	})
}

func (s *Store) AddStamp(req *domain.AddStampRequest) bool {
	if req == nil || req.Name == "" || req.ImageURL == "" {
		return false
	}
	return s.mutate("add_stamp", func(doc *domain.ProjectContent) bool {
		doc.Stamps = append(doc.Stamps, &domain.Stamp{
			ID:       uuid.New().String(),
			Name:     req.Name,
			ImageURL: req.ImageURL,
		})
		return true
	})
}

func (s *Store) DeleteStamp(id string) bool {
	return s.mutate("delete_stamp", func(doc *domain.ProjectContent) bool {
		for i, st := range doc.Stamps {
			if st.ID == id {
				doc.Stamps = append(doc.Stamps[:i], doc.Stamps[i+1:]...)
				return true
			}
		}
		return false
	})
}
