package store

import (
	"synoptic-engine/internal/domain"

	"github.com/google/uuid"
)

// AddPage appends a page, or inserts after the requested index when
// AfterIndex is set. Page numbers are rewritten to 1..N afterwards.
func (s *Store) AddPage(req *domain.AddPageRequest) bool {
	if req == nil {
		req = &domain.AddPageRequest{}
	}
	return s.mutate("add_page", func(doc *domain.ProjectContent) bool {
		page := &domain.Page{
			ID:        uuid.New().String(),
			Blocks:    []*domain.Block{},
			IsChapter: req.IsChapter,
			IsBlank:   req.IsBlank,
		}
		at := len(doc.Pages)
		if req.AfterIndex != nil {
			if *req.AfterIndex < -1 || *req.AfterIndex >= len(doc.Pages) {
				return false
			}
			at = *req.AfterIndex + 1
		}
		doc.Pages = append(doc.Pages, nil)
		copy(doc.Pages[at+1:], doc.Pages[at:])
		doc.Pages[at] = page
		renumberPages(doc)
		return true
	})
}

func (s *Store) UpdatePage(index int, req *domain.UpdatePageRequest) bool {
	if req == nil {
		return false
	}
	return s.mutate("update_page", func(doc *domain.ProjectContent) bool {
		if index < 0 || index >= len(doc.Pages) {
			return false
		}
		page := doc.Pages[index]
		if req.HeaderText != nil {
			page.HeaderText = req.HeaderText
		}
		if req.FooterText != nil {
			page.FooterText = req.FooterText
		}
		if req.ShowHeader != nil {
			page.ShowHeader = req.ShowHeader
		}
		if req.ShowFooter != nil {
			page.ShowFooter = req.ShowFooter
		}
		if req.IsChapter != nil {
			page.IsChapter = *req.IsChapter
		}
		if req.IsBlank != nil {
			page.IsBlank = *req.IsBlank
		}
		return true
	})
}

func (s *Store) DeletePage(index int) bool {
	return s.mutate("delete_page", func(doc *domain.ProjectContent) bool {
		if index < 0 || index >= len(doc.Pages) {
			return false
		}
		doc.Pages = append(doc.Pages[:index], doc.Pages[index+1:]...)
		renumberPages(doc)
		return true
	})
}

func (s *Store) MovePage(from, to int) bool {
	return s.mutate("move_page", func(doc *domain.ProjectContent) bool {
		n := len(doc.Pages)
		if from < 0 || from >= n || to < 0 || to >= n {
			return false
		}
		page := doc.Pages[from]
		doc.Pages = append(doc.Pages[:from], doc.Pages[from+1:]...)
		doc.Pages = append(doc.Pages, nil)
		copy(doc.Pages[to+1:], doc.Pages[to:])
		doc.Pages[to] = page
		renumberPages(doc)
		return true
	})
}

func renumberPages(doc *domain.ProjectContent) {
	for i, p := range doc.Pages {
		p.Number = i + 1
	}
}
