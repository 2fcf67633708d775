package store

import (
	"synoptic-engine/internal/domain"

	"github.com/google/uuid"
)

// AddBlock inserts a new block on the given page, appending unless
// AtIndex is set. The kind payload is taken from the request; a
// request missing the payload for its kind gets an empty one so the
// union invariant (exactly one non-nil payload) holds.
func (s *Store) AddBlock(pageIndex int, req *domain.AddBlockRequest) bool {
	if req == nil || req.Kind == "" {
		return false
	}
	return s.mutate("add_block", func(doc *domain.ProjectContent) bool {
		if pageIndex < 0 || pageIndex >= len(doc.Pages) {
			return false
		}
		page := doc.Pages[pageIndex]

		now := s.now()
		block := &domain.Block{
			ID:        uuid.New().String(),
			Kind:      req.Kind,
			Layout:    req.Layout,
			Printable: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if block.Layout == "" {
			block.Layout = domain.LayoutSideBySide
		}
		if req.Printable != nil {
			block.Printable = *req.Printable
		}
		if !setKindPayload(block, req) {
			return false
		}

		at := len(page.Blocks)
		if req.AtIndex != nil {
			if *req.AtIndex < 0 || *req.AtIndex > len(page.Blocks) {
				return false
			}
			at = *req.AtIndex
		}
		page.Blocks = append(page.Blocks, nil)
		copy(page.Blocks[at+1:], page.Blocks[at:])
		page.Blocks[at] = block
		renumberBlocks(page)
		return true
	})
}

func (s *Store) UpdateBlock(pageIndex int, blockID string, req *domain.UpdateBlockRequest) bool {
	if req == nil {
		return false
	}
	return s.mutate("update_block", func(doc *domain.ProjectContent) bool {
		block := findBlock(doc, pageIndex, blockID)
		if block == nil {
			return false
		}
		if req.Layout != nil {
			block.Layout = *req.Layout
		}
		if req.Hidden != nil {
			block.Hidden = *req.Hidden
		}
		if req.Printable != nil {
			block.Printable = *req.Printable
		}
		if req.Style != nil {
			block.Style = *req.Style
		}
		// Content replacement only for the block's own kind.
		switch block.Kind {
		case domain.BlockKindText:
			if req.Text != nil {
				block.Text = req.Text
			}
		case domain.BlockKindImage:
			if req.Image != nil {
				block.Image = req.Image
			}
		case domain.BlockKindSeparator:
			if req.Separator != nil {
				block.Separator = req.Separator
			}
		case domain.BlockKindCallout:
			if req.Callout != nil {
				block.Callout = req.Callout
			}
		case domain.BlockKindStamp:
			if req.Stamp != nil {
				block.Stamp = req.Stamp
			}
		case domain.BlockKindTable:
			if req.Table != nil {
				block.Table = req.Table
			}
		case domain.BlockKindQuiz:
			if req.Quiz != nil {
				block.Quiz = req.Quiz
			}
		}
		block.UpdatedAt = s.now()
		return true
	})
}

// DeleteBlock removes the block from its page. Annotations keeping a
// BlockID reference to it are left in place; see
// OrphanedAnnotations.
func (s *Store) DeleteBlock(pageIndex int, blockID string) bool {
	return s.mutate("delete_block", func(doc *domain.ProjectContent) bool {
		if pageIndex < 0 || pageIndex >= len(doc.Pages) {
			return false
		}
		page := doc.Pages[pageIndex]
		_, i := page.FindBlock(blockID)
		if i < 0 {
			return false
		}
		page.Blocks = append(page.Blocks[:i], page.Blocks[i+1:]...)
		renumberBlocks(page)
		return true
	})
}

// ReorderBlock moves the block at position from to position to with
// remove-then-insert semantics. Only Order fields change.
func (s *Store) ReorderBlock(pageIndex, from, to int) bool {
	return s.mutate("reorder_block", func(doc *domain.ProjectContent) bool {
		if pageIndex < 0 || pageIndex >= len(doc.Pages) {
			return false
		}
		page := doc.Pages[pageIndex]
		n := len(page.Blocks)
		if from < 0 || from >= n || to < 0 || to >= n {
			return false
		}
		block := page.Blocks[from]
		page.Blocks = append(page.Blocks[:from], page.Blocks[from+1:]...)
		page.Blocks = append(page.Blocks, nil)
		copy(page.Blocks[to+1:], page.Blocks[to:])
		page.Blocks[to] = block
		renumberBlocks(page)
		return true
	})
}

// ApplyPreset overwrites the block's stylistic fields from the
// preset's settings snapshot. Block id and content are never
// touched, and the preset must match the block's kind.
func (s *Store) ApplyPreset(pageIndex int, blockID, presetID string) bool {
	return s.mutate("apply_preset", func(doc *domain.ProjectContent) bool {
		block := findBlock(doc, pageIndex, blockID)
		if block == nil {
			return false
		}
		var preset *domain.StylePreset
		for _, p := range doc.StylePresets {
			if p.ID == presetID {
				preset = p
				break
			}
		}
		if preset == nil || preset.Kind != block.Kind {
			return false
		}
		preset.Settings.Apply(&block.Style)
		block.UpdatedAt = s.now()
		return true
	})
}

func findBlock(doc *domain.ProjectContent, pageIndex int, blockID string) *domain.Block {
	if pageIndex < 0 || pageIndex >= len(doc.Pages) {
		return nil
	}
	block, _ := doc.Pages[pageIndex].FindBlock(blockID)
	return block
}

func renumberBlocks(page *domain.Page) {
	for i, b := range page.Blocks {
		b.Order = i
	}
}

func setKindPayload(block *domain.Block, req *domain.AddBlockRequest) bool {
	switch req.Kind {
	case domain.BlockKindText:
		block.Text = orDefault(req.Text, &domain.TextContent{})
	case domain.BlockKindImage:
		block.Image = orDefault(req.Image, &domain.ImageContent{})
	case domain.BlockKindSeparator:
		block.Separator = orDefault(req.Separator, &domain.SeparatorContent{Style: "line"})
	case domain.BlockKindCallout:
		block.Callout = orDefault(req.Callout, &domain.CalloutContent{})
	case domain.BlockKindStamp:
		block.Stamp = orDefault(req.Stamp, &domain.StampContent{Scale: 1})
	case domain.BlockKindTable:
		block.Table = orDefault(req.Table, &domain.TableContent{Rows: [][]domain.TableCell{}})
	case domain.BlockKindQuiz:
		block.Quiz = orDefault(req.Quiz, &domain.QuizContent{Choices: []domain.QuizChoice{}})
	default:
		return false
	}
	return true
}

func orDefault[T any](v *T, def *T) *T {
	if v != nil {
		return v
	}
	return def
}
