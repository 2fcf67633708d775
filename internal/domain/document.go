package domain

import "time"

type ProjectContent struct {
	Pages        []*Page        `json:"pages"`
	WordGroups   []*WordGroup   `json:"word_groups"`
	Arrows       []*Arrow       `json:"arrows"`
	Notes        []*Note        `json:"notes"`
	Stamps       []*Stamp       `json:"stamps"`
	StylePresets []*StylePreset `json:"style_presets"`
}

type Page struct {
	ID     string   `json:"id"`
	Number int      `json:"number"`
	Blocks []*Block `json:"blocks"`

	HeaderText *string `json:"header_text,omitempty"`
	FooterText *string `json:"footer_text,omitempty"`
	ShowHeader *bool   `json:"show_header,omitempty"`
	ShowFooter *bool   `json:"show_footer,omitempty"`

	IsChapter bool `json:"is_chapter"`
	IsBlank   bool `json:"is_blank"`
}

func NewProjectContent() *ProjectContent {
	return &ProjectContent{
		Pages:        []*Page{},
		WordGroups:   []*WordGroup{},
		Arrows:       []*Arrow{},
		Notes:        []*Note{},
		Stamps:       []*Stamp{},
		StylePresets: []*StylePreset{},
	}
}

func (c *ProjectContent) Clone() *ProjectContent {
	if c == nil {
		return nil
	}
	out := &ProjectContent{
		Pages:        make([]*Page, len(c.Pages)),
		WordGroups:   make([]*WordGroup, len(c.WordGroups)),
		Arrows:       make([]*Arrow, len(c.Arrows)),
		Notes:        make([]*Note, len(c.Notes)),
		Stamps:       make([]*Stamp, len(c.Stamps)),
		StylePresets: make([]*StylePreset, len(c.StylePresets)),
	}
	for i, p := range c.Pages {
		out.Pages[i] = p.Clone()
	}
	for i, w := range c.WordGroups {
		cp := *w
		out.WordGroups[i] = &cp
	}
	for i, a := range c.Arrows {
		cp := *a
		out.Arrows[i] = &cp
	}
	for i, n := range c.Notes {
		cp := *n
		out.Notes[i] = &cp
	}
	for i, s := range c.Stamps {
		cp := *s
		out.Stamps[i] = &cp
	}
	for i, p := range c.StylePresets {
		out.StylePresets[i] = p.Clone()
	}
	return out
}

func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cp := *p
	cp.HeaderText = cloneStringPtr(p.HeaderText)
	cp.FooterText = cloneStringPtr(p.FooterText)
	cp.ShowHeader = cloneBoolPtr(p.ShowHeader)
	cp.ShowFooter = cloneBoolPtr(p.ShowFooter)
	cp.Blocks = make([]*Block, len(p.Blocks))
	for i, b := range p.Blocks {
		cp.Blocks[i] = b.Clone()
	}
	return &cp
}

// FindBlock returns the block with the given id and its index within
// the page, or (nil, -1) when absent.
func (p *Page) FindBlock(blockID string) (*Block, int) {
	for i, b := range p.Blocks {
		if b.ID == blockID {
			return b, i
		}
	}
	return nil, -1
}

type RemoteProject struct {
	ID        string           `json:"id"`
	Content   *ProjectContent  `json:"content"`
	Settings  *ProjectSettings `json:"settings"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
