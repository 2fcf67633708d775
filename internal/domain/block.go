package domain

import "time"

type BlockKind string

const (
	BlockKindText      BlockKind = "text"
	BlockKindImage     BlockKind = "image"
	BlockKindSeparator BlockKind = "separator"
	BlockKindCallout   BlockKind = "callout"
	BlockKindStamp     BlockKind = "stamp"
	BlockKindTable     BlockKind = "table"
	BlockKindQuiz      BlockKind = "quiz"
)

type LayoutMode string

const (
	LayoutSideBySide LayoutMode = "side_by_side"
	LayoutStacked    LayoutMode = "stacked"
	LayoutSourceOnly LayoutMode = "source_only"
	LayoutTargetOnly LayoutMode = "target_only"
)

// Block is a tagged union over the supported block kinds. The
// envelope fields are shared; exactly one kind payload is non-nil and
// must match Kind.
type Block struct {
	ID        string     `json:"id"`
	Kind      BlockKind  `json:"kind"`
	Order     int        `json:"order"`
	Layout    LayoutMode `json:"layout"`
	Hidden    bool       `json:"hidden"`
	Printable bool       `json:"printable"`
	Style     BlockStyle `json:"style"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Text      *TextContent      `json:"text,omitempty"`
	Image     *ImageContent     `json:"image,omitempty"`
	Separator *SeparatorContent `json:"separator,omitempty"`
	Callout   *CalloutContent   `json:"callout,omitempty"`
	Stamp     *StampContent     `json:"stamp,omitempty"`
	Table     *TableContent     `json:"table,omitempty"`
	Quiz      *QuizContent      `json:"quiz,omitempty"`
}

type BlockStyle struct {
	FontFamily  string  `json:"font_family,omitempty"`
	FontSize    int     `json:"font_size,omitempty"`
	TextColor   string  `json:"text_color,omitempty"`
	Background  string  `json:"background,omitempty"`
	Alignment   string  `json:"alignment,omitempty"`
	LineHeight  float64 `json:"line_height,omitempty"`
	Padding     int     `json:"padding,omitempty"`
	BorderColor string  `json:"border_color,omitempty"`
}

type TextContent struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type ImageContent struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type SeparatorContent struct {
	Style     string `json:"style"`
	Thickness int    `json:"thickness,omitempty"`
}

type CalloutContent struct {
	Icon   string `json:"icon,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type StampContent struct {
	StampID  string  `json:"stamp_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
}

type TableContent struct {
	HeaderRow bool          `json:"header_row"`
	Rows      [][]TableCell `json:"rows"`
}

type TableCell struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type QuizContent struct {
	Prompt  TextContent  `json:"prompt"`
	Choices []QuizChoice `json:"choices"`
}

type QuizChoice struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Correct bool   `json:"correct"`
}

func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	cp := *b
	if b.Text != nil {
		v := *b.Text
		cp.Text = &v
	}
	if b.Image != nil {
		v := *b.Image
		cp.Image = &v
	}
	if b.Separator != nil {
		v := *b.Separator
		cp.Separator = &v
	}
	if b.Callout != nil {
		v := *b.Callout
		cp.Callout = &v
	}
	if b.Stamp != nil {
		v := *b.Stamp
		cp.Stamp = &v
	}
	if b.Table != nil {
		v := TableContent{HeaderRow: b.Table.HeaderRow, Rows: make([][]TableCell, len(b.Table.Rows))}
		for i, row := range b.Table.Rows {
			v.Rows[i] = append([]TableCell(nil), row...)
		}
		cp.Table = &v
	}
	if b.Quiz != nil {
		v := QuizContent{Prompt: b.Quiz.Prompt, Choices: append([]QuizChoice(nil), b.Quiz.Choices...)}
		cp.Quiz = &v
	}
	return &cp
}
