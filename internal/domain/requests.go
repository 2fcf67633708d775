package domain

// Mutation request shapes accepted by the session dispatch surface.
// Pointer fields mean "leave unchanged" when nil.

type AddPageRequest struct {
	AfterIndex *int `json:"after_index"`
	IsChapter  bool `json:"is_chapter"`
	IsBlank    bool `json:"is_blank"`
}

type UpdatePageRequest struct {
	HeaderText *string `json:"header_text"`
	FooterText *string `json:"footer_text"`
	ShowHeader *bool   `json:"show_header"`
	ShowFooter *bool   `json:"show_footer"`
	IsChapter  *bool   `json:"is_chapter"`
	IsBlank    *bool   `json:"is_blank"`
}

type MovePageRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type AddBlockRequest struct {
	Kind      BlockKind  `json:"kind" validate:"required,oneof=text image separator callout stamp table quiz"`
	Layout    LayoutMode `json:"layout" validate:"omitempty,oneof=side_by_side stacked source_only target_only"`
	AtIndex   *int       `json:"at_index"`
	Printable *bool      `json:"printable"`

	Text      *TextContent      `json:"text"`
	Image     *ImageContent     `json:"image"`
	Separator *SeparatorContent `json:"separator"`
	Callout   *CalloutContent   `json:"callout"`
	Stamp     *StampContent     `json:"stamp"`
	Table     *TableContent     `json:"table"`
	Quiz      *QuizContent      `json:"quiz"`
}

type UpdateBlockRequest struct {
	Layout    *LayoutMode `json:"layout" validate:"omitempty,oneof=side_by_side stacked source_only target_only"`
	Hidden    *bool       `json:"hidden"`
	Printable *bool       `json:"printable"`
	Style     *BlockStyle `json:"style"`

	Text      *TextContent      `json:"text"`
	Image     *ImageContent     `json:"image"`
	Separator *SeparatorContent `json:"separator"`
	Callout   *CalloutContent   `json:"callout"`
	Stamp     *StampContent     `json:"stamp"`
	Table     *TableContent     `json:"table"`
	Quiz      *QuizContent      `json:"quiz"`
}

type ReorderBlockRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ApplyPresetRequest struct {
	PresetID string `json:"preset_id" validate:"required"`
}

type AddWordGroupRequest struct {
	BlockID     string    `json:"block_id" validate:"required"`
	SourceRange TextRange `json:"source_range"`
	TargetRange TextRange `json:"target_range"`
	Color       string    `json:"color"`
	Label       string    `json:"label"`
}

type UpdateWordGroupRequest struct {
	SourceRange *TextRange `json:"source_range"`
	TargetRange *TextRange `json:"target_range"`
	Color       *string    `json:"color"`
	Label       *string    `json:"label"`
}

type AddArrowRequest struct {
	BlockID       string `json:"block_id" validate:"required"`
	SourceGroupID string `json:"source_group_id" validate:"required"`
	TargetGroupID string `json:"target_group_id" validate:"required"`
	Style         string `json:"style"`
}

type UpdateArrowRequest struct {
	SourceGroupID *string `json:"source_group_id"`
	TargetGroupID *string `json:"target_group_id"`
	Style         *string `json:"style"`
}

type AddNoteRequest struct {
	BlockID string  `json:"block_id" validate:"required"`
	Text    string  `json:"text" validate:"required"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color"`
}

type UpdateNoteRequest struct {
	Text  *string  `json:"text"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Color *string  `json:"color"`
}

type AddStylePresetRequest struct {
	Name     string        `json:"name" validate:"required"`
	Kind     BlockKind     `json:"kind" validate:"required,oneof=text image separator callout stamp table quiz"`
	Settings StyleSettings `json:"settings"`
}

type UpdateStylePresetRequest struct {
	Name     *string        `json:"name"`
	Settings *StyleSettings `json:"settings"`
}

type ReorderPresetRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type AddStampRequest struct {
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"image_url" validate:"required"`
}

type UpdateSettingsRequest struct {
	SourceLang *string `json:"source_lang"`
	TargetLang *string `json:"target_lang"`
	PageSize   *string `json:"page_size"`
	HeaderText *string `json:"header_text"`
	FooterText *string `json:"footer_text"`
	ShowHeader *bool   `json:"show_header"`
	ShowFooter *bool   `json:"show_footer"`
	Theme      *string `json:"theme"`
}
