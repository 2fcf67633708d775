package domain

// Annotation entities reference a block through BlockID. The
// reference is a relation, not ownership: deleting a block does not
// cascade here, so a block restored by undo keeps its annotations.

type TextRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type WordGroup struct {
	ID          string    `json:"id"`
	BlockID     string    `json:"block_id"`
	SourceRange TextRange `json:"source_range"`
	TargetRange TextRange `json:"target_range"`
	Color       string    `json:"color,omitempty"`
	Label       string    `json:"label,omitempty"`
}

type Arrow struct {
	ID            string `json:"id"`
	BlockID       string `json:"block_id"`
	SourceGroupID string `json:"source_group_id"`
	TargetGroupID string `json:"target_group_id"`
	Style         string `json:"style,omitempty"`
}

type Note struct {
	ID      string  `json:"id"`
	BlockID string  `json:"block_id"`
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color,omitempty"`
}

// Stamp is a reusable image asset on the document's display list,
// referenced by stamp blocks.
type Stamp struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// AnnotationRequest is the input handed to an AI annotation provider.
type AnnotationRequest struct {
	SourceText string `json:"source_text" validate:"required"`
	TargetText string `json:"target_text" validate:"required"`
	SourceLang string `json:"source_lang" validate:"required"`
	TargetLang string `json:"target_lang" validate:"required"`
	BlockID    string `json:"block_id"`
}

// AnnotationPayload is the structured output of an AI annotation
// provider, appended into the document as-is.
type AnnotationPayload struct {
	WordGroups []*WordGroup `json:"word_groups"`
	Arrows     []*Arrow     `json:"arrows"`
	Notes      []*Note      `json:"notes"`
}
