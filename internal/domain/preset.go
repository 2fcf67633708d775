package domain

// StylePreset captures a reusable snapshot of stylistic settings for
// one block kind. Only the fields present in Settings are applied;
// block identity and content are never touched.
type StylePreset struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Kind     BlockKind     `json:"kind"`
	Settings StyleSettings `json:"settings"`
}

type StyleSettings struct {
	FontFamily  *string  `json:"font_family,omitempty"`
	FontSize    *int     `json:"font_size,omitempty"`
	TextColor   *string  `json:"text_color,omitempty"`
	Background  *string  `json:"background,omitempty"`
	Alignment   *string  `json:"alignment,omitempty"`
	LineHeight  *float64 `json:"line_height,omitempty"`
	Padding     *int     `json:"padding,omitempty"`
	BorderColor *string  `json:"border_color,omitempty"`
}

func (p *StylePreset) Clone() *StylePreset {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Settings = StyleSettings{
		FontFamily:  cloneStringPtr(p.Settings.FontFamily),
		FontSize:    cloneIntPtr(p.Settings.FontSize),
		TextColor:   cloneStringPtr(p.Settings.TextColor),
		Background:  cloneStringPtr(p.Settings.Background),
		Alignment:   cloneStringPtr(p.Settings.Alignment),
		LineHeight:  cloneFloatPtr(p.Settings.LineHeight),
		Padding:     cloneIntPtr(p.Settings.Padding),
		BorderColor: cloneStringPtr(p.Settings.BorderColor),
	}
	return &cp
}

// Apply overwrites the style fields named in the preset's settings.
func (s StyleSettings) Apply(style *BlockStyle) {
	if s.FontFamily != nil {
		style.FontFamily = *s.FontFamily
	}
	if s.FontSize != nil {
		style.FontSize = *s.FontSize
	}
	if s.TextColor != nil {
		style.TextColor = *s.TextColor
	}
	if s.Background != nil {
		style.Background = *s.Background
	}
	if s.Alignment != nil {
		style.Alignment = *s.Alignment
	}
	if s.LineHeight != nil {
		style.LineHeight = *s.LineHeight
	}
	if s.Padding != nil {
		style.Padding = *s.Padding
	}
	if s.BorderColor != nil {
		style.BorderColor = *s.BorderColor
	}
}
