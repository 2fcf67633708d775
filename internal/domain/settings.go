package domain

type ProjectSettings struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	PageSize   string `json:"page_size"`

	HeaderText string `json:"header_text,omitempty"`
	FooterText string `json:"footer_text,omitempty"`
	ShowHeader bool   `json:"show_header"`
	ShowFooter bool   `json:"show_footer"`

	Theme string `json:"theme,omitempty"`
}

func DefaultProjectSettings() *ProjectSettings {
	return &ProjectSettings{
		SourceLang: "en",
		TargetLang: "ja",
		PageSize:   "a4",
		ShowHeader: true,
		ShowFooter: true,
	}
}

func (s *ProjectSettings) Clone() *ProjectSettings {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
