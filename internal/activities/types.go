package activities

import "studydesk/internal/providers"

type ExtractInput struct {
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Filename string `json:"filename"`
}

type ExtractOutput struct {
	Kind   string   `json:"kind"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

type CheckCreditsInput struct{}

type CheckCreditsOutput struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Tier      int    `json:"tier"`
	APIKey    string `json:"api_key"`
}

type AnalyzeInput struct {
	Provider    string   `json:"provider,omitempty"`
	APIKey      string   `json:"api_key"`
	Text        string   `json:"text,omitempty"`
	Images      []string `json:"images,omitempty"`
	Style       string   `json:"style,omitempty"`
	MaxSections int      `json:"max_sections,omitempty"`
}

type AnalyzeOutput struct {
	Overview     string             `json:"overview"`
	Summary      string             `json:"summary"`
	QA           []providers.QAPair `json:"qa,omitempty"`
	ProviderName string             `json:"provider_name"`
	Model        string             `json:"model"`
}

type DebitInput struct {
	Amount int `json:"amount"`
}

type DebitOutput struct {
	Remaining int `json:"remaining"`
}

type RecordHistoryInput struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	Kind      string `json:"kind"`
	Overview  string `json:"overview,omitempty"`
}

type WriteSessionArtifactsInput struct {
	SessionID string             `json:"session_id"`
	Filename  string             `json:"filename"`
	Kind      string             `json:"kind"`
	Text      string             `json:"text,omitempty"`
	Images    []string           `json:"images,omitempty"`
	Overview  string             `json:"overview,omitempty"`
	Summary   string             `json:"summary,omitempty"`
	QA        []providers.QAPair `json:"qa,omitempty"`
}
