package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// AnalyzeRequest carries one extracted document (text, or a single image for
// image uploads) to be summarized. Credential is the API key selected by the
// subscription ledger for the active tier.
type AnalyzeRequest struct {
	Credential  string `json:"-"`
	Text        string `json:"text,omitempty"`
	ImageB64    string `json:"image_b64,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
	Style       string `json:"style,omitempty"`
	MaxSections int    `json:"max_sections,omitempty"`
}

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type AnalyzeResponse struct {
	Overview string   `json:"overview"`
	Summary  string   `json:"summary"`
	QA       []QAPair `json:"qa,omitempty"`
}

type ExplainRequest struct {
	Credential string `json:"-"`
	Term       string `json:"term"`
	Context    string `json:"context,omitempty"`
	Level      string `json:"level,omitempty"`
}

type ExplainResponse struct {
	Explanation  string   `json:"explanation"`
	RelatedTerms []string `json:"related_terms,omitempty"`
}

type SpeechRequest struct {
	Credential string `json:"-"`
	Text       string `json:"text"`
	VoiceID    string `json:"voice_id,omitempty"`
}

// StudyProvider is the remote generative surface the orchestrator talks to.
// Analyze is the only operation that spends a credit; Explain and Synthesize
// do not touch the ledger.
type StudyProvider interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, ProviderInfo, error)
	Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, ProviderInfo, error)
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, ProviderInfo, error)
}
