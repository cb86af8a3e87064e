package workflows

type StudySessionInput struct {
	SessionID    string `json:"session_id"`
	FilePath     string `json:"file_path"`
	MIMEType     string `json:"mime_type"`
	Filename     string `json:"filename"`
	SummaryStyle string `json:"summary_style,omitempty"`
	MaxSections  int    `json:"max_sections,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

type StudySessionStatus struct {
	SessionID        string            `json:"session_id"`
	Filename         string            `json:"filename"`
	Kind             string            `json:"kind,omitempty"`
	CurrentStep      string            `json:"current_step"`
	Status           string            `json:"status"`
	FailReason       string            `json:"fail_reason,omitempty"`
	Steps            map[string]string `json:"steps"`
	RemainingCredits int               `json:"remaining_credits"`
	Overview         string            `json:"overview,omitempty"`
	ProviderName     string            `json:"provider_name,omitempty"`
}
