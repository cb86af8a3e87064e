package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// GeminiProvider talks to the Google Generative Language REST API. The API
// key travels per request: it is whatever credential the subscription
// ledger selected for the active tier.
type GeminiProvider struct {
	model    string
	ttsModel string
	ttsVoice string
	client   *http.Client
}

func NewGeminiProvider(model string) *GeminiProvider {
	if strings.TrimSpace(model) == "" {
		model = os.Getenv("STUDYDESK_GEMINI_MODEL")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.0-flash"
	}
	ttsModel := os.Getenv("STUDYDESK_GEMINI_TTS_MODEL")
	if strings.TrimSpace(ttsModel) == "" {
		ttsModel = "gemini-2.5-flash-preview-tts"
	}
	return &GeminiProvider{
		model:    model,
		ttsModel: ttsModel,
		ttsVoice: "Kore",
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (g *GeminiProvider) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model}
	parts := []geminiPart{{Text: analysisSystemPrompt + "\n\n" + analysisPrompt(req)}}
	if req.ImageB64 != "" {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MIMEType: req.ImageMIME, Data: req.ImageB64}})
	}
	raw, err := g.generate(ctx, g.model, req.Credential, parts, nil)
	if err != nil {
		return AnalyzeResponse{}, info, err
	}
	if out, ok := ParseAnalysis(raw); ok {
		return out, info, nil
	}
	return AnalyzeResponse{Summary: raw}, info, nil
}

func (g *GeminiProvider) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model}
	parts := []geminiPart{{Text: explainSystemPrompt + "\n\n" + explainPrompt(req)}}
	raw, err := g.generate(ctx, g.model, req.Credential, parts, nil)
	if err != nil {
		return ExplainResponse{}, info, err
	}
	if out, ok := ParseExplanation(raw); ok {
		return out, info, nil
	}
	return ExplainResponse{Explanation: raw}, info, nil
}

func (g *GeminiProvider) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.ttsModel}
	voice := req.VoiceID
	if voice == "" {
		voice = g.ttsVoice
	}
	genCfg := map[string]any{
		"responseModalities": []string{"AUDIO"},
		"speechConfig": map[string]any{
			"voiceConfig": map[string]any{
				"prebuiltVoiceConfig": map[string]any{"voiceName": voice},
			},
		},
	}
	raw, err := g.generate(ctx, g.ttsModel, req.Credential, []geminiPart{{Text: req.Text}}, genCfg)
	if err != nil {
		return nil, info, err
	}
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, info, fmt.Errorf("decode gemini audio payload: %w", err)
	}
	return audio, info, nil
}

// generate calls generateContent and returns either the concatenated text
// parts or, for audio responses, the base64 inline data.
func (g *GeminiProvider) generate(ctx context.Context, model, credential string, parts []geminiPart, genCfg map[string]any) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("gemini credential missing")
	}
	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	}
	if genCfg != nil {
		body["generationConfig"] = genCfg
	}
	payload, _ := json.Marshal(body)
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, credential)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini error %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData struct {
						Data string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.InlineData.Data != "" {
			return p.InlineData.Data, nil
		}
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
