package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIProvider uses standard OpenAI REST APIs with the per-request
// credential supplied by the ledger.
type OpenAIProvider struct {
	model    string
	ttsModel string
	client   *http.Client
}

func NewOpenAIProvider(model string) *OpenAIProvider {
	if strings.TrimSpace(model) == "" {
		model = os.Getenv("STUDYDESK_OPENAI_MODEL")
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		model:    model,
		ttsModel: "tts-1",
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OpenAIProvider) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.model}
	content := []map[string]any{{"type": "text", "text": analysisPrompt(req)}}
	if req.ImageB64 != "" {
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]string{"url": "data:" + req.ImageMIME + ";base64," + req.ImageB64},
		})
	}
	raw, err := o.chat(ctx, req.Credential, analysisSystemPrompt, content)
	if err != nil {
		return AnalyzeResponse{}, info, err
	}
	if out, ok := ParseAnalysis(raw); ok {
		return out, info, nil
	}
	return AnalyzeResponse{Summary: raw}, info, nil
}

func (o *OpenAIProvider) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.model}
	content := []map[string]any{{"type": "text", "text": explainPrompt(req)}}
	raw, err := o.chat(ctx, req.Credential, explainSystemPrompt, content)
	if err != nil {
		return ExplainResponse{}, info, err
	}
	if out, ok := ParseExplanation(raw); ok {
		return out, info, nil
	}
	return ExplainResponse{Explanation: raw}, info, nil
}

func (o *OpenAIProvider) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.ttsModel}
	if req.Credential == "" {
		return nil, info, fmt.Errorf("openai credential missing")
	}
	voice := req.VoiceID
	if voice == "" {
		voice = "alloy"
	}
	payload, _ := json.Marshal(map[string]any{
		"model": o.ttsModel,
		"input": req.Text,
		"voice": voice,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/audio/speech", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, info, fmt.Errorf("openai speech request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, info, fmt.Errorf("openai speech error %d: %s", resp.StatusCode, string(body))
	}
	return body, info, nil
}

func (o *OpenAIProvider) chat(ctx context.Context, credential, system string, content []map[string]any) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("openai credential missing")
	}
	payload, _ := json.Marshal(map[string]any{
		"model": o.model,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": content},
		},
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+credential)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
