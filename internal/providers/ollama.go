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

// OllamaProvider supports local, free analysis via Ollama. No credential is
// required; the ledger's key selection is ignored for this provider.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(model string) *OllamaProvider {
	baseURL := strings.TrimSpace(os.Getenv("STUDYDESK_OLLAMA_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if strings.TrimSpace(model) == "" {
		model = os.Getenv("STUDYDESK_OLLAMA_MODEL")
	}
	if strings.TrimSpace(model) == "" {
		model = "llama3.1"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

func (o *OllamaProvider) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "ollama", Model: o.model}
	raw, err := o.chat(ctx, analysisSystemPrompt, analysisPrompt(req), req.ImageB64)
	if err != nil {
		return AnalyzeResponse{}, info, err
	}
	if out, ok := ParseAnalysis(raw); ok {
		return out, info, nil
	}
	return AnalyzeResponse{Summary: raw}, info, nil
}

func (o *OllamaProvider) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "ollama", Model: o.model}
	raw, err := o.chat(ctx, explainSystemPrompt, explainPrompt(req), "")
	if err != nil {
		return ExplainResponse{}, info, err
	}
	if out, ok := ParseExplanation(raw); ok {
		return out, info, nil
	}
	return ExplainResponse{Explanation: raw}, info, nil
}

func (o *OllamaProvider) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, ProviderInfo, error) {
	_ = ctx
	_ = req
	return nil, ProviderInfo{Name: "ollama", Model: o.model}, fmt.Errorf("speech synthesis is not supported by the ollama provider")
}

func (o *OllamaProvider) chat(ctx context.Context, system, prompt, imageB64 string) (string, error) {
	userMsg := map[string]any{"role": "user", "content": prompt}
	if imageB64 != "" {
		userMsg["images"] = []string{imageB64}
	}
	payload, _ := json.Marshal(map[string]any{
		"model":  o.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			userMsg,
		},
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if strings.TrimSpace(parsed.Message.Content) == "" {
		return "", fmt.Errorf("ollama returned empty message")
	}
	return parsed.Message.Content, nil
}
