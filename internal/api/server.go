package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"studydesk/internal/config"
	"studydesk/internal/extract"
	"studydesk/internal/ledger"
	"studydesk/internal/providers"
	"studydesk/internal/storage"
	"studydesk/internal/util"
	"studydesk/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg       config.Config
	store     ledger.Store
	ledger    *ledger.Ledger
	history   *storage.HistoryRepo
	providers *providers.Manager
	temporal  tclient.Client
}

func NewServer(cfg config.Config) *Server {
	s := &Server{cfg: cfg}
	switch cfg.StoreBackend {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			panic(err)
		}
		s.store = storage.NewKVRepo(db)
		s.history = storage.NewHistoryRepo(db)
	default:
		s.store = storage.NewFileStore(cfg.StatePath)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	s.providers = pm
	s.temporal = tc
	s.ledger = ledger.New(s.store, cfg.DailyFreeLimit, cfg.CredentialPools())
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/sessions/", s.handleSessions)
	mux.HandleFunc("/subscription", s.handleSubscription)
	mux.HandleFunc("/subscription/redeem", s.handleRedeem)
	mux.HandleFunc("/explain", s.handleExplain)
	mux.HandleFunc("/speech", s.handleSpeech)
	mux.HandleFunc("/history", s.handleHistory)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleUpload accepts one study file, rejects formats the extractor cannot
// classify before any credit is at stake, stores the blob, and starts a
// session workflow for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh, ok := firstSingleFile(r.MultipartForm.File)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided"))
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if extract.Classify(mimeType, fh.Filename) == extract.KindUnsupported {
		writeErr(w, http.StatusUnsupportedMediaType, fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, fh.Filename))
		return
	}

	if err := util.EnsureDir(s.cfg.DataInRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	savedPath, err := saveUploadedFile(s.cfg.DataInRoot, fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	sessionID := uuid.NewString()
	input := workflows.StudySessionInput{
		SessionID:    sessionID,
		FilePath:     savedPath,
		MIMEType:     mimeType,
		Filename:     filepath.Base(fh.Filename),
		SummaryStyle: r.FormValue("style"),
		Provider:     r.FormValue("provider"),
	}
	if v := r.FormValue("max_sections"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			input.MaxSections = n
		}
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "session-" + sessionID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.StudySessionWorkflow, input)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id":  sessionID,
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	wfID := "session-" + sessionID

	var status workflows.StudySessionStatus
	resp, err := s.temporal.QueryWorkflow(r.Context(), wfID, "", workflows.QueryGetSessionStatus)
	if err == nil {
		if err := resp.Get(&status); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Query fails once the workflow has closed; fall back to the execution
	// record so finished sessions still resolve.
	desc, dErr := s.temporal.DescribeWorkflowExecution(r.Context(), wfID, "")
	if dErr != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("session not found: %w", dErr))
		return
	}
	st := "processing"
	switch desc.GetWorkflowExecutionInfo().GetStatus() {
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		st = "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT,
		enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		st = "failed"
	}
	writeJSON(w, http.StatusOK, workflows.StudySessionStatus{SessionID: sessionID, Status: st})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	state, err := s.ledger.InitializeOrReload(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tier":              state.CurrentTier,
		"remaining_credits": state.RemainingCredits,
		"has_used_trial":    state.HasUsedTrial,
		"last_daily_reset":  state.LastDailyReset,
	})
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("code is required"))
		return
	}
	if _, err := s.ledger.InitializeOrReload(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	state, err := s.ledger.Redeem(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCode) {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tier":              state.CurrentTier,
		"remaining_credits": state.RemainingCredits,
	})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Term     string `json:"term"`
		Context  string `json:"context"`
		Level    string `json:"level"`
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Term = strings.TrimSpace(req.Term)
	if req.Term == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("term is required"))
		return
	}
	provider, _, err := s.pickProvider(req.Provider)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	state, err := s.ledger.InitializeOrReload(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	resp, info, err := provider.Explain(r.Context(), providers.ExplainRequest{
		Credential: state.ActiveAPIKey,
		Term:       req.Term,
		Context:    util.TruncateRunes(req.Context, s.cfg.PromptCharBudget),
		Level:      req.Level,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"explanation":   resp.Explanation,
		"related_terms": resp.RelatedTerms,
		"provider":      info.Name,
		"model":         info.Model,
	})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Text     string `json:"text"`
		VoiceID  string `json:"voice_id"`
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("text is required"))
		return
	}
	provider, _, err := s.pickProvider(req.Provider)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	state, err := s.ledger.InitializeOrReload(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	audio, info, err := provider.Synthesize(r.Context(), providers.SpeechRequest{
		Credential: state.ActiveAPIKey,
		Text:       req.Text,
		VoiceID:    req.VoiceID,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audio_b64": base64.StdEncoding.EncodeToString(audio),
		"provider":  info.Name,
		"model":     info.Model,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []any{}})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	entries, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) pickProvider(name string) (providers.StudyProvider, providers.ProviderRef, error) {
	if name == "" {
		p, ref := s.providers.Primary()
		return p, ref, nil
	}
	p, ref, ok := s.providers.ByName(name)
	if !ok {
		return nil, providers.ProviderRef{}, fmt.Errorf("provider not configured: %s", name)
	}
	return p, ref, nil
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	digest, err := util.SHA256HexFromReader(io.TeeReader(src, tmp))
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	// Prefixing the content hash dedupes re-uploads of the same blob under
	// different session ids without clobbering distinct files of one name.
	finalPath := util.SafeJoin(dstDir, digest[:12]+"-"+fh.Filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	if files := m["file"]; len(files) > 0 {
		return files[0], true
	}
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "SD-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "SD-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "SD-DB-5002",
				Message: "A backing service is unavailable. Check local services and retry.",
			}
		case strings.Contains(raw, "local store write failed"):
			return apiError{
				Code:    "SD-STORE-5003",
				Message: "Subscription state could not be saved. Check disk space and permissions.",
			}
		default:
			return apiError{
				Code:    "SD-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "SD-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "SD-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "SD-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusUnsupportedMediaType:
		code = "SD-API-4015"
		msg = "This file format is not supported. Upload a PDF, a slide deck, or an image."
	case status == http.StatusBadGateway:
		code = "SD-API-5020"
		msg = "Upstream provider unavailable. Retry shortly."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "redemption code not recognized"):
			msg = "That redemption code is not recognized."
		case strings.Contains(raw, "code is required"):
			msg = "A redemption code is required."
		case strings.Contains(raw, "term is required"):
			msg = "A term to explain is required."
		case strings.Contains(raw, "text is required"):
			msg = "Text to synthesize is required."
		case strings.Contains(raw, "no file provided"):
			msg = "No file was provided."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "provider not configured"):
			msg = "The requested provider is not configured."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
