package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"studydesk/internal/config"
	"studydesk/internal/extract"
	"studydesk/internal/ledger"
	"studydesk/internal/models"
	"studydesk/internal/providers"
	"studydesk/internal/storage"
	"studydesk/internal/util"
)

type Activities struct {
	cfg       config.Config
	ledger    *ledger.Ledger
	history   *storage.HistoryRepo
	providers *providers.Manager
}

// New builds the worker-side activity set. history may be nil when running
// against the file-backed store, in which case history recording is skipped.
func New(cfg config.Config, store ledger.Store, history *storage.HistoryRepo) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:       cfg,
		ledger:    ledger.New(store, cfg.DailyFreeLimit, cfg.CredentialPools()),
		history:   history,
		providers: pm,
	}, nil
}

func (a *Activities) ExtractActivity(ctx context.Context, in ExtractInput) (ExtractOutput, error) {
	_ = ctx
	blob, err := os.ReadFile(in.Path)
	if err != nil {
		return ExtractOutput{}, fmt.Errorf("read upload: %w", err)
	}
	res, err := extract.File(blob, in.MIMEType, in.Filename)
	if err != nil {
		return ExtractOutput{}, err
	}
	kind := extract.Classify(in.MIMEType, in.Filename)
	return ExtractOutput{
		Kind:   kind.String(),
		Text:   util.SanitizeText(res.Text),
		Images: res.Images,
	}, nil
}

func (a *Activities) CheckCreditsActivity(ctx context.Context, in CheckCreditsInput) (CheckCreditsOutput, error) {
	_ = in
	state, err := a.ledger.InitializeOrReload(ctx)
	if err != nil {
		return CheckCreditsOutput{}, err
	}
	return CheckCreditsOutput{
		Allowed:   a.ledger.CanProceed(),
		Remaining: state.RemainingCredits,
		Tier:      state.CurrentTier,
		APIKey:    state.ActiveAPIKey,
	}, nil
}

func (a *Activities) AnalyzeActivity(ctx context.Context, in AnalyzeInput) (AnalyzeOutput, error) {
	provider, ref := a.providers.Primary()
	if in.Provider != "" {
		p, r, ok := a.providers.ByName(in.Provider)
		if !ok {
			return AnalyzeOutput{}, fmt.Errorf("provider not configured in worker: %s", in.Provider)
		}
		provider, ref = p, r
	}
	req := providers.AnalyzeRequest{
		Credential:  in.APIKey,
		Text:        util.TruncateRunes(in.Text, a.cfg.PromptCharBudget),
		Style:       in.Style,
		MaxSections: in.MaxSections,
	}
	if len(in.Images) > 0 {
		req.ImageB64, req.ImageMIME = splitDataURI(in.Images[0])
	}
	resp, info, err := provider.Analyze(ctx, req)
	if err != nil {
		return AnalyzeOutput{}, fmt.Errorf("analyze via %s failed: %w", ref.Raw, err)
	}
	return AnalyzeOutput{
		Overview:     resp.Overview,
		Summary:      resp.Summary,
		QA:           resp.QA,
		ProviderName: info.Name,
		Model:        info.Model,
	}, nil
}

func (a *Activities) DebitActivity(ctx context.Context, in DebitInput) (DebitOutput, error) {
	if _, err := a.ledger.InitializeOrReload(ctx); err != nil {
		return DebitOutput{}, err
	}
	state, err := a.ledger.Debit(ctx, in.Amount)
	if err != nil {
		return DebitOutput{}, err
	}
	return DebitOutput{Remaining: state.RemainingCredits}, nil
}

func (a *Activities) RecordHistoryActivity(ctx context.Context, in RecordHistoryInput) error {
	if a.history == nil {
		return nil
	}
	return a.history.Insert(ctx, models.HistoryEntry{
		SessionID: in.SessionID,
		Filename:  in.Filename,
		Kind:      in.Kind,
		Overview:  util.DisplaySnippet(in.Overview, 240),
	})
}

func (a *Activities) WriteSessionArtifactsActivity(ctx context.Context, in WriteSessionArtifactsInput) error {
	_ = ctx
	dir := filepath.Join(a.cfg.DataOutRoot, in.SessionID)
	if in.Text != "" {
		if err := util.WriteTextAtomic(filepath.Join(dir, "extraction.txt"), in.Text); err != nil {
			return err
		}
	}
	analysis := map[string]any{
		"session_id": in.SessionID,
		"filename":   in.Filename,
		"kind":       in.Kind,
		"overview":   in.Overview,
		"summary":    in.Summary,
	}
	if err := util.WriteJSONAtomic(filepath.Join(dir, "analysis.json"), analysis); err != nil {
		return err
	}
	if len(in.QA) > 0 {
		rows := make([]any, 0, len(in.QA))
		for _, qa := range in.QA {
			rows = append(rows, qa)
		}
		if err := util.WriteJSONLinesAtomic(filepath.Join(dir, "qa.jsonl"), rows); err != nil {
			return err
		}
	}
	return nil
}

// splitDataURI undoes the data URI wrapping applied during extraction,
// returning the raw base64 payload and its MIME type.
func splitDataURI(uri string) (b64, mime string) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return uri, ""
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return uri, ""
	}
	mime = strings.TrimSuffix(meta, ";base64")
	return payload, mime
}
