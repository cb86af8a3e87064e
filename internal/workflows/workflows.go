package workflows

import (
	"strings"
	"time"

	"studydesk/internal/activities"
	"studydesk/internal/providers"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetSessionStatus = "GetSessionStatus"

// StudySessionWorkflow drives one upload end to end: credit check, content
// extraction, provider analysis, the credit debit, then artifacts and history.
// Expected input failures (no credits, unreadable file, exhausted provider
// quota) end the workflow gracefully with a terminal status instead of an
// error; only the quota path skips the debit along with the earlier two.
func StudySessionWorkflow(ctx workflow.Context, input StudySessionInput) (string, error) {
	status := StudySessionStatus{
		SessionID:   input.SessionID,
		Filename:    input.Filename,
		CurrentStep: "init",
		Status:      "processing",
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetSessionStatus, func() (StudySessionStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	status.CurrentStep = "check_credits"
	status.Steps[status.CurrentStep] = "processing"
	var creditsOut activities.CheckCreditsOutput
	if err := workflow.ExecuteActivity(ctx, "CheckCreditsActivity", activities.CheckCreditsInput{}).Get(ctx, &creditsOut); err != nil {
		return "", err
	}
	status.RemainingCredits = creditsOut.Remaining
	if !creditsOut.Allowed {
		status.Status = "blocked"
		status.FailReason = "no credits remaining"
		status.Steps[status.CurrentStep] = "failed"
		return status.Status, nil
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "extract"
	status.Steps[status.CurrentStep] = "processing"
	var extractOut activities.ExtractOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractActivity", activities.ExtractInput{
		Path:     input.FilePath,
		MIMEType: input.MIMEType,
		Filename: input.Filename,
	}).Get(ctx, &extractOut); err != nil {
		if isUnreadableFileError(err) {
			status.Status = "failed"
			status.FailReason = "file could not be read as a document, slide deck, or image"
			status.Steps[status.CurrentStep] = "failed"
			return status.Status, nil
		}
		return "", err
	}
	status.Kind = extractOut.Kind
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "analyze"
	status.Steps[status.CurrentStep] = "processing"
	var analyzeOut activities.AnalyzeOutput
	if err := workflow.ExecuteActivity(ctx, "AnalyzeActivity", activities.AnalyzeInput{
		Provider:    input.Provider,
		APIKey:      creditsOut.APIKey,
		Text:        extractOut.Text,
		Images:      extractOut.Images,
		Style:       input.SummaryStyle,
		MaxSections: input.MaxSections,
	}).Get(ctx, &analyzeOut); err != nil {
		if isProviderQuotaError(err) {
			status.Status = "failed"
			status.FailReason = "provider quota exhausted, no credit was spent"
			status.Steps[status.CurrentStep] = "failed"
			return status.Status, nil
		}
		return "", err
	}
	status.Overview = analyzeOut.Overview
	status.ProviderName = analyzeOut.ProviderName
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "debit"
	status.Steps[status.CurrentStep] = "processing"
	var debitOut activities.DebitOutput
	if err := workflow.ExecuteActivity(ctx, "DebitActivity", activities.DebitInput{Amount: 1}).Get(ctx, &debitOut); err != nil {
		return "", err
	}
	status.RemainingCredits = debitOut.Remaining
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "write_artifacts"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "WriteSessionArtifactsActivity", activities.WriteSessionArtifactsInput{
		SessionID: input.SessionID,
		Filename:  input.Filename,
		Kind:      extractOut.Kind,
		Text:      extractOut.Text,
		Images:    extractOut.Images,
		Overview:  analyzeOut.Overview,
		Summary:   analyzeOut.Summary,
		QA:        analyzeOut.QA,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "record_history"
	status.Steps[status.CurrentStep] = "processing"
	// History is best effort: a dead database should not fail a session the
	// user already paid a credit for.
	_ = workflow.ExecuteActivity(ctx, "RecordHistoryActivity", activities.RecordHistoryInput{
		SessionID: input.SessionID,
		Filename:  input.Filename,
		Kind:      extractOut.Kind,
		Overview:  analyzeOut.Overview,
	}).Get(ctx, nil)
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "done"
	status.Status = "completed"
	return status.Status, nil
}

func isUnreadableFileError(err error) bool {
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "not a readable") || strings.Contains(e, "unsupported file format")
}

func isProviderQuotaError(err error) bool {
	return providers.ClassifyError(err) == providers.ErrorQuota
}
