package workflows

import (
	"context"
	"errors"
	"testing"

	"studydesk/internal/activities"
	"studydesk/internal/providers"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerSessionActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "CheckCreditsActivity", func(context.Context, activities.CheckCreditsInput) (activities.CheckCreditsOutput, error) {
		return activities.CheckCreditsOutput{}, nil
	})
	registerActivityName(env, "ExtractActivity", func(context.Context, activities.ExtractInput) (activities.ExtractOutput, error) {
		return activities.ExtractOutput{}, nil
	})
	registerActivityName(env, "AnalyzeActivity", func(context.Context, activities.AnalyzeInput) (activities.AnalyzeOutput, error) {
		return activities.AnalyzeOutput{}, nil
	})
	registerActivityName(env, "DebitActivity", func(context.Context, activities.DebitInput) (activities.DebitOutput, error) {
		return activities.DebitOutput{}, nil
	})
	registerActivityName(env, "WriteSessionArtifactsActivity", func(context.Context, activities.WriteSessionArtifactsInput) error { return nil })
	registerActivityName(env, "RecordHistoryActivity", func(context.Context, activities.RecordHistoryInput) error { return nil })
}

func sessionInput() StudySessionInput {
	return StudySessionInput{
		SessionID: "sess1",
		FilePath:  "/tmp/in/notes.pdf",
		MIMEType:  "application/pdf",
		Filename:  "notes.pdf",
	}
}

func TestStudySessionWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudySessionWorkflow)
	registerSessionActivities(env)

	env.OnActivity("CheckCreditsActivity", mock.Anything, mock.Anything).Return(activities.CheckCreditsOutput{Allowed: true, Remaining: 5, APIKey: "key1"}, nil)
	env.OnActivity("ExtractActivity", mock.Anything, activities.ExtractInput{Path: "/tmp/in/notes.pdf", MIMEType: "application/pdf", Filename: "notes.pdf"}).Return(activities.ExtractOutput{Kind: "paginated_doc", Text: "--- page 1 ---\nbody"}, nil)
	env.OnActivity("AnalyzeActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeOutput{Overview: "an overview", Summary: "a summary", QA: []providers.QAPair{{Question: "q", Answer: "a"}}, ProviderName: "mock", Model: "mock"}, nil)
	env.OnActivity("DebitActivity", mock.Anything, activities.DebitInput{Amount: 1}).Return(activities.DebitOutput{Remaining: 4}, nil).Once()
	env.OnActivity("WriteSessionArtifactsActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("RecordHistoryActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(StudySessionWorkflow, sessionInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)

	qv, err := env.QueryWorkflow(QueryGetSessionStatus)
	require.NoError(t, err)
	var status StudySessionStatus
	require.NoError(t, qv.Get(&status))
	require.Equal(t, "completed", status.Status)
	require.Equal(t, 4, status.RemainingCredits)
	require.Equal(t, "an overview", status.Overview)
}

func TestStudySessionWorkflowBlockedWithoutCredits(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudySessionWorkflow)
	registerSessionActivities(env)

	env.OnActivity("CheckCreditsActivity", mock.Anything, mock.Anything).Return(activities.CheckCreditsOutput{Allowed: false, Remaining: 0}, nil)

	env.ExecuteWorkflow(StudySessionWorkflow, sessionInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "blocked", out)
	env.AssertNotCalled(t, "ExtractActivity", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "DebitActivity", mock.Anything, mock.Anything)
}

func TestStudySessionWorkflowUnreadableFileFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudySessionWorkflow)
	registerSessionActivities(env)

	env.OnActivity("CheckCreditsActivity", mock.Anything, mock.Anything).Return(activities.CheckCreditsOutput{Allowed: true, Remaining: 5, APIKey: "key1"}, nil)
	env.OnActivity("ExtractActivity", mock.Anything, mock.Anything).Return(activities.ExtractOutput{}, errors.New("not a readable paginated document"))

	env.ExecuteWorkflow(StudySessionWorkflow, sessionInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
	env.AssertNotCalled(t, "DebitActivity", mock.Anything, mock.Anything)
}

func TestStudySessionWorkflowQuotaErrorSkipsDebit(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudySessionWorkflow)
	registerSessionActivities(env)

	env.OnActivity("CheckCreditsActivity", mock.Anything, mock.Anything).Return(activities.CheckCreditsOutput{Allowed: true, Remaining: 5, APIKey: "key1"}, nil)
	env.OnActivity("ExtractActivity", mock.Anything, mock.Anything).Return(activities.ExtractOutput{Kind: "paginated_doc", Text: "body"}, nil)
	env.OnActivity("AnalyzeActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeOutput{}, errors.New("provider returned insufficient_quota"))

	env.ExecuteWorkflow(StudySessionWorkflow, sessionInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
	env.AssertNotCalled(t, "DebitActivity", mock.Anything, mock.Anything)

	qv, err := env.QueryWorkflow(QueryGetSessionStatus)
	require.NoError(t, err)
	var status StudySessionStatus
	require.NoError(t, qv.Get(&status))
	require.Equal(t, "provider quota exhausted, no credit was spent", status.FailReason)
}
