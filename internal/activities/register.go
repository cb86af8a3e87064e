package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractActivity)
	w.RegisterActivity(a.CheckCreditsActivity)
	w.RegisterActivity(a.AnalyzeActivity)
	w.RegisterActivity(a.DebitActivity)
	w.RegisterActivity(a.RecordHistoryActivity)
	w.RegisterActivity(a.WriteSessionArtifactsActivity)
}
