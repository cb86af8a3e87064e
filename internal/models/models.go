package models

import "time"

// SubscriptionState is the durable quota record for this device.
// Tier 0 is the free daily plan; positive tiers are paid plans.
type SubscriptionState struct {
	HasUsedTrial     bool   `json:"has_used_trial"`
	RemainingCredits int    `json:"remaining_credits"`
	CurrentTier      int    `json:"current_tier"`
	ActiveAPIKey     string `json:"active_api_key"`
	LastDailyReset   string `json:"last_daily_reset,omitempty"`
}

type HistoryEntry struct {
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	Kind      string    `json:"kind"`
	Overview  string    `json:"overview,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
