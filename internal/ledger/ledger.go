// Package ledger owns the persisted subscription/credit state: daily
// free-tier resets, redemption-code application, and per-operation debits.
// It is a pure state machine over an injected key-value store; callers hold
// one Ledger per session and reload on demand to pick up writes from other
// processes (last write wins, there is no cross-process locking).
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"studydesk/internal/models"
	"studydesk/internal/util"
)

const (
	TierFree      = 0
	TierUnlimited = 999

	stateKey   = "studydesk.subscription"
	dateLayout = "2006-01-02"
)

// Store is the durable key-value boundary the ledger persists through.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type Ledger struct {
	store      Store
	dailyLimit int
	pools      map[string][]string
	state      models.SubscriptionState
	loaded     bool
	now        func() time.Time
	pick       func(n int) int
}

// New builds a ledger over store. pools maps pool names (free, plus, pro,
// unlimited) to credential lists; dailyLimit is the free-tier daily grant.
func New(store Store, dailyLimit int, pools map[string][]string) *Ledger {
	if dailyLimit <= 0 {
		dailyLimit = 5
	}
	return &Ledger{
		store:      store,
		dailyLimit: dailyLimit,
		pools:      pools,
		now:        time.Now,
		pick:       rand.Intn,
	}
}

// InitializeOrReload loads the persisted state, seeding a fresh free-tier
// record when none exists and applying the daily-reset rule otherwise. Safe
// and idempotent on every load and every visibility-regain.
func (l *Ledger) InitializeOrReload(ctx context.Context) (models.SubscriptionState, error) {
	raw, ok, err := l.store.Get(ctx, stateKey)
	if err != nil {
		return models.SubscriptionState{}, fmt.Errorf("load subscription state: %w", err)
	}
	today := l.today()
	if !ok {
		l.state = models.SubscriptionState{
			RemainingCredits: l.dailyLimit,
			CurrentTier:      TierFree,
			ActiveAPIKey:     l.selectKey("free"),
			LastDailyReset:   today,
		}
		l.loaded = true
		return l.state, l.persist(ctx)
	}

	var st models.SubscriptionState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return models.SubscriptionState{}, fmt.Errorf("decode subscription state: %w", err)
	}
	l.state = st
	l.loaded = true

	// Calendar-date comparison on purpose: crossing local midnight resets
	// even if fewer than 24h elapsed. Paid tiers never auto-reset.
	if st.CurrentTier == TierFree && st.LastDailyReset != today {
		l.state.RemainingCredits = l.dailyLimit
		l.state.LastDailyReset = today
		l.state.ActiveAPIKey = l.selectKey("free")
		return l.state, l.persist(ctx)
	}
	return l.state, nil
}

// Redeem exchanges a code for its tier upgrade and credit grant. The grant
// replaces the current balance; it does not add to it. Unknown codes leave
// the state untouched. Codes are a shared secret, not a single-use token:
// nothing here tracks whether a code was redeemed before.
func (l *Ledger) Redeem(ctx context.Context, code string) (models.SubscriptionState, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return models.SubscriptionState{}, err
	}
	grant, ok := redemptionCodes[code]
	if !ok {
		return l.state, fmt.Errorf("%w: %q", util.ErrInvalidCode, code)
	}
	l.state.CurrentTier = grant.Tier
	l.state.RemainingCredits = grant.Credits
	l.state.ActiveAPIKey = l.selectKey(grant.Pool)
	return l.state, l.persist(ctx)
}

// Debit consumes n credits, clamping at zero. The unlimited tier is never
// debited. Balance exhaustion is not an error here; CanProceed gates usage.
func (l *Ledger) Debit(ctx context.Context, n int) (models.SubscriptionState, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return models.SubscriptionState{}, err
	}
	if l.state.CurrentTier == TierUnlimited {
		return l.state, nil
	}
	l.state.RemainingCredits -= n
	if l.state.RemainingCredits < 0 {
		l.state.RemainingCredits = 0
	}
	l.state.HasUsedTrial = true
	return l.state, l.persist(ctx)
}

// ensureLoaded backfills initialization for callers that mutate before ever
// calling InitializeOrReload, so mutations never apply to a zero state.
func (l *Ledger) ensureLoaded(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	_, err := l.InitializeOrReload(ctx)
	return err
}

// CanProceed reports whether another analysis operation may run.
func (l *Ledger) CanProceed() bool {
	return l.state.RemainingCredits > 0
}

// State returns the current in-memory state without touching the store.
func (l *Ledger) State() models.SubscriptionState {
	return l.state
}

// persist writes the state back synchronously. On a write failure the new
// value stays committed in memory for the current session and the caller is
// told the change may not survive a reload.
func (l *Ledger) persist(ctx context.Context) error {
	raw, err := json.Marshal(l.state)
	if err != nil {
		return fmt.Errorf("encode subscription state: %w", err)
	}
	if err := l.store.Set(ctx, stateKey, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", util.ErrPersistence, err)
	}
	return nil
}

func (l *Ledger) today() string {
	return l.now().Format(dateLayout)
}

// selectKey picks a random credential from the named pool, spreading load
// across configured keys. A missing or empty pool falls back to a fixed
// placeholder so ActiveAPIKey is never empty once state exists.
func (l *Ledger) selectKey(pool string) string {
	keys := l.pools[pool]
	if len(keys) == 0 {
		return "missing-" + pool + "-key"
	}
	return keys[l.pick(len(keys))]
}
