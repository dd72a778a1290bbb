package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"txnrisk/internal/alerting"
	"txnrisk/internal/storage"
)

// WatchOptions tune the budget watch loop.
type WatchOptions struct {
	MonthlyPct decimal.Decimal
	DailyPct   decimal.Decimal
	Cooldown   time.Duration
	Channels   []string
	LockKey    int64
}

// BudgetWatcher periodically recomputes each opted-in user's spending state
// and raises an alert when utilisation crosses the configured thresholds.
// Per-user cooldown suppresses repeat alerts between ticks.
type BudgetWatcher struct {
	evaluator *Evaluator
	profiles  storage.ProfileStore
	notifier  alerting.Notifier
	locker    storage.AdvisoryLocker
	opts      WatchOptions
	logger    zerolog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewBudgetWatcher wires a watcher over the evaluator's stores. locker may be
// nil when no shared database backs the loop.
func NewBudgetWatcher(evaluator *Evaluator, notifier alerting.Notifier, locker storage.AdvisoryLocker, opts WatchOptions, logger zerolog.Logger) *BudgetWatcher {
	return &BudgetWatcher{
		evaluator: evaluator,
		profiles:  evaluator.profiles,
		notifier:  notifier,
		locker:    locker,
		opts:      opts,
		logger:    logger.With().Str("component", "budget_watch").Logger(),
		lastSent:  make(map[string]time.Time),
	}
}

// ProcessTick runs one watch pass: list opted-in users, derive their budget
// status, notify on threshold breaches.
func (w *BudgetWatcher) ProcessTick(ctx context.Context, tick time.Time) error {
	unlock, proceed, err := w.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		w.logger.Debug().Time("tick", tick).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	users, err := w.profiles.ListAlertUsers(ctx)
	if err != nil {
		return err
	}

	for _, userID := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := w.checkUser(ctx, userID, tick); err != nil {
			w.logger.Error().Err(err).Str("user_id", userID).Msg("budget check failed")
		}
	}
	return nil
}

func (w *BudgetWatcher) checkUser(ctx context.Context, userID string, tick time.Time) error {
	profile, err := w.evaluator.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !profile.BudgetAlerts {
		return nil
	}

	report, err := w.evaluator.BudgetStatus(ctx, userID)
	if err != nil {
		return err
	}

	var breaches []string
	if report.MonthlyUsedPct.GreaterThanOrEqual(w.opts.MonthlyPct) {
		breaches = append(breaches, "monthly budget")
	}
	if report.DailyUsedPct.GreaterThanOrEqual(w.opts.DailyPct) {
		breaches = append(breaches, "daily limit")
	}
	if len(breaches) == 0 {
		return nil
	}

	if !w.shouldNotify(userID, tick) {
		w.logger.Debug().Str("user_id", userID).Msg("alert suppressed by cooldown")
		return nil
	}

	note := alerting.Notification{
		UserID:           userID,
		When:             tick,
		Breaches:         breaches,
		MonthlyUsedPct:   report.MonthlyUsedPct,
		DailyUsedPct:     report.DailyUsedPct,
		MonthlyRemaining: report.MonthlyRemaining,
		DailyRemaining:   report.DailyRemaining,
		Channels:         w.opts.Channels,
	}
	if err := w.notifier.Notify(ctx, note); err != nil {
		return err
	}
	w.markNotified(userID, tick)
	return nil
}

func (w *BudgetWatcher) shouldNotify(userID string, tick time.Time) bool {
	if w.opts.Cooldown <= 0 {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.lastSent[userID]
	return !ok || tick.Sub(last) >= w.opts.Cooldown
}

func (w *BudgetWatcher) markNotified(userID string, tick time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSent[userID] = tick
}

func (w *BudgetWatcher) acquireLock(ctx context.Context) (func(), bool, error) {
	if w.opts.LockKey == 0 || w.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := w.locker.TryAdvisoryLock(ctx, w.opts.LockKey)
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
