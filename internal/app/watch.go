package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"txnrisk/internal/engine"
	"txnrisk/internal/scheduler"
)

// Watch runs the long-lived budget alert loop: every interval, recompute the
// spending state of each opted-in user and notify on threshold breaches.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	profiles, history, locker, closeStores, err := a.stores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	evaluator := a.newEvaluator(profiles, history)

	watcher := engine.NewBudgetWatcher(evaluator, notifier, locker, engine.WatchOptions{
		MonthlyPct: decimal.NewFromFloat(a.Config.Alerting.MonthlyPct),
		DailyPct:   decimal.NewFromFloat(a.Config.Alerting.DailyPct),
		Cooldown:   a.Config.Alerting.Cooldown,
		Channels:   a.Config.Alerting.Channels,
		LockKey:    a.Config.Watch.AdvisoryLockKey,
	}, a.Logger)

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToInterval,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Msg("starting budget watch")
	err = sched.Run(ctx, watcher.ProcessTick)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("budget watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("budget watch stopped")
	return nil
}
