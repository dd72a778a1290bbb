package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"txnrisk/internal/alerting"
	"txnrisk/internal/config"
	"txnrisk/internal/currency"
	"txnrisk/internal/engine"
	"txnrisk/internal/risk"
	"txnrisk/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newScorer() *risk.Scorer {
	rates := currency.NewTable(a.Config.Rates)
	return risk.NewScorer(rates, a.Config.Risk.HighRiskKeywords)
}

// defaultProfile materialises the configured fallback profile.
func (a *App) defaultProfile() risk.Profile {
	cfg := a.Config.Risk
	profile := risk.DefaultProfile()
	if cfg.MonthlyBudget > 0 {
		profile.MonthlyBudget = decimal.NewFromFloat(cfg.MonthlyBudget)
	}
	if cfg.DailyLimit > 0 {
		profile.DailyLimit = decimal.NewFromFloat(cfg.DailyLimit)
	}
	if cfg.RiskTolerance != "" {
		profile.RiskTolerance = risk.Tolerance(cfg.RiskTolerance)
	}
	profile.RiskThreshold = cfg.RiskThreshold
	profile.BudgetAlerts = cfg.BudgetAlerts
	return profile
}

// stores opens the Postgres-backed stores when a DSN is configured and falls
// back to a fresh in-memory store otherwise. The advisory locker is nil in
// memory mode.
func (a *App) stores(ctx context.Context) (storage.ProfileStore, storage.TransactionStore, storage.AdvisoryLocker, func(), error) {
	if a.Config.Database.DSN == "" {
		a.Logger.Warn().Msg("database.dsn not configured; using in-memory stores, nothing will persist")
		mem := storage.NewMemoryStore()
		return mem, mem, nil, func() {}, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	store := storage.NewStore(pool)
	return store, store, store, store.Close, nil
}

func (a *App) newEvaluator(profiles storage.ProfileStore, history storage.TransactionStore) *engine.Evaluator {
	return engine.New(profiles, history, a.newScorer(), a.Logger,
		engine.WithDefaultProfile(a.defaultProfile()),
		engine.WithBatchWorkers(a.Config.Risk.BatchWorkers),
	)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}
