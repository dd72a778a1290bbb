package storage

import (
	"context"
	"time"

	"txnrisk/internal/risk"
)

// ScoredTransaction is a persisted transaction together with the assessment
// it received on submission.
type ScoredTransaction struct {
	Transaction risk.Transaction
	Assessment  risk.Assessment
	CreatedAt   time.Time
}

// ProfileStore persists per-user risk profiles.
type ProfileStore interface {
	// GetProfile returns the stored profile and whether one exists. A missing
	// profile is not an error; callers substitute the documented default.
	GetProfile(ctx context.Context, userID string) (risk.Profile, bool, error)
	PutProfile(ctx context.Context, userID string, profile risk.Profile) error
	// ListAlertUsers returns the users whose profile has budget alerts on.
	ListAlertUsers(ctx context.Context) ([]string, error)
}

// TransactionStore persists scored transactions and serves history reads.
// Ordering of returned history is unspecified; aggregation must not rely on
// it.
type TransactionStore interface {
	RecordTransaction(ctx context.Context, userID string, tx risk.Transaction, assessment risk.Assessment) error
	ListTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]risk.Transaction, error)
	ListRecentTransactions(ctx context.Context, userID string, limit int) ([]ScoredTransaction, error)
}

// AdvisoryLocker exposes advisory lock helpers for single-flight loops.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}
