// Package engine composes the pure risk core with its collaborators: the
// profile store, the transaction history source, and an injectable clock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"txnrisk/internal/risk"
	"txnrisk/internal/storage"
)

var (
	// ErrProfileUnavailable signals that the profile store could not be
	// reached. Propagated as-is; retry policy belongs to the store.
	ErrProfileUnavailable = errors.New("engine: profile store unavailable")
	// ErrHistoryUnavailable signals that the history source could not be
	// reached.
	ErrHistoryUnavailable = errors.New("engine: history source unavailable")
)

// Clock supplies the reference instant for spending aggregation.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock default.
var SystemClock Clock = systemClock{}

// Evaluator is the single entry point for scoring transactions. All engine
// state is immutable configuration; evaluations are independent and safe to
// run concurrently.
type Evaluator struct {
	profiles storage.ProfileStore
	history  storage.TransactionStore
	scorer   *risk.Scorer
	defaults risk.Profile
	clock    Clock
	workers  int
	logger   zerolog.Logger
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithClock injects a clock, primarily for tests.
func WithClock(c Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

// WithBatchWorkers bounds batch evaluation parallelism.
func WithBatchWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithDefaultProfile overrides the profile used for users without one.
func WithDefaultProfile(p risk.Profile) Option {
	return func(e *Evaluator) { e.defaults = p }
}

// New constructs an Evaluator.
func New(profiles storage.ProfileStore, history storage.TransactionStore, scorer *risk.Scorer, logger zerolog.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		profiles: profiles,
		history:  history,
		scorer:   scorer,
		defaults: risk.DefaultProfile(),
		clock:    SystemClock,
		workers:  4,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores a candidate transaction for userID against the stored
// profile and the month-to-date history as of the injected clock. The
// candidate itself is never counted into the spending state it is scored
// against.
func (e *Evaluator) Evaluate(ctx context.Context, tx risk.Transaction, userID string) (risk.Assessment, error) {
	profile, spending, asOf, err := e.snapshot(ctx, userID)
	if err != nil {
		return risk.Assessment{}, err
	}

	assessment, err := e.scorer.Assess(tx, profile, spending)
	if err != nil {
		return risk.Assessment{}, err
	}

	e.logger.Debug().
		Str("user_id", userID).
		Str("merchant", tx.Merchant).
		Int("score", assessment.Score).
		Str("status", string(assessment.Status)).
		Time("as_of", asOf).
		Msg("transaction evaluated")

	return assessment, nil
}

// EvaluateWithProfile scores tx against an explicit profile snapshot instead
// of the stored one; spending is still derived from the stored history. Used
// by the what-if simulator.
func (e *Evaluator) EvaluateWithProfile(ctx context.Context, tx risk.Transaction, userID string, profile risk.Profile) (risk.Assessment, error) {
	asOf := e.clock.Now()
	history, err := e.history.ListTransactionsBetween(ctx, userID, monthStart(asOf), asOf)
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	spending := e.scorer.Aggregate(history, asOf)
	return e.scorer.Assess(tx, profile, spending)
}

// Submit evaluates the transaction and, on success, records it with its
// assessment into the user's history. Missing ID and timestamp are filled in
// before scoring.
func (e *Evaluator) Submit(ctx context.Context, tx risk.Transaction, userID string) (risk.Transaction, risk.Assessment, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = e.clock.Now()
	}

	assessment, err := e.Evaluate(ctx, tx, userID)
	if err != nil {
		return risk.Transaction{}, risk.Assessment{}, err
	}

	if err := e.history.RecordTransaction(ctx, userID, tx, assessment); err != nil {
		return risk.Transaction{}, risk.Assessment{}, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}

	return tx, assessment, nil
}

// BatchResult pairs an input transaction with its assessment, keyed by the
// input position.
type BatchResult struct {
	Index       int
	Transaction risk.Transaction
	Assessment  risk.Assessment
	Err         error
}

// EvaluateBatch scores candidates against a single profile/history snapshot,
// fanning the pure per-transaction work across a bounded worker pool.
// Results come back in input order; nothing is persisted.
func (e *Evaluator) EvaluateBatch(ctx context.Context, txs []risk.Transaction, userID string) ([]BatchResult, error) {
	profile, spending, _, err := e.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(txs))
	indexes := make(chan int)

	workers := e.workers
	if workers > len(txs) {
		workers = len(txs)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				assessment, assessErr := e.scorer.Assess(txs[i], profile, spending)
				results[i] = BatchResult{
					Index:       i,
					Transaction: txs[i],
					Assessment:  assessment,
					Err:         assessErr,
				}
			}
		}()
	}

	for i := range txs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results, nil
}

// BudgetStatus reports current budget utilisation for a user.
func (e *Evaluator) BudgetStatus(ctx context.Context, userID string) (risk.BudgetStatusReport, error) {
	profile, spending, _, err := e.snapshot(ctx, userID)
	if err != nil {
		return risk.BudgetStatusReport{}, err
	}
	return risk.BudgetStatus(profile, spending), nil
}

// snapshot fetches the profile (or default) and derives the spending state
// for the current clock instant.
func (e *Evaluator) snapshot(ctx context.Context, userID string) (risk.Profile, risk.SpendingState, time.Time, error) {
	profile, found, err := e.profiles.GetProfile(ctx, userID)
	if err != nil {
		return risk.Profile{}, risk.SpendingState{}, time.Time{}, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	if !found {
		profile = e.defaults
	}

	asOf := e.clock.Now()
	history, err := e.history.ListTransactionsBetween(ctx, userID, monthStart(asOf), asOf)
	if err != nil {
		return risk.Profile{}, risk.SpendingState{}, time.Time{}, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}

	spending := e.scorer.Aggregate(history, asOf)
	return profile, spending, asOf, nil
}

func monthStart(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}
