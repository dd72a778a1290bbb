package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"txnrisk/internal/risk"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertProfileSQL = `INSERT INTO risk_profiles (
        user_id,
        monthly_budget,
        daily_limit,
        risk_tolerance,
        trusted_merchants,
        blocked_merchants,
        risk_threshold,
        budget_alerts,
        updated_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,NOW()
    )
    ON CONFLICT (user_id) DO UPDATE
    SET
        monthly_budget    = EXCLUDED.monthly_budget,
        daily_limit       = EXCLUDED.daily_limit,
        risk_tolerance    = EXCLUDED.risk_tolerance,
        trusted_merchants = EXCLUDED.trusted_merchants,
        blocked_merchants = EXCLUDED.blocked_merchants,
        risk_threshold    = EXCLUDED.risk_threshold,
        budget_alerts     = EXCLUDED.budget_alerts,
        updated_at        = NOW();`

	getProfileSQL = `SELECT
        monthly_budget,
        daily_limit,
        risk_tolerance,
        trusted_merchants,
        blocked_merchants,
        risk_threshold,
        budget_alerts
    FROM risk_profiles
    WHERE user_id = $1;`

	listAlertUsersSQL = `SELECT user_id FROM risk_profiles WHERE budget_alerts ORDER BY user_id;`

	insertTransactionSQL = `INSERT INTO transactions (
        id,
        user_id,
        amount,
        currency,
        merchant,
        occurred_at,
        risk_score,
        status,
        reasons
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    )
    ON CONFLICT (id) DO NOTHING;`

	listTransactionsBetweenSQL = `SELECT
        id,
        amount,
        currency,
        merchant,
        occurred_at
    FROM transactions
    WHERE user_id = $1
      AND occurred_at >= $2
      AND occurred_at < $3;`

	listRecentTransactionsSQL = `SELECT
        id,
        amount,
        currency,
        merchant,
        occurred_at,
        risk_score,
        status,
        reasons,
        created_at
    FROM transactions
    WHERE user_id = $1
    ORDER BY occurred_at DESC
    LIMIT $2;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// Store aggregates Postgres access to profiles and transactions.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// GetProfile loads a stored profile. A missing row is reported via the bool,
// not an error.
func (s *Store) GetProfile(ctx context.Context, userID string) (risk.Profile, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return risk.Profile{}, false, err
	}

	var (
		monthlyStr string
		dailyStr   string
		tolerance  string
		trusted    []string
		blocked    []string
		threshold  int
		alerts     bool
	)

	row := pool.QueryRow(ctx, getProfileSQL, userID)
	if scanErr := row.Scan(&monthlyStr, &dailyStr, &tolerance, &trusted, &blocked, &threshold, &alerts); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return risk.Profile{}, false, nil
		}
		return risk.Profile{}, false, fmt.Errorf("get profile: %w", scanErr)
	}

	monthly, convErr := decimal.NewFromString(monthlyStr)
	if convErr != nil {
		return risk.Profile{}, false, fmt.Errorf("parse monthly budget: %w", convErr)
	}
	daily, convErr := decimal.NewFromString(dailyStr)
	if convErr != nil {
		return risk.Profile{}, false, fmt.Errorf("parse daily limit: %w", convErr)
	}

	profile := risk.Profile{
		MonthlyBudget:    monthly,
		DailyLimit:       daily,
		RiskTolerance:    risk.Tolerance(tolerance),
		TrustedMerchants: trusted,
		BlockedMerchants: blocked,
		RiskThreshold:    threshold,
		BudgetAlerts:     alerts,
	}
	return profile, true, nil
}

// PutProfile persists (or replaces) a user's profile.
func (s *Store) PutProfile(ctx context.Context, userID string, profile risk.Profile) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertProfileSQL,
		userID,
		profile.MonthlyBudget.String(),
		profile.DailyLimit.String(),
		string(profile.RiskTolerance),
		profile.TrustedMerchants,
		profile.BlockedMerchants,
		profile.RiskThreshold,
		profile.BudgetAlerts,
	)
	if execErr != nil {
		return fmt.Errorf("put profile: %w", execErr)
	}
	return nil
}

// ListAlertUsers lists users with budget alerts enabled.
func (s *Store) ListAlertUsers(ctx context.Context) ([]string, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAlertUsersSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list alert users: %w", queryErr)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		users = append(users, userID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// RecordTransaction appends a scored transaction to a user's history.
func (s *Store) RecordTransaction(ctx context.Context, userID string, tx risk.Transaction, assessment risk.Assessment) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertTransactionSQL,
		tx.ID,
		userID,
		tx.Amount.String(),
		tx.Currency,
		tx.Merchant,
		tx.Timestamp,
		assessment.Score,
		string(assessment.Status),
		assessment.Reasons,
	)
	if execErr != nil {
		return fmt.Errorf("record transaction: %w", execErr)
	}
	return nil
}

// ListTransactionsBetween lists a user's transactions within [from, to).
func (s *Store) ListTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]risk.Transaction, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listTransactionsBetweenSQL, userID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list transactions between: %w", queryErr)
	}
	defer rows.Close()

	txs := make([]risk.Transaction, 0)
	for rows.Next() {
		var (
			tx        risk.Transaction
			amountStr string
		)
		if err := rows.Scan(&tx.ID, &amountStr, &tx.Currency, &tx.Merchant, &tx.Timestamp); err != nil {
			return nil, err
		}
		amount, convErr := decimal.NewFromString(amountStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse amount: %w", convErr)
		}
		tx.Amount = amount
		txs = append(txs, tx)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return txs, nil
}

// ListRecentTransactions lists the most recent scored transactions.
func (s *Store) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]ScoredTransaction, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentTransactionsSQL, userID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent transactions: %w", queryErr)
	}
	defer rows.Close()

	records := make([]ScoredTransaction, 0, limit)
	for rows.Next() {
		var (
			rec       ScoredTransaction
			amountStr string
			status    string
		)
		if err := rows.Scan(
			&rec.Transaction.ID,
			&amountStr,
			&rec.Transaction.Currency,
			&rec.Transaction.Merchant,
			&rec.Transaction.Timestamp,
			&rec.Assessment.Score,
			&status,
			&rec.Assessment.Reasons,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		amount, convErr := decimal.NewFromString(amountStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse amount: %w", convErr)
		}
		rec.Transaction.Amount = amount
		rec.Assessment.Status = risk.Status(status)
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a
// release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// Best effort: the lock is session-scoped and released on disconnect.
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

var (
	_ ProfileStore     = (*Store)(nil)
	_ TransactionStore = (*Store)(nil)
	_ AdvisoryLocker   = (*Store)(nil)
)
