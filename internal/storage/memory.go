package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"txnrisk/internal/risk"
)

// MemoryStore is an in-memory ProfileStore/TransactionStore used for tests
// and for running without a configured database. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]risk.Profile
	history  map[string][]ScoredTransaction
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]risk.Profile),
		history:  make(map[string][]ScoredTransaction),
	}
}

// GetProfile returns the stored profile, if any.
func (m *MemoryStore) GetProfile(_ context.Context, userID string) (risk.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return risk.Profile{}, false, nil
	}
	return cloneProfile(profile), true, nil
}

// PutProfile stores a copy of the profile.
func (m *MemoryStore) PutProfile(_ context.Context, userID string, profile risk.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = cloneProfile(profile)
	return nil
}

// ListAlertUsers lists users whose profile has budget alerts enabled.
func (m *MemoryStore) ListAlertUsers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]string, 0, len(m.profiles))
	for userID, profile := range m.profiles {
		if profile.BudgetAlerts {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users, nil
}

// RecordTransaction appends a scored transaction to the user's history.
func (m *MemoryStore) RecordTransaction(_ context.Context, userID string, tx risk.Transaction, assessment risk.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[userID] = append(m.history[userID], ScoredTransaction{
		Transaction: tx,
		Assessment:  assessment,
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// ListTransactionsBetween lists transactions within [from, to).
func (m *MemoryStore) ListTransactionsBetween(_ context.Context, userID string, from, to time.Time) ([]risk.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := make([]risk.Transaction, 0)
	for _, rec := range m.history[userID] {
		ts := rec.Transaction.Timestamp
		if ts.Before(from) || !ts.Before(to) {
			continue
		}
		txs = append(txs, rec.Transaction)
	}
	return txs, nil
}

// ListRecentTransactions lists up to limit records, newest first.
func (m *MemoryStore) ListRecentTransactions(_ context.Context, userID string, limit int) ([]ScoredTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := append([]ScoredTransaction(nil), m.history[userID]...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Transaction.Timestamp.After(records[j].Transaction.Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func cloneProfile(p risk.Profile) risk.Profile {
	p.TrustedMerchants = append([]string(nil), p.TrustedMerchants...)
	p.BlockedMerchants = append([]string(nil), p.BlockedMerchants...)
	return p
}

var (
	_ ProfileStore     = (*MemoryStore)(nil)
	_ TransactionStore = (*MemoryStore)(nil)
)
