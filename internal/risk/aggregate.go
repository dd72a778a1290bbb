package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"txnrisk/internal/currency"
)

// Aggregate folds a transaction history into the spending state for the
// calendar month and day containing asOf. History ordering is irrelevant and
// an empty history yields zero spending.
//
// Calendar boundaries are taken in asOf's location rather than UTC; a
// transaction near midnight may therefore land in a different day than a
// UTC-normalised fold would put it. Known simplification, kept for parity
// with the live dashboard.
func Aggregate(history []Transaction, asOf time.Time, rates *currency.Table) SpendingState {
	state := SpendingState{
		MonthToDate: decimal.Zero,
		DayToDate:   decimal.Zero,
	}

	loc := asOf.Location()
	year, month, day := asOf.In(loc).Date()

	for _, tx := range history {
		norm, err := rates.Normalize(tx.Amount, tx.Currency)
		if err != nil {
			// Malformed history entries contribute nothing.
			continue
		}

		ty, tm, td := tx.Timestamp.In(loc).Date()
		if ty != year || tm != month {
			continue
		}
		state.MonthToDate = state.MonthToDate.Add(norm.Value)
		if td == day {
			state.DayToDate = state.DayToDate.Add(norm.Value)
		}
	}

	return state
}

// Aggregate folds history using the scorer's own rate table.
func (s *Scorer) Aggregate(history []Transaction, asOf time.Time) SpendingState {
	return Aggregate(history, asOf, s.rates)
}
