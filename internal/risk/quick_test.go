package risk_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"txnrisk/internal/risk"
)

func TestQuickScore(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		merchant string
		want     int
	}{
		{name: "small amount", amount: "500", merchant: "Grocery Mart", want: 0},
		{name: "just over low tier", amount: "1000.01", merchant: "Grocery Mart", want: 10},
		{name: "low tier boundary excluded", amount: "1000", merchant: "Grocery Mart", want: 0},
		{name: "mid tier", amount: "5001", merchant: "Grocery Mart", want: 30},
		{name: "high tier", amount: "10001", merchant: "Grocery Mart", want: 50},
		{name: "keyword only", amount: "50", merchant: "Crypto Exchange", want: 40},
		{name: "keyword matches once", amount: "50", merchant: "Casino Gambling Hall", want: 40},
		{name: "tier plus keyword", amount: "12000", merchant: "Lucky Casino", want: 90},
		{name: "betting not in the quick list", amount: "50", merchant: "Betting Shop", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := risk.QuickScore(decimal.RequireFromString(tc.amount), tc.merchant)
			assert.Equal(t, tc.want, got)
		})
	}
}
