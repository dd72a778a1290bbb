package risk

import (
	"strings"

	"github.com/shopspring/decimal"
)

// quickKeywords is the shorter keyword list the legacy server-side estimate
// used. The full rule engine additionally matches "betting".
var quickKeywords = []string{"casino", "crypto", "gambling"}

var (
	quickTierHigh = decimal.NewFromInt(10000)
	quickTierMid  = decimal.NewFromInt(5000)
	quickTierLow  = decimal.NewFromInt(1000)
)

// QuickScore is the coarse absolute-amount estimate used for instant
// simulator feedback: it knows nothing about the profile or spending history
// and the full rule engine supersedes it. Amount is expected in the
// reference unit.
func QuickScore(amount decimal.Decimal, merchant string) int {
	score := 0
	switch {
	case amount.GreaterThan(quickTierHigh):
		score += 50
	case amount.GreaterThan(quickTierMid):
		score += 30
	case amount.GreaterThan(quickTierLow):
		score += 10
	}

	merchant = strings.ToLower(merchant)
	for _, keyword := range quickKeywords {
		if strings.Contains(merchant, keyword) {
			score += 40
			break
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}
