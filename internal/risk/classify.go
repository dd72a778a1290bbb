package risk

// Classify clamps a raw rule-engine score into [0,100] and decides the
// approve/flag status against the profile threshold. Clamping happens
// strictly after all rules have been summed, never on partial sums, so a
// pre-clamp 130 is indistinguishable from an exact 100.
func Classify(raw, threshold int) (int, Status) {
	score := clampScore(raw)
	if score > threshold {
		return score, StatusFlagged
	}
	return score, StatusApproved
}

func clampScore(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}
