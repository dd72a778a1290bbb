package engine

import (
	"context"
	"fmt"

	"txnrisk/internal/risk"
)

// Profile returns the user's stored profile, or the documented default when
// none exists.
func (e *Evaluator) Profile(ctx context.Context, userID string) (risk.Profile, error) {
	profile, found, err := e.profiles.GetProfile(ctx, userID)
	if err != nil {
		return risk.Profile{}, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	if !found {
		profile = e.defaults
	}
	return profile, nil
}

// UpdateProfile validates and persists a full profile replacement.
func (e *Evaluator) UpdateProfile(ctx context.Context, userID string, profile risk.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return e.putProfile(ctx, userID, profile)
}

// TrustMerchant adds name to the trusted list and persists the profile.
// Adding an already present name is a no-op, not an error; persistence still
// runs so the operation is only complete once the store has the profile.
func (e *Evaluator) TrustMerchant(ctx context.Context, userID, name string) error {
	return e.mutateProfile(ctx, userID, func(p *risk.Profile) {
		p.AddTrustedMerchant(name)
	})
}

// UntrustMerchant removes name from the trusted list and persists.
func (e *Evaluator) UntrustMerchant(ctx context.Context, userID, name string) error {
	return e.mutateProfile(ctx, userID, func(p *risk.Profile) {
		p.RemoveTrustedMerchant(name)
	})
}

// BlockMerchant adds name to the blocked list and persists.
func (e *Evaluator) BlockMerchant(ctx context.Context, userID, name string) error {
	return e.mutateProfile(ctx, userID, func(p *risk.Profile) {
		p.AddBlockedMerchant(name)
	})
}

// UnblockMerchant removes name from the blocked list and persists.
func (e *Evaluator) UnblockMerchant(ctx context.Context, userID, name string) error {
	return e.mutateProfile(ctx, userID, func(p *risk.Profile) {
		p.RemoveBlockedMerchant(name)
	})
}

func (e *Evaluator) mutateProfile(ctx context.Context, userID string, mutate func(*risk.Profile)) error {
	profile, err := e.Profile(ctx, userID)
	if err != nil {
		return err
	}
	mutate(&profile)
	return e.putProfile(ctx, userID, profile)
}

func (e *Evaluator) putProfile(ctx context.Context, userID string, profile risk.Profile) error {
	if err := e.profiles.PutProfile(ctx, userID, profile); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	e.logger.Info().Str("user_id", userID).Msg("profile persisted")
	return nil
}
