package app

import (
	"context"
	"log/slog"
	"sync"

	"drivego/internal/api"
	"drivego/internal/domain"
)

// ReferralsAPI is the slice of the API client behind the referrals tab.
type ReferralsAPI interface {
	GetReferralInfo(ctx context.Context, page, pageSize int) (api.ReferralInfo, error)
}

// Referrals owns the referral program view.
type Referrals struct {
	api    ReferralsAPI
	logger *slog.Logger

	mu   sync.RWMutex
	info api.ReferralInfo
}

func NewReferrals(referralsAPI ReferralsAPI, logger *slog.Logger) *Referrals {
	if logger == nil {
		logger = slog.Default().With("component", "referrals")
	}

	return &Referrals{api: referralsAPI, logger: logger}
}

func (r *Referrals) Load(ctx context.Context, page int) error {
	info, err := r.api.GetReferralInfo(ctx, page, ReferralsPageSize)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.info = info
	r.mu.Unlock()

	return nil
}

func (r *Referrals) Info() api.ReferralInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.info
}

// ShareLink returns the copyable referral link, falling back to the bare code.
func (r *Referrals) ShareLink() string {
	info := r.Info()
	if info.Link != "" {
		return info.Link
	}

	return info.Code
}

// ProgressLabel renders earned storage against the program cap.
func (r *Referrals) ProgressLabel() string {
	stats := r.Info().Stats

	return domain.FormatStorageSize(stats.EarnedMB*1024*1024) + " of " +
		domain.FormatStorageSize(stats.CapMB*1024*1024) + " earned"
}

// BadgeForReferral maps a referral status to its badge color.
func BadgeForReferral(status domain.ReferralStatus) BadgeColor {
	switch status {
	case domain.ReferralCompleted:
		return BadgeGreen
	case domain.ReferralPending:
		return BadgeYellow
	case domain.ReferralCancelled:
		return BadgeRed
	default:
		return BadgeGray
	}
}
