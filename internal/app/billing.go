package app

import (
	"context"
	"log/slog"
	"sync"

	"drivego/internal/api"
	"drivego/internal/domain"
)

// FreePlanName is the synthesized plan shown when no subscription exists.
const FreePlanName = "Free Plan"

// BadgeColor names the accent used for a subscription status badge.
type BadgeColor string

const (
	BadgeGreen  BadgeColor = "green"
	BadgeBlue   BadgeColor = "blue"
	BadgeYellow BadgeColor = "yellow"
	BadgeRed    BadgeColor = "red"
	BadgeGray   BadgeColor = "gray"
)

// BadgeForStatus maps the billing status enum to its badge color.
func BadgeForStatus(status domain.SubscriptionStatus) BadgeColor {
	switch status {
	case domain.SubscriptionActive:
		return BadgeGreen
	case domain.SubscriptionTrialing:
		return BadgeBlue
	case domain.SubscriptionPastDue:
		return BadgeYellow
	case domain.SubscriptionCanceled:
		return BadgeRed
	default:
		return BadgeGray
	}
}

// BillingAPI is the slice of the API client behind the billing tab.
type BillingAPI interface {
	GetSubscriptionStatus(ctx context.Context) (api.SubscriptionStatus, error)
	GetPricingPlans(ctx context.Context) ([]api.PricingPlan, error)
	CancelSubscription(ctx context.Context) error
	CancelSubscriptionWithReason(ctx context.Context, reason, details string) error
	CreatePortalSession(ctx context.Context, returnURL string) (string, error)
	GetSubscriptionHistory(ctx context.Context, subPage, subLimit, invPage, invLimit int) (api.SubscriptionHistory, error)
}

// Billing owns the billing tab state: current subscription, usage, and the two
// independently paginated history sections.
type Billing struct {
	api    BillingAPI
	logger *slog.Logger

	mu      sync.RWMutex
	status  api.SubscriptionStatus
	history api.SubscriptionHistory
	plans   []api.PricingPlan
}

func NewBilling(billingAPI BillingAPI, logger *slog.Logger) *Billing {
	if logger == nil {
		logger = slog.Default().With("component", "billing")
	}

	return &Billing{api: billingAPI, logger: logger}
}

// LoadStatus fetches the subscription card and usage gauge data.
func (b *Billing) LoadStatus(ctx context.Context) error {
	status, err := b.api.GetSubscriptionStatus(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.status = status
	b.mu.Unlock()

	return nil
}

// LoadPlans fetches the pricing catalogue for the upsell view.
func (b *Billing) LoadPlans(ctx context.Context) error {
	plans, err := b.api.GetPricingPlans(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.plans = plans
	b.mu.Unlock()

	return nil
}

// LoadHistory fetches both history sections; each keeps its own page cursor.
func (b *Billing) LoadHistory(ctx context.Context, subPage, invPage int) error {
	history, err := b.api.GetSubscriptionHistory(ctx, subPage, HistoryPageSize, invPage, HistoryPageSize)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.history = history
	b.mu.Unlock()

	return nil
}

func (b *Billing) Status() api.SubscriptionStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.status
}

func (b *Billing) History() api.SubscriptionHistory {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.history
}

func (b *Billing) Plans() []api.PricingPlan {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]api.PricingPlan(nil), b.plans...)
}

// PlanName returns the display plan, synthesizing the free plan when no
// subscription exists.
func (b *Billing) PlanName() string {
	status := b.Status()
	if status.Subscription == nil {
		return FreePlanName
	}

	return status.Subscription.PlanName
}

// PeriodLabel renders the next-billing or cancellation date line.
func (b *Billing) PeriodLabel() string {
	status := b.Status()
	if status.Subscription == nil {
		return ""
	}
	end := status.Subscription.CurrentPeriodEnd
	if end.IsZero() {
		return ""
	}
	date := end.Format("January 2, 2006")
	if status.Subscription.CancelAtPeriodEnd {
		return "Cancels on " + date
	}

	return "Renews on " + date
}

// Cancel is phase one of the two-phase cancellation: it flips
// cancel-at-period-end at the payment provider and mirrors the flag locally.
// The optional feedback capture is a separate call and never rolls this back.
func (b *Billing) Cancel(ctx context.Context) error {
	if err := b.api.CancelSubscription(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	if b.status.Subscription != nil {
		b.status.Subscription.CancelAtPeriodEnd = true
	}
	b.mu.Unlock()
	b.logger.Info("subscription cancellation requested")

	return nil
}

// SubmitCancelFeedback is phase two: optional feedback, tolerant of being
// skipped or failing.
func (b *Billing) SubmitCancelFeedback(ctx context.Context, reason, details string) error {
	if reason == "" {
		return validationErr("Select a cancellation reason")
	}

	return b.api.CancelSubscriptionWithReason(ctx, reason, details)
}

// PortalURL opens a payment-provider portal session.
func (b *Billing) PortalURL(ctx context.Context) (string, error) {
	return b.api.CreatePortalSession(ctx, SourceURL)
}

// UsageSummary renders the gauge line, e.g. "1.5GB of 2.0GB used".
func (b *Billing) UsageSummary() string {
	usage := b.Status().Usage

	return domain.FormatStorageSize(usage.UsedBytes) + " of " + domain.FormatStorageSize(usage.QuotaBytes) + " used"
}
