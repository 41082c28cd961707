package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"drivego/internal/api"
	"drivego/internal/domain"
)

type stubBillingAPI struct {
	status      api.SubscriptionStatus
	cancelErr   error
	feedbackErr error

	cancelCalls   int
	feedbackCalls int
}

func (s *stubBillingAPI) GetSubscriptionStatus(_ context.Context) (api.SubscriptionStatus, error) {
	return s.status, nil
}

func (s *stubBillingAPI) GetPricingPlans(_ context.Context) ([]api.PricingPlan, error) {
	return []api.PricingPlan{{ID: "pro", Name: "Pro"}}, nil
}

func (s *stubBillingAPI) CancelSubscription(_ context.Context) error {
	s.cancelCalls++

	return s.cancelErr
}

func (s *stubBillingAPI) CancelSubscriptionWithReason(_ context.Context, reason, details string) error {
	s.feedbackCalls++

	return s.feedbackErr
}

func (s *stubBillingAPI) CreatePortalSession(_ context.Context, returnURL string) (string, error) {
	return "https://billing.example.com/portal", nil
}

func (s *stubBillingAPI) GetSubscriptionHistory(_ context.Context, subPage, subLimit, invPage, invLimit int) (api.SubscriptionHistory, error) {
	return api.SubscriptionHistory{}, nil
}

func proStatus() api.SubscriptionStatus {
	return api.SubscriptionStatus{
		Subscription: &domain.Subscription{
			ID:               "sub1",
			PlanName:         "Pro",
			Status:           domain.SubscriptionActive,
			CurrentPeriodEnd: time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
		Usage: domain.Usage{UsedBytes: 512 * 1024 * 1024, QuotaBytes: 2 * 1024 * 1024 * 1024},
	}
}

func TestBadgeForStatus(t *testing.T) {
	tests := []struct {
		status domain.SubscriptionStatus
		want   BadgeColor
	}{
		{domain.SubscriptionActive, BadgeGreen},
		{domain.SubscriptionTrialing, BadgeBlue},
		{domain.SubscriptionPastDue, BadgeYellow},
		{domain.SubscriptionCanceled, BadgeRed},
		{domain.SubscriptionStatus("unknown"), BadgeGray},
	}

	for _, tt := range tests {
		if got := BadgeForStatus(tt.status); got != tt.want {
			t.Fatalf("BadgeForStatus(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPlanNameSynthesizesFreePlan(t *testing.T) {
	billing := NewBilling(&stubBillingAPI{}, nil)
	if err := billing.LoadStatus(context.Background()); err != nil {
		t.Fatalf("LoadStatus() error = %v", err)
	}
	if got := billing.PlanName(); got != FreePlanName {
		t.Fatalf("PlanName() = %q, want %q", got, FreePlanName)
	}
	if got := billing.PeriodLabel(); got != "" {
		t.Fatalf("PeriodLabel() without subscription = %q", got)
	}
}

func TestPeriodLabel(t *testing.T) {
	apiStub := &stubBillingAPI{status: proStatus()}
	billing := NewBilling(apiStub, nil)
	if err := billing.LoadStatus(context.Background()); err != nil {
		t.Fatalf("LoadStatus() error = %v", err)
	}

	if got := billing.PeriodLabel(); got != "Renews on March 15, 2026" {
		t.Fatalf("PeriodLabel() = %q", got)
	}

	if err := billing.Cancel(context.Background()); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if got := billing.PeriodLabel(); got != "Cancels on March 15, 2026" {
		t.Fatalf("PeriodLabel() after cancel = %q", got)
	}
}

func TestCancelIndependentOfFeedback(t *testing.T) {
	apiStub := &stubBillingAPI{status: proStatus(), feedbackErr: errors.New("feedback service down")}
	billing := NewBilling(apiStub, nil)
	if err := billing.LoadStatus(context.Background()); err != nil {
		t.Fatalf("LoadStatus() error = %v", err)
	}

	if err := billing.Cancel(context.Background()); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if !billing.Status().Subscription.CancelAtPeriodEnd {
		t.Fatal("cancel-at-period-end not set after phase one")
	}

	// Phase two fails; phase one must stand.
	if err := billing.SubmitCancelFeedback(context.Background(), "too_expensive", "details"); err == nil {
		t.Fatal("feedback failure not surfaced")
	}
	if !billing.Status().Subscription.CancelAtPeriodEnd {
		t.Fatal("failed feedback reverted the cancellation")
	}
	if apiStub.cancelCalls != 1 {
		t.Fatalf("cancel calls = %d, want 1", apiStub.cancelCalls)
	}
}

func TestSubmitCancelFeedbackRequiresReason(t *testing.T) {
	apiStub := &stubBillingAPI{}
	billing := NewBilling(apiStub, nil)

	if err := billing.SubmitCancelFeedback(context.Background(), "", "free text"); err == nil {
		t.Fatal("empty reason accepted")
	}
	if apiStub.feedbackCalls != 0 {
		t.Fatal("feedback reached the network without a reason")
	}
}

func TestUsageSummary(t *testing.T) {
	billing := NewBilling(&stubBillingAPI{status: proStatus()}, nil)
	if err := billing.LoadStatus(context.Background()); err != nil {
		t.Fatalf("LoadStatus() error = %v", err)
	}
	if got := billing.UsageSummary(); got != "512MB of 2.0GB used" {
		t.Fatalf("UsageSummary() = %q", got)
	}
}
