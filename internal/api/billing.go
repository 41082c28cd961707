package api

import (
	"context"
	"fmt"
	"net/http"

	"drivego/internal/domain"
)

// SubscriptionStatus bundles the current subscription (nil on the free plan)
// with usage against quota.
type SubscriptionStatus struct {
	Subscription *domain.Subscription
	Usage        domain.Usage
}

func (c *Client) GetSubscriptionStatus(ctx context.Context) (SubscriptionStatus, error) {
	var payload struct {
		Subscription *subscriptionPayload `json:"subscription"`
		Usage        usagePayload         `json:"usage"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/billing/subscription", nil, &payload); err != nil {
		return SubscriptionStatus{}, err
	}

	status := SubscriptionStatus{
		Usage: domain.Usage(payload.Usage),
	}
	if payload.Subscription != nil {
		sub := payload.Subscription.toDomain()
		status.Subscription = &sub
	}

	return status, nil
}

// PricingPlan describes one purchasable tier.
type PricingPlan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	QuotaBytes  int64  `json:"quotaBytes"`
	Description string `json:"description"`
}

func (c *Client) GetPricingPlans(ctx context.Context) ([]PricingPlan, error) {
	var payload struct {
		Plans []PricingPlan `json:"plans"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/billing/plans", nil, &payload); err != nil {
		return nil, err
	}

	return payload.Plans, nil
}

// CancelSubscription flips cancel-at-period-end at the payment provider. The
// feedback capture is a separate, optional call.
func (c *Client) CancelSubscription(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/billing/subscription/cancel", nil, nil)
}

// CancelSubscriptionWithReason records cancellation feedback. Failure here
// never rolls back an already performed cancellation.
func (c *Client) CancelSubscriptionWithReason(ctx context.Context, reason, details string) error {
	body := map[string]string{
		"reason":  reason,
		"details": details,
	}

	return c.doJSON(ctx, http.MethodPost, "/v1/billing/subscription/cancel-feedback", body, nil)
}

func (c *Client) CreatePortalSession(ctx context.Context, returnURL string) (string, error) {
	var payload struct {
		URL string `json:"url"`
	}
	body := map[string]string{"returnUrl": returnURL}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/billing/portal", body, &payload); err != nil {
		return "", err
	}

	return payload.URL, nil
}

// SubscriptionHistory carries the two independently paginated history sections.
type SubscriptionHistory struct {
	Subscriptions domain.PagedList[domain.SubscriptionRecord]
	Invoices      domain.PagedList[domain.Invoice]
}

func (c *Client) GetSubscriptionHistory(ctx context.Context, subPage, subLimit, invPage, invLimit int) (SubscriptionHistory, error) {
	var payload struct {
		History            []subscriptionRecordPayload `json:"history"`
		HistoryPagination  paginationPayload           `json:"historyPagination"`
		Invoices           []invoicePayload            `json:"invoices"`
		InvoicesPagination paginationPayload           `json:"invoicesPagination"`
	}
	path := fmt.Sprintf("/v1/billing/history?subPage=%d&subLimit=%d&invPage=%d&invLimit=%d", subPage, subLimit, invPage, invLimit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return SubscriptionHistory{}, err
	}

	records := make([]domain.SubscriptionRecord, 0, len(payload.History))
	for _, rec := range payload.History {
		records = append(records, domain.SubscriptionRecord{
			ID:        rec.ID,
			PlanName:  rec.PlanName,
			Status:    domain.SubscriptionStatus(rec.Status),
			StartedAt: rec.StartedAt,
			EndedAt:   rec.EndedAt,
		})
	}
	invoices := make([]domain.Invoice, 0, len(payload.Invoices))
	for _, inv := range payload.Invoices {
		invoices = append(invoices, domain.Invoice(inv))
	}

	return SubscriptionHistory{
		Subscriptions: domain.PagedList[domain.SubscriptionRecord]{
			Items:      records,
			Page:       payload.HistoryPagination.Page,
			TotalPages: payload.HistoryPagination.TotalPages,
			Total:      payload.HistoryPagination.Total,
		},
		Invoices: domain.PagedList[domain.Invoice]{
			Items:      invoices,
			Page:       payload.InvoicesPagination.Page,
			TotalPages: payload.InvoicesPagination.TotalPages,
			Total:      payload.InvoicesPagination.Total,
		},
	}, nil
}
