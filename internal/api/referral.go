package api

import (
	"context"
	"fmt"
	"net/http"

	"drivego/internal/domain"
)

// ReferralInfo is the referral program view: share code/link, aggregate stats,
// and one page of individual referral records.
type ReferralInfo struct {
	Code      string
	Link      string
	Stats     domain.ReferralStats
	Referrals domain.PagedList[domain.Referral]
}

func (c *Client) GetReferralInfo(ctx context.Context, page, pageSize int) (ReferralInfo, error) {
	var payload struct {
		Code            string               `json:"code"`
		Link            string               `json:"link"`
		Stats           referralStatsPayload `json:"stats"`
		RecentReferrals []referralPayload    `json:"recentReferrals"`
		Pagination      paginationPayload    `json:"pagination"`
	}
	path := fmt.Sprintf("/v1/referrals?page=%d&pageSize=%d", page, pageSize)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return ReferralInfo{}, err
	}

	referrals := make([]domain.Referral, 0, len(payload.RecentReferrals))
	for _, r := range payload.RecentReferrals {
		referrals = append(referrals, domain.Referral{
			ID:           r.ID,
			ReferredName: r.ReferredName,
			Status:       domain.ReferralStatus(r.Status),
			CreatedAt:    r.CreatedAt,
			CompletedAt:  r.CompletedAt,
		})
	}

	return ReferralInfo{
		Code: payload.Code,
		Link: payload.Link,
		Stats: domain.ReferralStats{
			Completed: payload.Stats.Completed,
			Pending:   payload.Stats.Pending,
			EarnedMB:  payload.Stats.EarnedMB,
			CapMB:     payload.Stats.CapMB,
			PerRefMB:  payload.Stats.PerRefMB,
		},
		Referrals: domain.PagedList[domain.Referral]{
			Items:      referrals,
			Page:       payload.Pagination.Page,
			TotalPages: payload.Pagination.TotalPages,
			Total:      payload.Pagination.Total,
		},
	}, nil
}
