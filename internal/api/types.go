package api

import (
	"time"

	"drivego/internal/domain"
)

type profilePayload struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	DisplayName     string `json:"displayName"`
	AvatarURL       string `json:"avatarUrl"`
	AuthMethod      string `json:"authMethod"`
	Plan            string `json:"plan"`
	SessionDuration string `json:"sessionDuration"`
	Theme           string `json:"theme"`
	TOTPEnabled     bool   `json:"totpEnabled"`
}

func (p profilePayload) toDomain() domain.Profile {
	return domain.Profile{
		ID:              p.ID,
		Email:           p.Email,
		DisplayName:     p.DisplayName,
		AvatarURL:       p.AvatarURL,
		AuthMethod:      domain.AuthMethod(p.AuthMethod),
		Plan:            domain.PlanTier(p.Plan),
		SessionDuration: p.SessionDuration,
		Theme:           p.Theme,
		TOTPEnabled:     p.TOTPEnabled,
	}
}

type paginationPayload struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

type sessionPayload struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
	Revoked   bool      `json:"revoked"`
	IsCurrent bool      `json:"isCurrent"`
}

type devicePayload struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"device_name"`
	OS         string    `json:"os"`
	Browser    string    `json:"browser"`
	LastActive time.Time `json:"lastActive"`
	Location   string    `json:"location"`
	Revoked    bool      `json:"revoked"`
	IsCurrent  bool      `json:"isCurrent"`
}

type securityEventPayload struct {
	ID        string    `json:"id"`
	EventType string    `json:"eventType"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	Location  string    `json:"location"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type subscriptionPayload struct {
	ID                 string    `json:"id"`
	PlanName           string    `json:"planName"`
	Status             string    `json:"status"`
	CancelAtPeriodEnd  bool      `json:"cancelAtPeriodEnd"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd"`
}

func (s subscriptionPayload) toDomain() domain.Subscription {
	return domain.Subscription{
		ID:                 s.ID,
		PlanName:           s.PlanName,
		Status:             domain.SubscriptionStatus(s.Status),
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
	}
}

type usagePayload struct {
	UsedBytes  int64 `json:"usedBytes"`
	QuotaBytes int64 `json:"quotaBytes"`
}

type subscriptionRecordPayload struct {
	ID        string    `json:"id"`
	PlanName  string    `json:"planName"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

type invoicePayload struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	IssuedAt    time.Time `json:"issuedAt"`
	PDFURL      string    `json:"pdfUrl"`
}

type referralPayload struct {
	ID           string    `json:"id"`
	ReferredName string    `json:"referredName"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	CompletedAt  time.Time `json:"completedAt"`
}

type referralStatsPayload struct {
	Completed int   `json:"completed"`
	Pending   int   `json:"pending"`
	EarnedMB  int64 `json:"earnedMb"`
	CapMB     int64 `json:"capMb"`
	PerRefMB  int64 `json:"perReferralMb"`
}

type notificationPrefsPayload struct {
	InApp     bool `json:"inApp"`
	Email     bool `json:"email"`
	Login     bool `json:"login"`
	FileShare bool `json:"fileShare"`
	Billing   bool `json:"billing"`
}

type securityPrefsPayload struct {
	ActivityMonitorEnabled bool `json:"activityMonitorEnabled"`
	DetailedEventsEnabled  bool `json:"detailedEventsEnabled"`
	UsageDiagnostics       bool `json:"usageDiagnostics"`
	CrashReports           bool `json:"crashReports"`
}
