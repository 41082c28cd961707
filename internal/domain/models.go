package domain

import (
	"strings"
	"time"
)

// AuthMethod describes how the account authenticates against the drive service.
type AuthMethod string

// PlanTier is the account's subscription tier.
type PlanTier string

const (
	AuthMethodPassword AuthMethod = "password"
	AuthMethodWallet   AuthMethod = "wallet"

	PlanFree      PlanTier = "free"
	PlanPro       PlanTier = "pro"
	PlanUnlimited PlanTier = "unlimited"

	// WalletEmailDomain marks accounts whose credentials are managed by an
	// external wallet signer. Such accounts never see password/email/TOTP controls.
	WalletEmailDomain = "@wallet.drivego.app"
)

// Profile is the authenticated user's profile as served by the drive API.
type Profile struct {
	ID              string
	Email           string
	DisplayName     string
	AvatarURL       string
	AuthMethod      AuthMethod
	Plan            PlanTier
	SessionDuration string
	Theme           string
	TOTPEnabled     bool
}

// WalletManaged reports whether credential management is delegated to an
// external wallet signer, either by explicit auth method or by reserved domain.
func (p Profile) WalletManaged() bool {
	if p.AuthMethod == AuthMethodWallet {
		return true
	}

	return strings.HasSuffix(strings.ToLower(p.Email), WalletEmailDomain)
}

// CanRenameDevices reports whether the plan tier unlocks device renaming.
func (t PlanTier) CanRenameDevices() bool {
	return t == PlanPro || t == PlanUnlimited
}

// Session is a server-side login session.
type Session struct {
	ID        string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	Revoked   bool
	IsCurrent bool
}

// Current reports whether this is the caller's own session. The session id
// returned by the list endpoint is canonical; the per-item flag is a
// compatibility signal from older API revisions.
func (s Session) Current(currentID string) bool {
	if currentID != "" && s.ID == currentID {
		return true
	}

	return s.IsCurrent
}

// Device is a registered client device.
type Device struct {
	ID         string
	Name       string
	OS         string
	Browser    string
	LastActive time.Time
	Location   string
	Revoked    bool
	IsCurrent  bool
}

// Current mirrors Session.Current for devices.
func (d Device) Current(currentID string) bool {
	if currentID != "" && d.ID == currentID {
		return true
	}

	return d.IsCurrent
}

// SecurityEventStatus is the outcome recorded for an audit log entry.
type SecurityEventStatus string

const (
	SecurityEventSuccess SecurityEventStatus = "success"
	SecurityEventFailure SecurityEventStatus = "failure"
)

// SecurityEvent is a read-only audit log entry.
type SecurityEvent struct {
	ID        string
	Type      string
	UserAgent string
	IPAddress string
	Location  string
	Status    SecurityEventStatus
	CreatedAt time.Time
}

// TOTPEnrollment is the transient secret material issued by the server during
// two-factor setup. It exists only inside the active wizard and is wiped when
// the wizard closes.
type TOTPEnrollment struct {
	Secret string
	QRCode string
	URI    string
}

// SubscriptionStatus is the billing status enum served by the payment provider.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription is the account's current paid subscription, if any.
type Subscription struct {
	ID                 string
	PlanName           string
	Status             SubscriptionStatus
	CancelAtPeriodEnd  bool
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// Usage is storage consumption against quota.
type Usage struct {
	UsedBytes  int64
	QuotaBytes int64
}

// PercentUsed returns consumption as a 0-100 percentage, clamped.
func (u Usage) PercentUsed() float64 {
	if u.QuotaBytes <= 0 {
		return 0
	}
	pct := float64(u.UsedBytes) / float64(u.QuotaBytes) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}

	return pct
}

// SubscriptionRecord is one row of the paginated subscription history.
type SubscriptionRecord struct {
	ID        string
	PlanName  string
	Status    SubscriptionStatus
	StartedAt time.Time
	EndedAt   time.Time
}

// Invoice is one row of the paginated invoice history.
type Invoice struct {
	ID          string
	AmountCents int64
	Currency    string
	Status      string
	IssuedAt    time.Time
	PDFURL      string
}

// ReferralStatus is the state of a single referral record.
type ReferralStatus string

const (
	ReferralCompleted ReferralStatus = "completed"
	ReferralPending   ReferralStatus = "pending"
	ReferralCancelled ReferralStatus = "cancelled"
)

// ReferralStats aggregates referral program progress.
type ReferralStats struct {
	Completed  int
	Pending    int
	EarnedMB   int64
	CapMB      int64
	PerRefMB   int64
}

// ProgressTowardCap returns earned storage as a 0-1 fraction of the cap.
func (s ReferralStats) ProgressTowardCap() float64 {
	if s.CapMB <= 0 {
		return 0
	}
	frac := float64(s.EarnedMB) / float64(s.CapMB)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}

	return frac
}

// Referral is one referred-user record.
type Referral struct {
	ID           string
	ReferredName string
	Status       ReferralStatus
	CreatedAt    time.Time
	CompletedAt  time.Time
}

// NotificationPrefs are the five independently persisted notification toggles.
type NotificationPrefs struct {
	InApp     bool
	Email     bool
	Login     bool
	FileShare bool
	Billing   bool
}

// SecurityPrefs control audit log collection going forward.
type SecurityPrefs struct {
	ActivityMonitorEnabled bool
	DetailedEventsEnabled  bool
	UsageDiagnostics       bool
	CrashReports           bool
}
