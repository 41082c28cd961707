package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"drivego/internal/api"
	"drivego/internal/domain"
)

// PlanGateError marks an action locked behind a paid tier; the UI shows an
// upsell affordance instead of a failure toast.
type PlanGateError struct {
	Plan domain.PlanTier
}

func (e *PlanGateError) Error() string {
	return "device renaming requires a Pro or Unlimited plan"
}

// SecurityListsAPI is the slice of the API client behind the session and
// device tables.
type SecurityListsAPI interface {
	GetSessions(ctx context.Context, page, pageSize int, showRevoked bool) (api.SessionList, error)
	RevokeSession(ctx context.Context, sessionID string) error
	RevokeAllSessions(ctx context.Context) error
	GetDevices(ctx context.Context, page, pageSize int, showRevoked bool) (api.DeviceList, error)
	RevokeDevice(ctx context.Context, deviceID string) error
	RenameDevice(ctx context.Context, deviceID, name string) error
}

// SecurityLists manages the two paginated tables of the Security tab. Both
// share one show-revoked filter; flipping it reloads both lists together.
type SecurityLists struct {
	api    SecurityListsAPI
	logger *slog.Logger

	mu               sync.RWMutex
	sessions         domain.PagedList[domain.Session]
	devices          domain.PagedList[domain.Device]
	currentSessionID string
	currentDeviceID  string
	plan             domain.PlanTier
	showRevoked      bool
}

func NewSecurityLists(listsAPI SecurityListsAPI, logger *slog.Logger) *SecurityLists {
	if logger == nil {
		logger = slog.Default().With("component", "security_lists")
	}

	return &SecurityLists{
		api:    listsAPI,
		logger: logger,
		plan:   domain.PlanFree,
	}
}

// LoadSessions fetches one page of sessions under the current filter.
func (l *SecurityLists) LoadSessions(ctx context.Context, page int) error {
	l.mu.RLock()
	showRevoked := l.showRevoked
	l.mu.RUnlock()

	list, err := l.api.GetSessions(ctx, page, SessionsPageSize, showRevoked)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.sessions = list.Sessions
	if list.CurrentSessionID != "" {
		l.currentSessionID = list.CurrentSessionID
	}
	l.mu.Unlock()

	return nil
}

// LoadDevices fetches one page of devices under the current filter.
func (l *SecurityLists) LoadDevices(ctx context.Context, page int) error {
	l.mu.RLock()
	showRevoked := l.showRevoked
	l.mu.RUnlock()

	list, err := l.api.GetDevices(ctx, page, DevicesPageSize, showRevoked)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.devices = list.Devices
	if list.CurrentDeviceID != "" {
		l.currentDeviceID = list.CurrentDeviceID
	}
	if list.Plan != "" {
		l.plan = list.Plan
	}
	l.mu.Unlock()

	return nil
}

// SetShowRevoked changes the shared filter and reloads both lists from page 1.
func (l *SecurityLists) SetShowRevoked(ctx context.Context, show bool) error {
	l.mu.Lock()
	l.showRevoked = show
	l.mu.Unlock()

	if err := l.LoadSessions(ctx, 1); err != nil {
		return err
	}

	return l.LoadDevices(ctx, 1)
}

func (l *SecurityLists) ShowRevoked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.showRevoked
}

func (l *SecurityLists) Sessions() domain.PagedList[domain.Session] {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.sessions
}

func (l *SecurityLists) Devices() domain.PagedList[domain.Device] {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.devices
}

func (l *SecurityLists) Plan() domain.PlanTier {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.plan
}

// CanRevokeSession reports whether the revoke affordance is offered. The
// caller's own session is never revocable here.
func (l *SecurityLists) CanRevokeSession(s domain.Session) bool {
	l.mu.RLock()
	currentID := l.currentSessionID
	l.mu.RUnlock()

	return !s.Current(currentID) && !s.Revoked
}

// CanRevokeDevice mirrors CanRevokeSession for devices.
func (l *SecurityLists) CanRevokeDevice(d domain.Device) bool {
	l.mu.RLock()
	currentID := l.currentDeviceID
	l.mu.RUnlock()

	return !d.Current(currentID) && !d.Revoked
}

// RevokeSession revokes one session and refreshes the sessions page.
func (l *SecurityLists) RevokeSession(ctx context.Context, s domain.Session) error {
	if !l.CanRevokeSession(s) {
		return validationErr("The current session cannot be revoked")
	}

	if err := l.api.RevokeSession(ctx, s.ID); err != nil {
		return err
	}
	l.logger.Info("session revoked", "session_id", s.ID)

	return l.LoadSessions(ctx, l.Sessions().Page)
}

// RevokeAllSessions revokes everything but the current session and reloads
// from page 1.
func (l *SecurityLists) RevokeAllSessions(ctx context.Context) error {
	if err := l.api.RevokeAllSessions(ctx); err != nil {
		return err
	}
	l.logger.Info("all other sessions revoked")

	return l.LoadSessions(ctx, 1)
}

// RevokeDevice revokes one device and refreshes the devices page.
func (l *SecurityLists) RevokeDevice(ctx context.Context, d domain.Device) error {
	if !l.CanRevokeDevice(d) {
		return validationErr("The current device cannot be revoked")
	}

	if err := l.api.RevokeDevice(ctx, d.ID); err != nil {
		return err
	}
	l.logger.Info("device revoked", "device_id", d.ID)

	return l.LoadDevices(ctx, l.Devices().Page)
}

// CanRenameDevices reports the plan gate for inline renaming.
func (l *SecurityLists) CanRenameDevices() bool {
	return l.Plan().CanRenameDevices()
}

// RenameDevice commits an inline rename. Free-tier attempts surface a
// PlanGateError without touching the network; a no-op commit (unchanged name)
// also issues no call and reports renamed=false.
func (l *SecurityLists) RenameDevice(ctx context.Context, d domain.Device, newName string) (renamed bool, err error) {
	if !l.CanRenameDevices() {
		return false, &PlanGateError{Plan: l.Plan()}
	}

	newName = strings.TrimSpace(newName)
	if newName == "" || newName == d.Name {
		return false, nil
	}

	if err := l.api.RenameDevice(ctx, d.ID, newName); err != nil {
		return false, err
	}
	l.logger.Info("device renamed", "device_id", d.ID)

	if err := l.LoadDevices(ctx, l.Devices().Page); err != nil {
		return true, err
	}

	return true, nil
}
