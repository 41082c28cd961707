package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/api"
	"drivego/internal/app"
	"drivego/internal/bus"
	"drivego/internal/config"
	"drivego/internal/domain"
	"drivego/internal/session"
)

// stubBackend implements every controller API; individual tests override the
// func fields they exercise.
type stubBackend struct {
	profile domain.Profile

	updateProfileFn func(ctx context.Context, update api.ProfileUpdate) (domain.Profile, error)
	uploadAvatarFn  func(ctx context.Context, filename string, image []byte) (string, error)
	deleteAccountFn func(ctx context.Context, reason, details string) error
	logoutFn        func(ctx context.Context) error

	verifyPasswordFn    func(ctx context.Context, password string) error
	initiateEmailFn     func(ctx context.Context, newEmail string) (string, error)
	verifyEmailChangeFn func(ctx context.Context, token, otp string) error

	setupTOTPFn       func(ctx context.Context) (domain.TOTPEnrollment, error)
	verifyTOTPSetupFn func(ctx context.Context, token string) ([]string, error)
	disableTOTPFn     func(ctx context.Context, token, recoveryCode string) error

	getSessionsFn       func(ctx context.Context, page, pageSize int, showRevoked bool) (api.SessionList, error)
	revokeSessionFn     func(ctx context.Context, sessionID string) error
	revokeAllSessionsFn func(ctx context.Context) error
	getDevicesFn        func(ctx context.Context, page, pageSize int, showRevoked bool) (api.DeviceList, error)
	revokeDeviceFn      func(ctx context.Context, deviceID string) error
	renameDeviceFn      func(ctx context.Context, deviceID, name string) error

	getSecurityEventsFn func(ctx context.Context, limit, offset int) (domain.PagedList[domain.SecurityEvent], error)
	exportEventsFn      func(ctx context.Context, limit int) ([]byte, error)
	wipeEventsFn        func(ctx context.Context) error
	updateSecPrefsFn    func(ctx context.Context, prefs domain.SecurityPrefs) error

	getSubscriptionFn func(ctx context.Context) (api.SubscriptionStatus, error)
	getPlansFn        func(ctx context.Context) ([]api.PricingPlan, error)
	cancelSubFn       func(ctx context.Context) error
	cancelWithFn      func(ctx context.Context, reason, details string) error
	portalSessionFn   func(ctx context.Context, returnURL string) (string, error)
	getHistoryFn      func(ctx context.Context, subPage, subLimit, invPage, invLimit int) (api.SubscriptionHistory, error)

	getNotifPrefsFn    func(ctx context.Context) (domain.NotificationPrefs, error)
	updateNotifPrefsFn func(ctx context.Context, prefs domain.NotificationPrefs) error

	getReferralInfoFn func(ctx context.Context, page, pageSize int) (api.ReferralInfo, error)
}

func (s *stubBackend) GetProfile(context.Context) (domain.Profile, error) {
	return s.profile, nil
}

func (s *stubBackend) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (domain.Profile, error) {
	if s.updateProfileFn != nil {
		return s.updateProfileFn(ctx, update)
	}

	return s.profile, nil
}

func (s *stubBackend) UploadAvatar(ctx context.Context, filename string, image []byte) (string, error) {
	if s.uploadAvatarFn != nil {
		return s.uploadAvatarFn(ctx, filename, image)
	}

	return "https://cdn.drivego.app/avatar.png", nil
}

func (s *stubBackend) DeleteAccount(ctx context.Context, reason, details string) error {
	if s.deleteAccountFn != nil {
		return s.deleteAccountFn(ctx, reason, details)
	}

	return nil
}

func (s *stubBackend) Logout(ctx context.Context) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx)
	}

	return nil
}

func (s *stubBackend) VerifyPassword(ctx context.Context, password string) error {
	if s.verifyPasswordFn != nil {
		return s.verifyPasswordFn(ctx, password)
	}

	return nil
}

func (s *stubBackend) InitiateEmailChange(ctx context.Context, newEmail string) (string, error) {
	if s.initiateEmailFn != nil {
		return s.initiateEmailFn(ctx, newEmail)
	}

	return "token-1", nil
}

func (s *stubBackend) VerifyEmailChange(ctx context.Context, token, otp string) error {
	if s.verifyEmailChangeFn != nil {
		return s.verifyEmailChangeFn(ctx, token, otp)
	}

	return nil
}

func (s *stubBackend) SetupTOTP(ctx context.Context) (domain.TOTPEnrollment, error) {
	if s.setupTOTPFn != nil {
		return s.setupTOTPFn(ctx)
	}

	return domain.TOTPEnrollment{Secret: "JBSWY3DP", QRCode: "qr", URI: "otpauth://totp"}, nil
}

func (s *stubBackend) VerifyTOTPSetup(ctx context.Context, token string) ([]string, error) {
	if s.verifyTOTPSetupFn != nil {
		return s.verifyTOTPSetupFn(ctx, token)
	}

	return []string{"aaaa1111", "bbbb2222"}, nil
}

func (s *stubBackend) DisableTOTP(ctx context.Context, token, recoveryCode string) error {
	if s.disableTOTPFn != nil {
		return s.disableTOTPFn(ctx, token, recoveryCode)
	}

	return nil
}

func (s *stubBackend) GetSessions(ctx context.Context, page, pageSize int, showRevoked bool) (api.SessionList, error) {
	if s.getSessionsFn != nil {
		return s.getSessionsFn(ctx, page, pageSize, showRevoked)
	}

	return api.SessionList{}, nil
}

func (s *stubBackend) RevokeSession(ctx context.Context, sessionID string) error {
	if s.revokeSessionFn != nil {
		return s.revokeSessionFn(ctx, sessionID)
	}

	return nil
}

func (s *stubBackend) RevokeAllSessions(ctx context.Context) error {
	if s.revokeAllSessionsFn != nil {
		return s.revokeAllSessionsFn(ctx)
	}

	return nil
}

func (s *stubBackend) GetDevices(ctx context.Context, page, pageSize int, showRevoked bool) (api.DeviceList, error) {
	if s.getDevicesFn != nil {
		return s.getDevicesFn(ctx, page, pageSize, showRevoked)
	}

	return api.DeviceList{}, nil
}

func (s *stubBackend) RevokeDevice(ctx context.Context, deviceID string) error {
	if s.revokeDeviceFn != nil {
		return s.revokeDeviceFn(ctx, deviceID)
	}

	return nil
}

func (s *stubBackend) RenameDevice(ctx context.Context, deviceID, name string) error {
	if s.renameDeviceFn != nil {
		return s.renameDeviceFn(ctx, deviceID, name)
	}

	return nil
}

func (s *stubBackend) GetSecurityEvents(ctx context.Context, limit, offset int) (domain.PagedList[domain.SecurityEvent], error) {
	if s.getSecurityEventsFn != nil {
		return s.getSecurityEventsFn(ctx, limit, offset)
	}

	return domain.PagedList[domain.SecurityEvent]{}, nil
}

func (s *stubBackend) ExportSecurityEventsCSV(ctx context.Context, limit int) ([]byte, error) {
	if s.exportEventsFn != nil {
		return s.exportEventsFn(ctx, limit)
	}

	return []byte("id,type\n"), nil
}

func (s *stubBackend) WipeSecurityEvents(ctx context.Context) error {
	if s.wipeEventsFn != nil {
		return s.wipeEventsFn(ctx)
	}

	return nil
}

func (s *stubBackend) UpdateSecurityPreferences(ctx context.Context, prefs domain.SecurityPrefs) error {
	if s.updateSecPrefsFn != nil {
		return s.updateSecPrefsFn(ctx, prefs)
	}

	return nil
}

func (s *stubBackend) GetSubscriptionStatus(ctx context.Context) (api.SubscriptionStatus, error) {
	if s.getSubscriptionFn != nil {
		return s.getSubscriptionFn(ctx)
	}

	return api.SubscriptionStatus{}, nil
}

func (s *stubBackend) GetPricingPlans(ctx context.Context) ([]api.PricingPlan, error) {
	if s.getPlansFn != nil {
		return s.getPlansFn(ctx)
	}

	return nil, nil
}

func (s *stubBackend) CancelSubscription(ctx context.Context) error {
	if s.cancelSubFn != nil {
		return s.cancelSubFn(ctx)
	}

	return nil
}

func (s *stubBackend) CancelSubscriptionWithReason(ctx context.Context, reason, details string) error {
	if s.cancelWithFn != nil {
		return s.cancelWithFn(ctx, reason, details)
	}

	return nil
}

func (s *stubBackend) CreatePortalSession(ctx context.Context, returnURL string) (string, error) {
	if s.portalSessionFn != nil {
		return s.portalSessionFn(ctx, returnURL)
	}

	return "https://billing.example.com/portal", nil
}

func (s *stubBackend) GetSubscriptionHistory(ctx context.Context, subPage, subLimit, invPage, invLimit int) (api.SubscriptionHistory, error) {
	if s.getHistoryFn != nil {
		return s.getHistoryFn(ctx, subPage, subLimit, invPage, invLimit)
	}

	return api.SubscriptionHistory{}, nil
}

func (s *stubBackend) GetNotificationPreferences(ctx context.Context) (domain.NotificationPrefs, error) {
	if s.getNotifPrefsFn != nil {
		return s.getNotifPrefsFn(ctx)
	}

	return domain.NotificationPrefs{}, nil
}

func (s *stubBackend) UpdateNotificationPreferences(ctx context.Context, prefs domain.NotificationPrefs) error {
	if s.updateNotifPrefsFn != nil {
		return s.updateNotifPrefsFn(ctx, prefs)
	}

	return nil
}

func (s *stubBackend) GetReferralInfo(ctx context.Context, page, pageSize int) (api.ReferralInfo, error) {
	if s.getReferralInfoFn != nil {
		return s.getReferralInfoFn(ctx, page, pageSize)
	}

	return api.ReferralInfo{}, nil
}

// memKV is an in-memory stand-in for the preference mirror and handshake
// stores.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]

	return value, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value

	return nil
}

func (m *memKV) ClearScope() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string]string{}
}

// recordedToast is one captured toaster publication.
type recordedToast struct {
	level   app.ToastLevel
	title   string
	message string
}

type testHarness struct {
	backend   *stubBackend
	session   *session.Manager
	dep       RuntimeDependencies
	prefs     *memKV
	handshake *memKV

	mu     sync.Mutex
	toasts []recordedToast

	confirmResponse bool
	confirmCalls    int
	loggedOut       int
	savedFiles      []string
	clipboard       string
	openedURLs      []string
}

func (h *testHarness) recordedToasts() []recordedToast {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]recordedToast(nil), h.toasts...)
}

func (h *testHarness) lastToast(t *testing.T) recordedToast {
	t.Helper()
	toasts := h.recordedToasts()
	if len(toasts) == 0 {
		t.Fatalf("expected at least one toast")
	}

	return toasts[len(toasts)-1]
}

// newTestHarness wires real controllers over the stub backend with synchronous
// hooks, so taps complete before the test continues.
func newTestHarness(t *testing.T, backend *stubBackend) *testHarness {
	t.Helper()
	if backend.profile.Email == "" {
		backend.profile = domain.Profile{
			ID:          "user-1",
			Email:       "user@example.com",
			DisplayName: "User One",
			AuthMethod:  domain.AuthMethodPassword,
			Plan:        domain.PlanPro,
			Theme:       "system",
		}
	}

	logger := slog.Default()
	messageBus := bus.New(logger)
	t.Cleanup(messageBus.Close)

	sessionManager := session.NewManager(backend, messageBus, logger)
	if err := sessionManager.Refetch(context.Background()); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	h := &testHarness{backend: backend, session: sessionManager, confirmResponse: true}

	toastSub := messageBus.Subscribe(bus.TopicToast)
	go func() {
		for raw := range toastSub {
			event, ok := raw.(app.ToastEvent)
			if !ok {
				continue
			}
			h.mu.Lock()
			h.toasts = append(h.toasts, recordedToast{level: event.Level, title: event.Title, message: event.Message})
			h.mu.Unlock()
		}
	}()

	prefs := newMemKV()
	handshake := newMemKV()
	h.prefs = prefs
	h.handshake = handshake

	h.dep = RuntimeDependencies{
		Data: DataDependencies{
			Config:         config.Default(),
			Bus:            messageBus,
			CurrentProfile: sessionManager.Current,
			DeviceLimit:    sessionManager.DeviceLimitReached,
		},
		Controllers: ControllerDependencies{
			Account:         app.NewAccount(backend, sessionManager, prefs, logger),
			EmailChange:     app.NewEmailChangeWizard(backend, handshake, logger),
			TOTP:            app.NewTOTPWizard(backend, logger),
			SecurityLists:   app.NewSecurityLists(backend, logger),
			ActivityMonitor: app.NewActivityMonitor(backend, prefs, logger),
			Billing:         app.NewBilling(backend, logger),
			Notifications:   app.NewNotificationSettings(backend, logger),
			Referrals:       app.NewReferrals(backend, logger),
		},
		Actions: ActionDependencies{
			Toaster: app.NewToaster(messageBus, logger),
			RefetchUser: func() error {
				return sessionManager.Refetch(context.Background())
			},
			OnLoggedOut: func() { h.loggedOut++ },
			OnOpenBrowser: func(rawURL string) error {
				h.mu.Lock()
				h.openedURLs = append(h.openedURLs, rawURL)
				h.mu.Unlock()

				return nil
			},
		},
		UIHooks: UIHooks{
			RunOnUI:  func(fn func()) { fn() },
			RunAsync: func(fn func()) { fn() },
			ShowError: func(error, fyne.Window) {},
			ShowInfo:  func(string, string, fyne.Window) {},
			ShowConfirm: func(_, _ string, callback func(bool), _ fyne.Window) {
				h.confirmCalls++
				callback(h.confirmResponse)
			},
			SaveFile: func(filename string, _ []byte, _ fyne.Window) {
				h.savedFiles = append(h.savedFiles, filename)
			},
			SetClipboard: func(text string) { h.clipboard = text },
		},
	}

	return h
}

// waitForToast polls until the toaster has published at least n events. The
// toast subscription drains on its own goroutine even with synchronous hooks.
func (h *testHarness) waitForToast(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(h.recordedToasts()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d toasts, got %d", n, len(h.recordedToasts()))
}

func mustFindButtonByText(t *testing.T, root fyne.CanvasObject, text string) *widget.Button {
	t.Helper()
	for _, object := range fynetest.LaidOutObjects(root) {
		button, ok := object.(*widget.Button)
		if !ok {
			continue
		}
		if strings.TrimSpace(button.Text) == text {
			return button
		}
	}
	t.Fatalf("button %q not found", text)

	return nil
}

func mustFindEntryByPlaceholder(t *testing.T, root fyne.CanvasObject, placeholder string) *widget.Entry {
	t.Helper()
	for _, object := range fynetest.LaidOutObjects(root) {
		entry, ok := object.(*widget.Entry)
		if !ok {
			continue
		}
		if strings.TrimSpace(entry.PlaceHolder) == placeholder {
			return entry
		}
	}
	t.Fatalf("entry with placeholder %q not found", placeholder)

	return nil
}

func mustFindLabelByPrefix(t *testing.T, root fyne.CanvasObject, prefix string) *widget.Label {
	t.Helper()
	for _, object := range fynetest.LaidOutObjects(root) {
		label, ok := object.(*widget.Label)
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(label.Text), prefix) {
			return label
		}
	}
	t.Fatalf("label with prefix %q not found", prefix)

	return nil
}

func mustFindSelectWithOption(t *testing.T, root fyne.CanvasObject, option string) *widget.Select {
	t.Helper()
	for _, object := range fynetest.LaidOutObjects(root) {
		sel, ok := object.(*widget.Select)
		if !ok {
			continue
		}
		for _, candidate := range sel.Options {
			if candidate == option {
				return sel
			}
		}
	}
	t.Fatalf("select with option %q not found", option)

	return nil
}

func mustFindCheckByText(t *testing.T, root fyne.CanvasObject, text string) *widget.Check {
	t.Helper()
	for _, object := range fynetest.LaidOutObjects(root) {
		check, ok := object.(*widget.Check)
		if !ok {
			continue
		}
		if strings.TrimSpace(check.Text) == text {
			return check
		}
	}
	t.Fatalf("check %q not found", text)

	return nil
}
