package app

import (
	"context"
	"log/slog"
	"sync"

	"drivego/internal/domain"
)

// NotificationToggle names one of the five preference switches.
type NotificationToggle string

const (
	ToggleInApp     NotificationToggle = "in_app"
	ToggleEmail     NotificationToggle = "email"
	ToggleLogin     NotificationToggle = "login"
	ToggleFileShare NotificationToggle = "file_share"
	ToggleBilling   NotificationToggle = "billing"
)

// NotificationToggles lists the switches in display order.
func NotificationToggles() []NotificationToggle {
	return []NotificationToggle{ToggleInApp, ToggleEmail, ToggleLogin, ToggleFileShare, ToggleBilling}
}

// NotificationPrefsAPI is the slice of the API client behind the toggles.
type NotificationPrefsAPI interface {
	GetNotificationPreferences(ctx context.Context) (domain.NotificationPrefs, error)
	UpdateNotificationPreferences(ctx context.Context, prefs domain.NotificationPrefs) error
}

// NotificationSettings persists each toggle individually and immediately.
// Every flip runs Idle → Pending → Committed, or rolls back to the prior value
// when the server rejects it.
type NotificationSettings struct {
	api    NotificationPrefsAPI
	logger *slog.Logger

	mu      sync.RWMutex
	prefs   domain.NotificationPrefs
	pending map[NotificationToggle]struct{}
}

func NewNotificationSettings(prefsAPI NotificationPrefsAPI, logger *slog.Logger) *NotificationSettings {
	if logger == nil {
		logger = slog.Default().With("component", "notification_prefs")
	}

	return &NotificationSettings{
		api:     prefsAPI,
		logger:  logger,
		pending: make(map[NotificationToggle]struct{}),
	}
}

// Load fetches the current server truth.
func (n *NotificationSettings) Load(ctx context.Context) error {
	prefs, err := n.api.GetNotificationPreferences(ctx)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.prefs = prefs
	n.mu.Unlock()

	return nil
}

func (n *NotificationSettings) Prefs() domain.NotificationPrefs {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.prefs
}

// Value reads one toggle, including any optimistic in-flight value.
func (n *NotificationSettings) Value(toggle NotificationToggle) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return readToggle(n.prefs, toggle)
}

// Pending reports whether a flip is awaiting the server.
func (n *NotificationSettings) Pending(toggle NotificationToggle) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.pending[toggle]

	return ok
}

// Set flips one toggle optimistically and persists it. On server failure the
// toggle rolls back to its prior value and the error is returned for the
// toast.
func (n *NotificationSettings) Set(ctx context.Context, toggle NotificationToggle, value bool) error {
	n.mu.Lock()
	prior := readToggle(n.prefs, toggle)
	if prior == value {
		n.mu.Unlock()

		return nil
	}
	writeToggle(&n.prefs, toggle, value)
	n.pending[toggle] = struct{}{}
	prefs := n.prefs
	n.mu.Unlock()

	err := n.api.UpdateNotificationPreferences(ctx, prefs)

	n.mu.Lock()
	delete(n.pending, toggle)
	if err != nil {
		writeToggle(&n.prefs, toggle, prior)
	}
	n.mu.Unlock()

	if err != nil {
		n.logger.Warn("notification toggle rolled back", "toggle", string(toggle), "error", err)

		return err
	}

	return nil
}

func readToggle(prefs domain.NotificationPrefs, toggle NotificationToggle) bool {
	switch toggle {
	case ToggleInApp:
		return prefs.InApp
	case ToggleEmail:
		return prefs.Email
	case ToggleLogin:
		return prefs.Login
	case ToggleFileShare:
		return prefs.FileShare
	case ToggleBilling:
		return prefs.Billing
	default:
		return false
	}
}

func writeToggle(prefs *domain.NotificationPrefs, toggle NotificationToggle, value bool) {
	switch toggle {
	case ToggleInApp:
		prefs.InApp = value
	case ToggleEmail:
		prefs.Email = value
	case ToggleLogin:
		prefs.Login = value
	case ToggleFileShare:
		prefs.FileShare = value
	case ToggleBilling:
		prefs.Billing = value
	}
}
