package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"drivego/internal/domain"
	"drivego/internal/persistence"
)

const maskedIPPlaceholder = "···.···.···.···"

// SecurityEventsAPI is the slice of the API client behind the activity monitor.
type SecurityEventsAPI interface {
	GetSecurityEvents(ctx context.Context, limit, offset int) (domain.PagedList[domain.SecurityEvent], error)
	ExportSecurityEventsCSV(ctx context.Context, limit int) ([]byte, error)
	WipeSecurityEvents(ctx context.Context) error
	UpdateSecurityPreferences(ctx context.Context, prefs domain.SecurityPrefs) error
}

// MirrorStore persists the privacy-toggle mirrors used for pre-hydration
// initialization.
type MirrorStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ActivityMonitor owns the security event log view and the collection
// preference toggles. The toggles act on future collection only; disabling the
// master switch clears the local view immediately, independent of the server
// round-trip.
type ActivityMonitor struct {
	api    SecurityEventsAPI
	store  MirrorStore
	logger *slog.Logger

	mu     sync.RWMutex
	events domain.PagedList[domain.SecurityEvent]
	prefs  domain.SecurityPrefs
}

func NewActivityMonitor(eventsAPI SecurityEventsAPI, store MirrorStore, logger *slog.Logger) *ActivityMonitor {
	if logger == nil {
		logger = slog.Default().With("component", "activity_monitor")
	}

	return &ActivityMonitor{
		api:    eventsAPI,
		store:  store,
		logger: logger,
		prefs: domain.SecurityPrefs{
			ActivityMonitorEnabled: true,
			DetailedEventsEnabled:  true,
			UsageDiagnostics:       true,
			CrashReports:           true,
		},
	}
}

// InitFromMirrors seeds the diagnostics toggles from the local store before
// any server state is available.
func (m *ActivityMonitor) InitFromMirrors(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if raw, found, err := m.store.Get(ctx, persistence.KeyUsageDiagnostics); err == nil && found {
		if value, err := strconv.ParseBool(raw); err == nil {
			m.prefs.UsageDiagnostics = value
		}
	}
	if raw, found, err := m.store.Get(ctx, persistence.KeyCrashReports); err == nil && found {
		if value, err := strconv.ParseBool(raw); err == nil {
			m.prefs.CrashReports = value
		}
	}
}

// Load fetches one page of the event log.
func (m *ActivityMonitor) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * SecurityEventsPageSize

	list, err := m.api.GetSecurityEvents(ctx, SecurityEventsPageSize, offset)
	if err != nil {
		return err
	}
	if list.Page == 0 {
		list.Page = page
	}

	m.mu.Lock()
	m.events = list
	m.mu.Unlock()

	return nil
}

func (m *ActivityMonitor) Events() domain.PagedList[domain.SecurityEvent] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.events
}

func (m *ActivityMonitor) Prefs() domain.SecurityPrefs {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.prefs
}

// Wipe clears the server-side log and re-fetches page 1.
func (m *ActivityMonitor) Wipe(ctx context.Context) error {
	if err := m.api.WipeSecurityEvents(ctx); err != nil {
		return err
	}
	m.logger.Info("security events wiped")

	return m.Load(ctx, 1)
}

// ExportCSV fetches the log as a single large CSV page and suggests a dated
// filename for the save dialog.
func (m *ActivityMonitor) ExportCSV(ctx context.Context) (data []byte, filename string, err error) {
	raw, err := m.api.ExportSecurityEventsCSV(ctx, SecurityEventsExportLimit)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("security-events-%s.csv", time.Now().Format("2006-01-02"))

	return raw, name, nil
}

// SetActivityMonitorEnabled flips the master collection switch. Turning it off
// drops the local event list and counters before the server call settles.
func (m *ActivityMonitor) SetActivityMonitorEnabled(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	m.prefs.ActivityMonitorEnabled = enabled
	if !enabled {
		m.events = domain.PagedList[domain.SecurityEvent]{}
	}
	prefs := m.prefs
	m.mu.Unlock()

	return m.api.UpdateSecurityPreferences(ctx, prefs)
}

// SetDetailedEventsEnabled flips IP capture for future events.
func (m *ActivityMonitor) SetDetailedEventsEnabled(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	m.prefs.DetailedEventsEnabled = enabled
	prefs := m.prefs
	m.mu.Unlock()

	return m.api.UpdateSecurityPreferences(ctx, prefs)
}

// SetDiagnostics flips the usage-diagnostics and crash-report toggles, keeping
// their local mirrors in sync for the next startup.
func (m *ActivityMonitor) SetDiagnostics(ctx context.Context, usageDiagnostics, crashReports bool) error {
	m.mu.Lock()
	m.prefs.UsageDiagnostics = usageDiagnostics
	m.prefs.CrashReports = crashReports
	prefs := m.prefs
	m.mu.Unlock()

	if err := m.store.Set(ctx, persistence.KeyUsageDiagnostics, strconv.FormatBool(usageDiagnostics)); err != nil {
		m.logger.Warn("mirror usage diagnostics", "error", err)
	}
	if err := m.store.Set(ctx, persistence.KeyCrashReports, strconv.FormatBool(crashReports)); err != nil {
		m.logger.Warn("mirror crash reports", "error", err)
	}

	return m.api.UpdateSecurityPreferences(ctx, prefs)
}

// DisplayIP renders an event's address respecting the detailed-events toggle.
func (m *ActivityMonitor) DisplayIP(event domain.SecurityEvent) string {
	if !m.Prefs().DetailedEventsEnabled {
		return maskedIPPlaceholder
	}
	if event.IPAddress == "" {
		return maskedIPPlaceholder
	}

	return event.IPAddress
}
