package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"drivego/internal/bus"
	"drivego/internal/domain"
)

// ProfileFetcher is the slice of the API client the session context needs.
type ProfileFetcher interface {
	GetProfile(ctx context.Context) (domain.Profile, error)
}

// ProfilePatch is an optimistic partial mutation of the cached profile. Nil
// fields are untouched.
type ProfilePatch struct {
	DisplayName     *string
	AvatarURL       *string
	Theme           *string
	SessionDuration *string
	TOTPEnabled     *bool
}

// Manager caches the authenticated user's profile and mediates between
// optimistic local mutation and server truth. Profile updates fan out over the
// message bus so open views can re-render.
type Manager struct {
	fetcher ProfileFetcher
	bus     bus.MessageBus
	logger  *slog.Logger

	mu                 sync.RWMutex
	profile            domain.Profile
	profileKnown       bool
	deviceLimitReached bool
}

func NewManager(fetcher ProfileFetcher, messageBus bus.MessageBus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default().With("component", "session")
	}

	return &Manager{
		fetcher: fetcher,
		bus:     messageBus,
		logger:  logger,
	}
}

// Current returns the cached profile and whether one is known yet.
func (m *Manager) Current() (domain.Profile, bool) {
	m.mu.RLock()
	profile := m.profile
	known := m.profileKnown
	m.mu.RUnlock()

	return profile, known
}

// Refetch replaces the cached profile with server truth. Called after every
// successful profile mutation so optimistic state cannot drift.
func (m *Manager) Refetch(ctx context.Context) error {
	profile, err := m.fetcher.GetProfile(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.profile = profile
	m.profileKnown = true
	m.mu.Unlock()

	m.publish(profile)
	m.logger.Debug("profile refetched", "user_id", profile.ID)

	return nil
}

// UpdateUser applies an optimistic partial mutation to the cached profile
// without a server round-trip.
func (m *Manager) UpdateUser(patch ProfilePatch) domain.Profile {
	m.mu.Lock()
	if patch.DisplayName != nil {
		m.profile.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.AvatarURL != nil {
		m.profile.AvatarURL = *patch.AvatarURL
	}
	if patch.Theme != nil {
		m.profile.Theme = *patch.Theme
	}
	if patch.SessionDuration != nil {
		m.profile.SessionDuration = *patch.SessionDuration
	}
	if patch.TOTPEnabled != nil {
		m.profile.TOTPEnabled = *patch.TOTPEnabled
	}
	m.profileKnown = true
	profile := m.profile
	m.mu.Unlock()

	m.publish(profile)

	return profile
}

// SetDeviceLimitReached records the plan-tier device gate. While set, the
// settings surface restricts navigation to the Security tab; entering the
// gated state steers the UI there.
func (m *Manager) SetDeviceLimitReached(reached bool) {
	m.mu.Lock()
	wasReached := m.deviceLimitReached
	m.deviceLimitReached = reached
	m.mu.Unlock()

	if reached && !wasReached && m.bus != nil {
		m.bus.Publish(bus.TopicSettingsRoute, "#settings/Security")
	}
}

func (m *Manager) DeviceLimitReached() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.deviceLimitReached
}

func (m *Manager) publish(profile domain.Profile) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(bus.TopicProfileUpdated, profile)
}
