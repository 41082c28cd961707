package app

import (
	"context"
	"log/slog"
	"strings"

	"drivego/internal/api"
	"drivego/internal/domain"
	"drivego/internal/persistence"
	"drivego/internal/session"
)

// DeleteConfirmationPhrase must be typed exactly to arm account deletion.
const DeleteConfirmationPhrase = "DELETE"

// AccountAPI is the slice of the API client behind the General tab.
type AccountAPI interface {
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (domain.Profile, error)
	UploadAvatar(ctx context.Context, filename string, image []byte) (string, error)
	DeleteAccount(ctx context.Context, reason, details string) error
	Logout(ctx context.Context) error
}

// Account drives profile editing, avatar upload, preference mirrors, account
// deletion, and logout. Every successful mutation is followed by a session
// refetch so optimistic state cannot drift from server truth.
type Account struct {
	api     AccountAPI
	session *session.Manager
	store   MirrorStore
	logger  *slog.Logger
}

func NewAccount(accountAPI AccountAPI, sessionManager *session.Manager, store MirrorStore, logger *slog.Logger) *Account {
	if logger == nil {
		logger = slog.Default().With("component", "account")
	}

	return &Account{
		api:     accountAPI,
		session: sessionManager,
		store:   store,
		logger:  logger,
	}
}

// UpdateDisplayName persists a new display name. An unchanged or empty name
// issues no call.
func (a *Account) UpdateDisplayName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationErr("Display name cannot be empty")
	}
	if profile, known := a.session.Current(); known && profile.DisplayName == name {
		return nil
	}

	if _, err := a.api.UpdateProfile(ctx, api.ProfileUpdate{DisplayName: &name}); err != nil {
		return err
	}
	a.session.UpdateUser(session.ProfilePatch{DisplayName: &name})

	return a.session.Refetch(ctx)
}

// UploadAvatar pushes the image and commits the returned URL.
func (a *Account) UploadAvatar(ctx context.Context, filename string, image []byte) error {
	if len(image) == 0 {
		return validationErr("Select an image first")
	}

	avatarURL, err := a.api.UploadAvatar(ctx, filename, image)
	if err != nil {
		return err
	}
	a.session.UpdateUser(session.ProfilePatch{AvatarURL: &avatarURL})

	return a.session.Refetch(ctx)
}

// UpdateTheme persists the appearance preference.
func (a *Account) UpdateTheme(ctx context.Context, theme string) error {
	if _, err := a.api.UpdateProfile(ctx, api.ProfileUpdate{Theme: &theme}); err != nil {
		return err
	}
	a.session.UpdateUser(session.ProfilePatch{Theme: &theme})

	return a.session.Refetch(ctx)
}

// UpdateSessionDuration persists the session-duration preference and mirrors
// it locally for pre-hydration reads.
func (a *Account) UpdateSessionDuration(ctx context.Context, duration string) error {
	if _, err := a.api.UpdateProfile(ctx, api.ProfileUpdate{SessionDuration: &duration}); err != nil {
		return err
	}
	if err := a.store.Set(ctx, persistence.KeySessionConfig, duration); err != nil {
		a.logger.Warn("mirror session duration", "error", err)
	}
	a.session.UpdateUser(session.ProfilePatch{SessionDuration: &duration})

	return a.session.Refetch(ctx)
}

// MirroredSessionDuration reads the locally mirrored session-duration
// preference, available before the first profile fetch completes.
func (a *Account) MirroredSessionDuration(ctx context.Context) (string, bool) {
	value, found, err := a.store.Get(ctx, persistence.KeySessionConfig)
	if err != nil || !found || value == "" {
		return "", false
	}

	return value, true
}

// ValidateDeleteAccount arms the destructive action only when the typed
// confirmation equals the literal phrase and a reason is selected.
func ValidateDeleteAccount(confirmation, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return validationErr("Select a reason for leaving")
	}
	if confirmation != DeleteConfirmationPhrase {
		return validationErr("Type DELETE to confirm")
	}

	return nil
}

// DeleteAccount irreversibly removes the account after validation.
func (a *Account) DeleteAccount(ctx context.Context, confirmation, reason, details string) error {
	if err := ValidateDeleteAccount(confirmation, reason); err != nil {
		return err
	}

	if err := a.api.DeleteAccount(ctx, reason, details); err != nil {
		return err
	}
	a.logger.Info("account deleted")

	return nil
}

// Logout terminates the server session; the caller returns to the login view.
func (a *Account) Logout(ctx context.Context) error {
	return a.api.Logout(ctx)
}
