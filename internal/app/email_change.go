package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"drivego/internal/persistence"
)

// EmailChangeStep is the wizard's position in the three-step flow.
type EmailChangeStep int

const (
	EmailStepCredentials EmailChangeStep = iota
	EmailStepOTP
	EmailStepDone
)

// EmailChangeAPI is the slice of the API client the wizard drives.
type EmailChangeAPI interface {
	VerifyPassword(ctx context.Context, password string) error
	InitiateEmailChange(ctx context.Context, newEmail string) (string, error)
	VerifyEmailChange(ctx context.Context, token, otp string) error
	Logout(ctx context.Context) error
}

// HandshakeStore is the slice of the preference repo holding the change token
// between steps. Scoped keys live in memory only.
type HandshakeStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	ClearScope()
}

// EmailChangeWizard is the sequential email-change flow: credentials and
// password verification, then OTP confirmation. No profile state is committed
// until the final step succeeds; any failure keeps the wizard on its step.
type EmailChangeWizard struct {
	api    EmailChangeAPI
	store  HandshakeStore
	logger *slog.Logger

	mu   sync.Mutex
	step EmailChangeStep
}

func NewEmailChangeWizard(emailAPI EmailChangeAPI, store HandshakeStore, logger *slog.Logger) *EmailChangeWizard {
	if logger == nil {
		logger = slog.Default().With("component", "email_change")
	}

	return &EmailChangeWizard{
		api:    emailAPI,
		store:  store,
		logger: logger,
	}
}

func (w *EmailChangeWizard) Step() EmailChangeStep {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.step
}

// ValidateCredentials runs the client-side checks of step one. Nothing crosses
// the network until these pass.
func ValidateCredentials(currentEmail, newEmail, confirmEmail, password string) error {
	newEmail = strings.TrimSpace(newEmail)
	confirmEmail = strings.TrimSpace(confirmEmail)

	if newEmail == "" || confirmEmail == "" {
		return validationErr("Enter the new email address in both fields")
	}
	if !strings.EqualFold(newEmail, confirmEmail) {
		return validationErr("Email addresses do not match")
	}
	if strings.EqualFold(newEmail, strings.TrimSpace(currentEmail)) {
		return validationErr("New email must be different from the current one")
	}
	if password == "" {
		return validationErr("Enter your current password")
	}

	return nil
}

// SubmitCredentials verifies the password through the authentication service,
// initiates the email change, and stashes the change token for the OTP step.
func (w *EmailChangeWizard) SubmitCredentials(ctx context.Context, currentEmail, newEmail, confirmEmail, password string) error {
	if err := ValidateCredentials(currentEmail, newEmail, confirmEmail, password); err != nil {
		return err
	}

	if err := w.api.VerifyPassword(ctx, password); err != nil {
		return err
	}

	target := strings.TrimSpace(newEmail)
	token, err := w.api.InitiateEmailChange(ctx, target)
	if err != nil {
		return err
	}

	if err := w.store.Set(ctx, persistence.ScopedKeyEmailChangeToken, token); err != nil {
		return err
	}
	if err := w.store.Set(ctx, persistence.ScopedKeyNewEmail, target); err != nil {
		return err
	}

	w.mu.Lock()
	w.step = EmailStepOTP
	w.mu.Unlock()
	w.logger.Info("email change initiated")

	return nil
}

// ResendOTP re-initiates the change for the stored target email and replaces
// the stored token.
func (w *EmailChangeWizard) ResendOTP(ctx context.Context) error {
	target, found, err := w.store.Get(ctx, persistence.ScopedKeyNewEmail)
	if err != nil {
		return err
	}
	if !found || target == "" {
		return validationErr("No email change in progress")
	}

	token, err := w.api.InitiateEmailChange(ctx, target)
	if err != nil {
		return err
	}

	return w.store.Set(ctx, persistence.ScopedKeyEmailChangeToken, token)
}

// SubmitOTP completes the change. On success the handshake state is cleared
// and the user is logged out so the next login runs under the new email; the
// caller handles the redirect.
func (w *EmailChangeWizard) SubmitOTP(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)
	if !isNumericCode(otp, 6) {
		return validationErr("Enter the 6-digit code from the email")
	}

	token, found, err := w.store.Get(ctx, persistence.ScopedKeyEmailChangeToken)
	if err != nil {
		return err
	}
	if !found || token == "" {
		return validationErr("No email change in progress")
	}

	if err := w.api.VerifyEmailChange(ctx, token, otp); err != nil {
		return err
	}

	w.store.ClearScope()
	w.mu.Lock()
	w.step = EmailStepDone
	w.mu.Unlock()

	if err := w.api.Logout(ctx); err != nil {
		// The email change already landed; a failed logout only delays
		// re-authentication until the session expires server-side.
		w.logger.Warn("logout after email change", "error", err)
	}
	w.logger.Info("email change completed")

	return nil
}

// Cancel abandons the flow and wipes the handshake state.
func (w *EmailChangeWizard) Cancel() {
	w.store.ClearScope()
	w.mu.Lock()
	w.step = EmailStepCredentials
	w.mu.Unlock()
}
