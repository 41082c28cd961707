package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"drivego/internal/domain"
)

// TOTPWizardState tracks the enrollment sub-flow.
type TOTPWizardState int

const (
	TOTPIdle TOTPWizardState = iota
	TOTPSetupPending
	TOTPEnabled
)

// TOTPAPI is the slice of the API client the wizard drives.
type TOTPAPI interface {
	SetupTOTP(ctx context.Context) (domain.TOTPEnrollment, error)
	VerifyTOTPSetup(ctx context.Context, token string) ([]string, error)
	DisableTOTP(ctx context.Context, token, recoveryCode string) error
}

// TOTPWizard owns two-factor enrollment and disable. The server-issued secret
// and the one-time recovery codes exist only in wizard memory and are wiped
// when the wizard closes; there is no path to re-display them afterwards.
type TOTPWizard struct {
	api    TOTPAPI
	logger *slog.Logger

	mu            sync.Mutex
	state         TOTPWizardState
	enrollment    *domain.TOTPEnrollment
	recoveryCodes []string
}

func NewTOTPWizard(totpAPI TOTPAPI, logger *slog.Logger) *TOTPWizard {
	if logger == nil {
		logger = slog.Default().With("component", "totp")
	}

	return &TOTPWizard{api: totpAPI, logger: logger}
}

func (w *TOTPWizard) State() TOTPWizardState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// BeginSetup requests fresh secret material from the server. Re-entering setup
// replaces any previous pending enrollment.
func (w *TOTPWizard) BeginSetup(ctx context.Context) (domain.TOTPEnrollment, error) {
	enrollment, err := w.api.SetupTOTP(ctx)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}

	w.mu.Lock()
	w.state = TOTPSetupPending
	w.enrollment = &enrollment
	w.recoveryCodes = nil
	w.mu.Unlock()
	w.logger.Info("totp setup started")

	return enrollment, nil
}

// Enrollment returns the pending secret material, if any.
func (w *TOTPWizard) Enrollment() (domain.TOTPEnrollment, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enrollment == nil {
		return domain.TOTPEnrollment{}, false
	}

	return *w.enrollment, true
}

// ConfirmSetup verifies the 6-digit confirmation code and yields the one-time
// recovery code batch.
func (w *TOTPWizard) ConfirmSetup(ctx context.Context, token string) ([]string, error) {
	token = strings.TrimSpace(token)
	if !isNumericCode(token, 6) {
		return nil, validationErr("Enter the 6-digit code from your authenticator app")
	}

	codes, err := w.api.VerifyTOTPSetup(ctx, token)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.state = TOTPEnabled
	w.enrollment = nil
	w.recoveryCodes = append([]string(nil), codes...)
	w.mu.Unlock()
	w.logger.Info("totp enabled")

	return codes, nil
}

// RecoveryCodes returns the batch issued by ConfirmSetup while the wizard is
// still open.
func (w *TOTPWizard) RecoveryCodes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.recoveryCodes...)
}

// RecoveryCodesText renders the batch for the copy/download affordances.
func (w *TOTPWizard) RecoveryCodesText() string {
	return strings.Join(w.RecoveryCodes(), "\n")
}

// ValidateDisableInput enforces the disable contract: exactly one of a
// 6-digit token or an 8-character recovery code, format-checked before any
// network call.
func ValidateDisableInput(token, recoveryCode string) error {
	token = strings.TrimSpace(token)
	recoveryCode = strings.TrimSpace(recoveryCode)

	if token == "" && recoveryCode == "" {
		return validationErr("Enter a 6-digit code or a recovery code")
	}
	if token != "" && !isNumericCode(token, 6) {
		return validationErr("Authenticator code must be exactly 6 digits")
	}
	if token == "" && len(recoveryCode) != 8 {
		return validationErr("Recovery code must be exactly 8 characters")
	}

	return nil
}

// Disable turns two-factor off. When both inputs are present the token wins.
func (w *TOTPWizard) Disable(ctx context.Context, token, recoveryCode string) error {
	if err := ValidateDisableInput(token, recoveryCode); err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	recoveryCode = strings.TrimSpace(recoveryCode)
	if token != "" {
		recoveryCode = ""
	}

	if err := w.api.DisableTOTP(ctx, token, recoveryCode); err != nil {
		return err
	}

	w.mu.Lock()
	w.state = TOTPIdle
	w.enrollment = nil
	w.recoveryCodes = nil
	w.mu.Unlock()
	w.logger.Info("totp disabled")

	return nil
}

// CloseWizard wipes the secret material. Losing unsaved recovery codes here is
// the flow's accepted, user-flagged data-loss risk.
func (w *TOTPWizard) CloseWizard() {
	w.mu.Lock()
	if w.state == TOTPSetupPending {
		w.state = TOTPIdle
	}
	w.enrollment = nil
	w.recoveryCodes = nil
	w.mu.Unlock()
}
