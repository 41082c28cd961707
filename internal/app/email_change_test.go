package app

import (
	"context"
	"errors"
	"testing"

	"drivego/internal/persistence"
)

type stubEmailAPI struct {
	verifyPasswordFn func(password string) error
	initiateFn       func(newEmail string) (string, error)
	verifyChangeFn   func(token, otp string) error
	logoutFn         func() error

	initiateCalls int
}

func (s *stubEmailAPI) VerifyPassword(_ context.Context, password string) error {
	if s.verifyPasswordFn != nil {
		return s.verifyPasswordFn(password)
	}

	return nil
}

func (s *stubEmailAPI) InitiateEmailChange(_ context.Context, newEmail string) (string, error) {
	s.initiateCalls++
	if s.initiateFn != nil {
		return s.initiateFn(newEmail)
	}

	return "token-1", nil
}

func (s *stubEmailAPI) VerifyEmailChange(_ context.Context, token, otp string) error {
	if s.verifyChangeFn != nil {
		return s.verifyChangeFn(token, otp)
	}

	return nil
}

func (s *stubEmailAPI) Logout(_ context.Context) error {
	if s.logoutFn != nil {
		return s.logoutFn()
	}

	return nil
}

type memHandshakeStore struct {
	values map[string]string
}

func newMemHandshakeStore() *memHandshakeStore {
	return &memHandshakeStore{values: map[string]string{}}
}

func (s *memHandshakeStore) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := s.values[key]

	return value, ok, nil
}

func (s *memHandshakeStore) Set(_ context.Context, key, value string) error {
	s.values[key] = value

	return nil
}

func (s *memHandshakeStore) ClearScope() {
	s.values = map[string]string{}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		newEmail string
		confirm  string
		password string
		wantErr  bool
	}{
		{name: "valid", current: "a@x.com", newEmail: "b@x.com", confirm: "b@x.com", password: "pw"},
		{name: "case-insensitive confirm", current: "a@x.com", newEmail: "B@x.com", confirm: "b@X.com", password: "pw"},
		{name: "empty new", current: "a@x.com", newEmail: "", confirm: "b@x.com", password: "pw", wantErr: true},
		{name: "empty confirm", current: "a@x.com", newEmail: "b@x.com", confirm: "", password: "pw", wantErr: true},
		{name: "mismatch", current: "a@x.com", newEmail: "b@x.com", confirm: "c@x.com", password: "pw", wantErr: true},
		{name: "same as current", current: "a@x.com", newEmail: "a@x.com", confirm: "a@x.com", password: "pw", wantErr: true},
		{name: "empty password", current: "a@x.com", newEmail: "b@x.com", confirm: "b@x.com", password: "", wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateCredentials(tt.current, tt.newEmail, tt.confirm, tt.password)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: ValidateCredentials() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestSubmitCredentialsRejectsBeforeNetwork(t *testing.T) {
	apiStub := &stubEmailAPI{
		verifyPasswordFn: func(string) error {
			t.Fatal("VerifyPassword called for invalid credentials")

			return nil
		},
	}
	wizard := NewEmailChangeWizard(apiStub, newMemHandshakeStore(), nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "b@x.com", "c@x.com", "pw"); err == nil {
		t.Fatal("mismatched emails accepted")
	}
	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "a@x.com", "a@x.com", "pw"); err == nil {
		t.Fatal("unchanged email accepted")
	}
	if apiStub.initiateCalls != 0 {
		t.Fatalf("InitiateEmailChange called %d times for invalid input", apiStub.initiateCalls)
	}
	if wizard.Step() != EmailStepCredentials {
		t.Fatalf("wizard advanced on invalid input: step %d", wizard.Step())
	}
}

func TestSubmitCredentialsStoresHandshake(t *testing.T) {
	apiStub := &stubEmailAPI{
		initiateFn: func(newEmail string) (string, error) {
			if newEmail != "b@x.com" {
				t.Fatalf("initiate called with %q", newEmail)
			}

			return "token-42", nil
		},
	}
	store := newMemHandshakeStore()
	wizard := NewEmailChangeWizard(apiStub, store, nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", " b@x.com ", "b@x.com", "pw"); err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}
	if wizard.Step() != EmailStepOTP {
		t.Fatalf("step = %d, want OTP", wizard.Step())
	}
	if store.values[persistence.ScopedKeyEmailChangeToken] != "token-42" {
		t.Fatalf("stored token = %q", store.values[persistence.ScopedKeyEmailChangeToken])
	}
	if store.values[persistence.ScopedKeyNewEmail] != "b@x.com" {
		t.Fatalf("stored email = %q", store.values[persistence.ScopedKeyNewEmail])
	}
}

func TestSubmitCredentialsPasswordFailureStaysOnStep(t *testing.T) {
	apiStub := &stubEmailAPI{
		verifyPasswordFn: func(string) error { return errors.New("wrong password") },
	}
	store := newMemHandshakeStore()
	wizard := NewEmailChangeWizard(apiStub, store, nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "b@x.com", "b@x.com", "pw"); err == nil {
		t.Fatal("password failure not surfaced")
	}
	if apiStub.initiateCalls != 0 {
		t.Fatal("email change initiated despite failed password verification")
	}
	if wizard.Step() != EmailStepCredentials {
		t.Fatalf("wizard advanced after failure: step %d", wizard.Step())
	}
}

func TestResendOTPReplacesToken(t *testing.T) {
	apiStub := &stubEmailAPI{}
	store := newMemHandshakeStore()
	wizard := NewEmailChangeWizard(apiStub, store, nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "b@x.com", "b@x.com", "pw"); err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	apiStub.initiateFn = func(newEmail string) (string, error) { return "token-2", nil }
	if err := wizard.ResendOTP(context.Background()); err != nil {
		t.Fatalf("ResendOTP() error = %v", err)
	}
	if store.values[persistence.ScopedKeyEmailChangeToken] != "token-2" {
		t.Fatalf("token not replaced: %q", store.values[persistence.ScopedKeyEmailChangeToken])
	}
}

func TestSubmitOTP(t *testing.T) {
	apiStub := &stubEmailAPI{
		verifyChangeFn: func(token, otp string) error {
			if token != "token-1" || otp != "123456" {
				t.Fatalf("verify called with token=%q otp=%q", token, otp)
			}

			return nil
		},
	}
	store := newMemHandshakeStore()
	wizard := NewEmailChangeWizard(apiStub, store, nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "b@x.com", "b@x.com", "pw"); err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	if err := wizard.SubmitOTP(context.Background(), "12345"); err == nil {
		t.Fatal("5-digit code accepted")
	}
	if err := wizard.SubmitOTP(context.Background(), "12345a"); err == nil {
		t.Fatal("non-numeric code accepted")
	}

	if err := wizard.SubmitOTP(context.Background(), " 123456 "); err != nil {
		t.Fatalf("SubmitOTP() error = %v", err)
	}
	if wizard.Step() != EmailStepDone {
		t.Fatalf("step = %d, want done", wizard.Step())
	}
	if len(store.values) != 0 {
		t.Fatalf("handshake state not cleared: %v", store.values)
	}
}

func TestSubmitOTPSucceedsWhenLogoutFails(t *testing.T) {
	apiStub := &stubEmailAPI{
		logoutFn: func() error { return errors.New("network down") },
	}
	wizard := NewEmailChangeWizard(apiStub, newMemHandshakeStore(), nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "b@x.com", "b@x.com", "pw"); err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}
	if err := wizard.SubmitOTP(context.Background(), "123456"); err != nil {
		t.Fatalf("SubmitOTP() failed on logout error: %v", err)
	}
}

func TestCancelClearsHandshake(t *testing.T) {
	store := newMemHandshakeStore()
	wizard := NewEmailChangeWizard(&stubEmailAPI{}, store, nil)

	if err := wizard.SubmitCredentials(context.Background(), "a@x.com", "b@x.com", "b@x.com", "pw"); err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}
	wizard.Cancel()

	if wizard.Step() != EmailStepCredentials {
		t.Fatalf("step after cancel = %d", wizard.Step())
	}
	if len(store.values) != 0 {
		t.Fatalf("handshake state survived cancel: %v", store.values)
	}
}
