package ui

import (
	"context"
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"drivego/internal/api"
	"drivego/internal/app"
	"drivego/internal/domain"
	"drivego/internal/persistence"
)

func TestGeneralTabSavesDisplayName(t *testing.T) {
	backend := &stubBackend{}
	var captured api.ProfileUpdate
	updates := 0
	backend.updateProfileFn = func(_ context.Context, update api.ProfileUpdate) (domain.Profile, error) {
		captured = update
		updates++
		profile := backend.profile
		if update.DisplayName != nil {
			profile.DisplayName = *update.DisplayName
		}

		return profile, nil
	}

	h := newTestHarness(t, backend)
	s := newSettingsWindow(h.dep)
	s.router.Open()

	content := s.tabs[app.TabGeneral].content
	_ = fynetest.NewTempWindow(t, content)

	nameEntry := mustFindEntryByPlaceholder(t, content, "Display name")
	if nameEntry.Text != "User One" {
		t.Fatalf("expected profile name in entry, got %q", nameEntry.Text)
	}

	nameEntry.SetText("Renamed User")
	fynetest.Tap(mustFindButtonByText(t, content, "Save"))

	if updates != 1 {
		t.Fatalf("expected one profile update, got %d", updates)
	}
	if captured.DisplayName == nil || *captured.DisplayName != "Renamed User" {
		t.Fatalf("unexpected update payload: %+v", captured)
	}

	h.waitForToast(t, 1)
	if toast := h.lastToast(t); toast.title != "Profile" {
		t.Fatalf("unexpected toast: %+v", toast)
	}
}

func TestGeneralTabUnchangedNameIsNoOp(t *testing.T) {
	backend := &stubBackend{}
	updates := 0
	backend.updateProfileFn = func(_ context.Context, _ api.ProfileUpdate) (domain.Profile, error) {
		updates++

		return backend.profile, nil
	}

	h := newTestHarness(t, backend)
	s := newSettingsWindow(h.dep)
	s.router.Open()

	content := s.tabs[app.TabGeneral].content
	_ = fynetest.NewTempWindow(t, content)

	fynetest.Tap(mustFindButtonByText(t, content, "Save"))

	if updates != 0 {
		t.Fatalf("expected no network call for unchanged name, got %d", updates)
	}
}

func TestGeneralTabWalletManagedShowsNotice(t *testing.T) {
	backend := &stubBackend{
		profile: domain.Profile{
			ID:          "user-2",
			Email:       "signer" + domain.WalletEmailDomain,
			DisplayName: "Wallet User",
			AuthMethod:  domain.AuthMethodWallet,
			Plan:        domain.PlanFree,
		},
	}

	h := newTestHarness(t, backend)
	s := newSettingsWindow(h.dep)
	s.router.Open()

	content := s.tabs[app.TabGeneral].content
	_ = fynetest.NewTempWindow(t, content)

	notice := mustFindLabelByPrefix(t, content, "This account is managed")
	if !notice.Visible() {
		t.Fatalf("expected wallet notice visible")
	}
}

func TestGeneralTabLogoutInvokesCallback(t *testing.T) {
	backend := &stubBackend{}
	h := newTestHarness(t, backend)

	s := newSettingsWindow(h.dep)
	s.router.Open()

	content := s.tabs[app.TabGeneral].content
	_ = fynetest.NewTempWindow(t, content)

	fynetest.Tap(mustFindButtonByText(t, content, "Log out"))

	if h.loggedOut != 1 {
		t.Fatalf("expected logout callback once, got %d", h.loggedOut)
	}
}

func TestGeneralTabSeedsSessionDurationFromMirror(t *testing.T) {
	backend := &stubBackend{}
	updates := 0
	backend.updateProfileFn = func(_ context.Context, _ api.ProfileUpdate) (domain.Profile, error) {
		updates++

		return backend.profile, nil
	}

	h := newTestHarness(t, backend)
	if err := h.prefs.Set(context.Background(), persistence.KeySessionConfig, "90d"); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}

	s := newSettingsWindow(h.dep)
	content := s.tabs[app.TabGeneral].content
	_ = fynetest.NewTempWindow(t, content)

	durationSelect := mustFindSelectWithOption(t, content, "90d")
	if durationSelect.Selected != "90d" {
		t.Fatalf("expected mirror seed, got %q", durationSelect.Selected)
	}
	if updates != 0 {
		t.Fatalf("seeding issued %d profile updates", updates)
	}
}
