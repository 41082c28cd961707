package ui

import (
	"context"
	"errors"
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"drivego/internal/app"
	"drivego/internal/domain"
)

func openNotificationsTab(t *testing.T, h *testHarness) *settingsWindow {
	t.Helper()
	s := newSettingsWindow(h.dep)
	s.router.Open()
	s.router.Activate(app.TabNotifications)
	_ = fynetest.NewTempWindow(t, s.tabs[app.TabNotifications].content)

	return s
}

func TestNotificationsTabPersistsToggle(t *testing.T) {
	backend := &stubBackend{}
	backend.getNotifPrefsFn = func(context.Context) (domain.NotificationPrefs, error) {
		return domain.NotificationPrefs{InApp: true, Email: true}, nil
	}
	var captured domain.NotificationPrefs
	updates := 0
	backend.updateNotifPrefsFn = func(_ context.Context, prefs domain.NotificationPrefs) error {
		captured = prefs
		updates++

		return nil
	}

	h := newTestHarness(t, backend)
	s := openNotificationsTab(t, h)
	content := s.tabs[app.TabNotifications].content

	emailCheck := mustFindCheckByText(t, content, "Email notifications")
	if !emailCheck.Checked {
		t.Fatalf("expected email toggle seeded from server")
	}

	emailCheck.SetChecked(false)

	if updates != 1 {
		t.Fatalf("expected one preference update, got %d", updates)
	}
	if captured.Email {
		t.Fatalf("expected email disabled in payload: %+v", captured)
	}
	if !captured.InApp {
		t.Fatalf("expected unrelated toggles untouched: %+v", captured)
	}
}

func TestNotificationsTabRollsBackOnServerError(t *testing.T) {
	backend := &stubBackend{}
	backend.getNotifPrefsFn = func(context.Context) (domain.NotificationPrefs, error) {
		return domain.NotificationPrefs{Login: true}, nil
	}
	backend.updateNotifPrefsFn = func(context.Context, domain.NotificationPrefs) error {
		return errors.New("server rejected")
	}

	h := newTestHarness(t, backend)
	s := openNotificationsTab(t, h)
	content := s.tabs[app.TabNotifications].content

	loginCheck := mustFindCheckByText(t, content, "New login alerts")
	loginCheck.SetChecked(false)

	if !loginCheck.Checked {
		t.Fatalf("expected toggle rolled back after server error")
	}
	if got := s.dep.Controllers.Notifications.Value(app.ToggleLogin); !got {
		t.Fatalf("expected controller state rolled back")
	}
	h.waitForToast(t, 1)
}
