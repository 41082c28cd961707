package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
	"drivego/internal/domain"
)

// newSecurityTab builds the security panel: credentials, sessions, devices,
// and the activity monitor. This is the only tab that stays reachable while
// the account is over its device limit.
func newSecurityTab(dep RuntimeDependencies, host *settingsWindow) *settingsTabView {
	lists := dep.Controllers.SecurityLists
	monitor := dep.Controllers.ActivityMonitor

	// Credentials section.

	totpButton := widget.NewButton("Set up two-factor authentication", nil)
	refreshTOTPButton := func() {
		if dep.Data.CurrentProfile == nil {
			return
		}
		profile, known := dep.Data.CurrentProfile()
		if !known {
			return
		}
		if profile.TOTPEnabled {
			totpButton.SetText("Disable two-factor authentication")
		} else {
			totpButton.SetText("Set up two-factor authentication")
		}
	}

	totpDialog := newTOTPDialog(dep, host, func() {
		host.runAsync(func() error {
			if dep.Actions.RefetchUser == nil {
				return nil
			}

			return dep.Actions.RefetchUser()
		}, func(error) {
			refreshTOTPButton()
		})
	})
	totpButton.OnTapped = func() {
		profile, known := domain.Profile{}, false
		if dep.Data.CurrentProfile != nil {
			profile, known = dep.Data.CurrentProfile()
		}
		if known && profile.TOTPEnabled {
			totpDialog.showDisable(host.currentWindow())
		} else {
			totpDialog.showSetup(host.currentWindow())
		}
	}

	emailDialog := newEmailChangeDialog(dep, host)
	emailButton := widget.NewButton("Change email...", func() {
		emailDialog.show(host.currentWindow())
	})

	walletNotice := widget.NewLabel("Email and two-factor settings are managed by your wallet signer.")
	walletNotice.Hide()
	credentialControls := container.NewHBox(emailButton, totpButton)

	// Sessions section.

	sessionsBox := container.NewVBox()
	sessionsPager := newPager(func(delta int) {
		page := lists.Sessions().ClampPage(lists.Sessions().Page + delta)
		host.runAsync(func() error {
			return lists.LoadSessions(context.Background(), page)
		}, func(err error) {
			if err != nil {
				host.toastError("Sessions", err)

				return
			}
			host.refreshSecurityLists()
		})
	})

	revokeAllButton := widget.NewButton("Revoke all other sessions", func() {
		host.showConfirm("Revoke all sessions", "Sign out every session except this one?", func(confirmed bool) {
			if !confirmed {
				return
			}
			host.runAsync(func() error {
				// The controller reloads the first page itself.
				return lists.RevokeAllSessions(context.Background())
			}, func(err error) {
				if err != nil {
					host.toastError("Sessions", err)

					return
				}
				host.toastSuccess("Sessions", "All other sessions revoked")
				host.refreshSecurityLists()
			})
		})
	})

	// Devices section.

	devicesBox := container.NewVBox()
	devicesPager := newPager(func(delta int) {
		page := lists.Devices().ClampPage(lists.Devices().Page + delta)
		host.runAsync(func() error {
			return lists.LoadDevices(context.Background(), page)
		}, func(err error) {
			if err != nil {
				host.toastError("Devices", err)

				return
			}
			host.refreshSecurityLists()
		})
	})

	showRevokedCheck := widget.NewCheck("Show revoked entries", func(show bool) {
		host.runAsync(func() error {
			return lists.SetShowRevoked(context.Background(), show)
		}, func(err error) {
			if err != nil {
				host.toastError("Security", err)

				return
			}
			host.refreshSecurityLists()
		})
	})

	deviceLimitBanner := widget.NewLabel("Device limit reached. Revoke a device to continue syncing.")
	deviceLimitBanner.Importance = widget.DangerImportance
	deviceLimitBanner.Hide()

	// Activity monitor section.

	eventsBox := container.NewVBox()
	eventsPager := newPager(func(delta int) {
		page := monitor.Events().ClampPage(monitor.Events().Page + delta)
		host.runAsync(func() error {
			return monitor.Load(context.Background(), page)
		}, func(err error) {
			if err != nil {
				host.toastError("Activity", err)

				return
			}
			host.refreshSecurityEvents()
		})
	})

	detailedCheck := widget.NewCheck("Record detailed events", nil)
	diagnosticsCheck := widget.NewCheck("Share usage diagnostics", nil)
	crashCheck := widget.NewCheck("Send crash reports", nil)

	applyPrefs := func() {
		prefs := monitor.Prefs()
		detailedCheck.Checked = prefs.DetailedEventsEnabled
		detailedCheck.Refresh()
		diagnosticsCheck.Checked = prefs.UsageDiagnostics
		diagnosticsCheck.Refresh()
		crashCheck.Checked = prefs.CrashReports
		crashCheck.Refresh()
		if prefs.ActivityMonitorEnabled {
			detailedCheck.Enable()
		} else {
			detailedCheck.Disable()
		}
	}

	monitorCheck := widget.NewCheck("Activity monitor", nil)
	monitorCheck.OnChanged = func(enabled bool) {
		apply := func() {
			host.runAsync(func() error {
				return monitor.SetActivityMonitorEnabled(context.Background(), enabled)
			}, func(err error) {
				if err != nil {
					host.toastError("Activity", err)
				}
				monitorCheck.Checked = monitor.Prefs().ActivityMonitorEnabled
				monitorCheck.Refresh()
				applyPrefs()
				host.refreshSecurityEvents()
			})
		}
		if enabled {
			apply()

			return
		}
		host.showConfirm("Disable activity monitor",
			"New security events will no longer be recorded and the current log will be cleared from view. Continue?",
			func(confirmed bool) {
				if !confirmed {
					monitorCheck.Checked = true
					monitorCheck.Refresh()

					return
				}
				apply()
			})
	}
	detailedCheck.OnChanged = func(enabled bool) {
		host.runAsync(func() error {
			return monitor.SetDetailedEventsEnabled(context.Background(), enabled)
		}, func(err error) {
			if err != nil {
				host.toastError("Activity", err)
				detailedCheck.Checked = monitor.Prefs().DetailedEventsEnabled
				detailedCheck.Refresh()
			}
		})
	}
	diagnosticsChanged := func() {
		host.runAsync(func() error {
			return monitor.SetDiagnostics(context.Background(), diagnosticsCheck.Checked, crashCheck.Checked)
		}, func(err error) {
			if err != nil {
				host.toastError("Privacy", err)
				applyPrefs()
			}
		})
	}
	diagnosticsCheck.OnChanged = func(bool) { diagnosticsChanged() }
	crashCheck.OnChanged = func(bool) { diagnosticsChanged() }

	wipeButton := widget.NewButton("Clear activity log", func() {
		host.showConfirm("Clear activity log", "Permanently delete every recorded security event?", func(confirmed bool) {
			if !confirmed {
				return
			}
			host.runAsync(func() error {
				return monitor.Wipe(context.Background())
			}, func(err error) {
				if err != nil {
					host.toastError("Activity", err)

					return
				}
				host.toastSuccess("Activity", "Activity log cleared")
				host.refreshSecurityEvents()
			})
		})
	})
	wipeButton.Importance = widget.DangerImportance

	exportButton := widget.NewButton("Export CSV", func() {
		host.runAsync(func() error {
			data, filename, err := monitor.ExportCSV(context.Background())
			if err != nil {
				return err
			}
			host.dep.UIHooks.RunOnUI(func() {
				host.dep.UIHooks.SaveFile(filename, data, host.currentWindow())
			})

			return nil
		}, func(err error) {
			if err != nil {
				host.toastError("Export", err)
			}
		})
	})

	host.refreshSecurityLists = func() {
		refreshSessionRows(host, lists, sessionsBox, sessionsPager)
		refreshDeviceRows(host, lists, devicesBox, devicesPager)
		showRevokedCheck.Checked = lists.ShowRevoked()
		showRevokedCheck.Refresh()
	}
	host.refreshSecurityEvents = func() {
		refreshEventRows(monitor, eventsBox, eventsPager)
	}

	content := container.NewVBox(
		deviceLimitBanner,
		widget.NewLabelWithStyle("Credentials", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		walletNotice,
		credentialControls,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Sessions", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sessionsBox,
		container.NewHBox(sessionsPager.row, revokeAllButton),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Devices", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		devicesBox,
		devicesPager.row,
		showRevokedCheck,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Activity monitor", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		monitorCheck,
		detailedCheck,
		diagnosticsCheck,
		crashCheck,
		eventsBox,
		container.NewHBox(eventsPager.row, exportButton, wipeButton),
	)

	load := func() {
		if dep.Data.CurrentProfile != nil {
			profile, known := dep.Data.CurrentProfile()
			if known && profile.WalletManaged() {
				walletNotice.Show()
				emailButton.Hide()
				totpButton.Hide()
			} else {
				walletNotice.Hide()
				emailButton.Show()
				totpButton.Show()
			}
		}
		refreshTOTPButton()
		if dep.Data.DeviceLimit != nil && dep.Data.DeviceLimit() {
			deviceLimitBanner.Show()
		} else {
			deviceLimitBanner.Hide()
		}

		monitorCheck.Checked = monitor.Prefs().ActivityMonitorEnabled
		monitorCheck.Refresh()
		applyPrefs()

		generation := host.router.NextGeneration(app.TabSecurity)
		host.runAsync(func() error {
			if err := lists.LoadSessions(context.Background(), 1); err != nil {
				return err
			}
			if err := lists.LoadDevices(context.Background(), 1); err != nil {
				return err
			}

			return monitor.Load(context.Background(), 1)
		}, func(err error) {
			if !host.router.CurrentGeneration(app.TabSecurity, generation) {
				return
			}
			if err != nil {
				host.toastError("Security", err)
			}
			host.refreshSecurityLists()
			host.refreshSecurityEvents()
		})
	}

	reset := func() {
		sessionsBox.RemoveAll()
		devicesBox.RemoveAll()
		eventsBox.RemoveAll()
		emailDialog.cancel()
		totpDialog.reset()
	}

	return &settingsTabView{content: content, load: load, reset: reset}
}

func refreshSessionRows(host *settingsWindow, lists *app.SecurityLists, box *fyne.Container, pg *pager) {
	box.RemoveAll()
	page := lists.Sessions()
	if len(page.Items) == 0 {
		box.Add(widget.NewLabel("No sessions to show."))
	}
	for _, s := range page.Items {
		session := s
		label := widget.NewLabel(sessionLine(session))
		revoke := widget.NewButton("Revoke", func() {
			host.runAsync(func() error {
				return lists.RevokeSession(context.Background(), session)
			}, func(err error) {
				if err != nil {
					host.toastError("Sessions", err)

					return
				}
				host.toastSuccess("Sessions", "Session revoked")
				host.refreshSecurityLists()
			})
		})
		if !lists.CanRevokeSession(session) {
			revoke.Disable()
		}
		box.Add(container.NewBorder(nil, nil, nil, revoke, label))
	}
	pg.update(page.Page, page.TotalPages)
	box.Refresh()
}

func refreshDeviceRows(host *settingsWindow, lists *app.SecurityLists, box *fyne.Container, pg *pager) {
	box.RemoveAll()
	page := lists.Devices()
	if len(page.Items) == 0 {
		box.Add(widget.NewLabel("No devices to show."))
	}
	for _, d := range page.Items {
		device := d
		name := newDeviceNameCell(host, lists, device)
		revoke := widget.NewButton("Revoke", func() {
			host.runAsync(func() error {
				return lists.RevokeDevice(context.Background(), device)
			}, func(err error) {
				if err != nil {
					host.toastError("Devices", err)

					return
				}
				host.toastSuccess("Devices", "Device revoked")
				host.refreshSecurityLists()
			})
		})
		if !lists.CanRevokeDevice(device) {
			revoke.Disable()
		}
		box.Add(container.NewBorder(nil, nil, nil, revoke, name))
	}
	pg.update(page.Page, page.TotalPages)
	box.Refresh()
}

func refreshEventRows(monitor *app.ActivityMonitor, box *fyne.Container, pg *pager) {
	box.RemoveAll()
	page := monitor.Events()
	if len(page.Items) == 0 {
		box.Add(widget.NewLabel("No recorded events."))
	}
	for _, event := range page.Items {
		box.Add(widget.NewLabel(eventLine(monitor, event)))
	}
	pg.update(page.Page, page.TotalPages)
	box.Refresh()
}

// deviceNameCell shows the device line and carries the inline rename
// affordance: double-tap swaps in an entry that commits on Enter or focus
// loss and reverts on Escape. Free tiers get the upsell prompt instead of an
// editable field; the controller never sees their input.
type deviceNameCell struct {
	content fyne.CanvasObject
	label   *doubleTapLabel
	entry   *inlineRenameEntry
}

func newDeviceNameCell(host *settingsWindow, lists *app.SecurityLists, device domain.Device) fyne.CanvasObject {
	cell := &deviceNameCell{
		label: newDoubleTapLabel(deviceLine(device)),
		entry: newInlineRenameEntry(),
	}
	cell.entry.Hide()
	cell.content = container.NewStack(cell.label, cell.entry)

	closeEditor := func() {
		cell.entry.Hide()
		cell.label.Show()
	}

	cell.label.onDoubleTap = func() {
		if device.Revoked {
			return
		}
		if !lists.CanRenameDevices() {
			host.showUpsell(&app.PlanGateError{Plan: lists.Plan()})

			return
		}
		cell.entry.SetText(device.Name)
		cell.entry.active = true
		cell.label.Hide()
		cell.entry.Show()
		if canvas := fyne.CurrentApp().Driver().CanvasForObject(cell.entry); canvas != nil {
			canvas.Focus(cell.entry)
		}
	}
	cell.entry.onCancel = closeEditor
	cell.entry.onCommit = func(value string) {
		closeEditor()
		renamed := false
		host.runAsync(func() error {
			var err error
			renamed, err = lists.RenameDevice(context.Background(), device, value)

			return err
		}, func(err error) {
			if err != nil {
				host.toastError("Devices", err)

				return
			}
			if renamed {
				host.refreshSecurityLists()
			}
		})
	}

	return cell.content
}

// doubleTapLabel is a label with a double-tap hook.
type doubleTapLabel struct {
	widget.Label
	onDoubleTap func()
}

func newDoubleTapLabel(text string) *doubleTapLabel {
	l := &doubleTapLabel{}
	l.Text = text
	l.ExtendBaseWidget(l)

	return l
}

func (l *doubleTapLabel) DoubleTapped(*fyne.PointEvent) {
	if l.onDoubleTap != nil {
		l.onDoubleTap()
	}
}

// inlineRenameEntry commits once per edit, on Enter or focus loss, and
// reverts on Escape.
type inlineRenameEntry struct {
	widget.Entry
	active   bool
	onCommit func(string)
	onCancel func()
}

func newInlineRenameEntry() *inlineRenameEntry {
	e := &inlineRenameEntry{}
	e.ExtendBaseWidget(e)
	e.OnSubmitted = func(value string) { e.finish(value) }

	return e
}

func (e *inlineRenameEntry) finish(value string) {
	if !e.active {
		return
	}
	e.active = false
	if e.onCommit != nil {
		e.onCommit(value)
	}
}

func (e *inlineRenameEntry) TypedKey(event *fyne.KeyEvent) {
	if event.Name == fyne.KeyEscape {
		if e.active {
			e.active = false
			if e.onCancel != nil {
				e.onCancel()
			}
		}

		return
	}
	e.Entry.TypedKey(event)
}

func (e *inlineRenameEntry) FocusLost() {
	e.Entry.FocusLost()
	e.finish(e.Text)
}

func sessionLine(s domain.Session) string {
	line := fmt.Sprintf("%s · %s · %s", s.UserAgent, s.IPAddress, s.CreatedAt.Format(time.DateOnly))
	if s.IsCurrent {
		line += " (this session)"
	}
	if s.Revoked {
		line += " (revoked)"
	}

	return line
}

func deviceLine(d domain.Device) string {
	line := fmt.Sprintf("%s · %s %s", d.Name, d.OS, d.Browser)
	if d.Location != "" {
		line += " · " + d.Location
	}
	if !d.LastActive.IsZero() {
		line += " · active " + d.LastActive.Format(time.DateOnly)
	}
	if d.IsCurrent {
		line += " (this device)"
	}
	if d.Revoked {
		line += " (revoked)"
	}

	return line
}

func eventLine(monitor *app.ActivityMonitor, e domain.SecurityEvent) string {
	line := fmt.Sprintf("%s · %s · %s", e.CreatedAt.Format(time.DateTime), e.Type, monitor.DisplayIP(e))
	if e.Status == domain.SecurityEventFailure {
		line += " · failed"
	}

	return line
}
