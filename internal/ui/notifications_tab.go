package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
)

var notificationToggleLabels = map[app.NotificationToggle]string{
	app.ToggleInApp:     "In-app notifications",
	app.ToggleEmail:     "Email notifications",
	app.ToggleLogin:     "New login alerts",
	app.ToggleFileShare: "File sharing activity",
	app.ToggleBilling:   "Billing reminders",
}

// newNotificationsTab builds the five independent notification switches.
// Each flip persists immediately and rolls back visually if the server
// rejects it.
func newNotificationsTab(dep RuntimeDependencies, host *settingsWindow) *settingsTabView {
	settings := dep.Controllers.Notifications

	checks := make(map[app.NotificationToggle]*widget.Check, len(app.NotificationToggles()))

	box := container.NewVBox(
		widget.NewLabelWithStyle("Notifications", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, t := range app.NotificationToggles() {
		toggle := t
		check := widget.NewCheck(notificationToggleLabels[toggle], nil)
		check.OnChanged = func(value bool) {
			check.Disable()
			host.runAsync(func() error {
				return settings.Set(context.Background(), toggle, value)
			}, func(err error) {
				check.Enable()
				if err != nil {
					host.toastError("Notifications", err)
					// Assigning Checked directly avoids re-firing OnChanged
					// for the rollback.
					check.Checked = settings.Value(toggle)
					check.Refresh()
				}
			})
		}
		checks[toggle] = check
		box.Add(check)
	}

	applyPrefs := func() {
		for toggle, check := range checks {
			check.Checked = settings.Value(toggle)
			check.Refresh()
		}
	}

	load := func() {
		generation := host.router.NextGeneration(app.TabNotifications)
		host.runAsync(func() error {
			return settings.Load(context.Background())
		}, func(err error) {
			if !host.router.CurrentGeneration(app.TabNotifications, generation) {
				return
			}
			if err != nil {
				host.toastError("Notifications", err)

				return
			}
			applyPrefs()
		})
	}

	return &settingsTabView{content: box, load: load}
}
