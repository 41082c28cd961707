package ui

import (
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
	"drivego/internal/bus"
	"drivego/internal/domain"
)

var appLogger = slog.Default().With("component", "ui")

// Run builds the main window and blocks until the app quits.
func Run(dep RuntimeDependencies) error {
	fyApp := fyneapp.NewWithID(app.Name)
	window := fyApp.NewWindow(app.Name)
	window.Resize(fyne.NewSize(1000, 700))

	if dep.UIHooks.CurrentWindow == nil {
		dep.UIHooks.CurrentWindow = func() fyne.Window { return window }
	}
	if dep.UIHooks.SetClipboard == nil {
		dep.UIHooks.SetClipboard = func(text string) {
			fyApp.Clipboard().SetContent(text)
		}
	}
	if dep.Actions.OnOpenBrowser == nil {
		dep.Actions.OnOpenBrowser = func(rawURL string) error {
			parsed, err := url.Parse(rawURL)
			if err != nil {
				return err
			}

			return fyApp.OpenURL(parsed)
		}
	}

	var foreground atomic.Bool
	foreground.Store(!dep.Launch.StartHidden)
	fyApp.Lifecycle().SetOnEnteredForeground(func() { foreground.Store(true) })
	fyApp.Lifecycle().SetOnExitedForeground(func() { foreground.Store(false) })
	if dep.Actions.StartNotifications != nil {
		dep.Actions.StartNotifications(foreground.Load)
	}

	var shutdownOnce sync.Once
	quit := func() {
		shutdownOnce.Do(func() {
			if dep.Actions.OnQuit != nil {
				dep.Actions.OnQuit()
			}
			fyApp.Quit()
		})
	}

	// Without a valid token the app cannot run; a logout ends the process so
	// the next launch goes through sign-in.
	if dep.Actions.OnLoggedOut == nil {
		dep.Actions.OnLoggedOut = quit
	}

	settings := newSettingsWindow(dep)

	profileLabel := widget.NewLabel(profileLine(dep.Data.CurrentProfile))
	updateBanner := newUpdateBanner(dep)

	settingsButton := widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), func() {
		settings.Show(window)
	})
	quitButton := widget.NewButton("Quit", quit)

	header := container.NewBorder(nil, nil, profileLabel, container.NewHBox(settingsButton, quitButton))
	body := container.NewCenter(widget.NewLabel("Your files are in sync."))
	window.SetContent(container.NewBorder(container.NewVBox(header, updateBanner), nil, nil, nil, body))

	if dep.Data.Bus != nil {
		profileSub := dep.Data.Bus.Subscribe(bus.TopicProfileUpdated)
		go func() {
			for raw := range profileSub {
				profile, ok := raw.(domain.Profile)
				if !ok {
					continue
				}
				fyne.Do(func() {
					profileLabel.SetText(profileText(profile))
				})
			}
		}()

		routeSub := dep.Data.Bus.Subscribe(bus.TopicSettingsRoute)
		go func() {
			for raw := range routeSub {
				fragment, ok := raw.(string)
				if !ok {
					continue
				}
				fyne.Do(func() {
					if settings.window == nil {
						settings.Show(window)
					}
					settings.Navigate(fragment)
				})
			}
		}()

		startToastOverlay(dep.Data.Bus, dep.UIHooks)
	}

	closeToTray := dep.Data.Config.UI.CloseToTray
	if closeToTray {
		window.SetCloseIntercept(func() {
			window.Hide()
		})
	} else {
		window.SetCloseIntercept(func() {
			quit()
		})
	}
	configureSystemTray(fyApp, window, quit)

	if dep.Launch.OpenSettings {
		settings.Show(window)
	}

	if dep.Launch.StartHidden && closeToTray {
		fyApp.Run()

		return nil
	}

	window.Show()
	fyApp.Run()

	return nil
}

func configureSystemTray(fyApp fyne.App, window fyne.Window, quit func()) {
	desk, ok := fyApp.(desktop.App)
	if !ok {
		return
	}

	desk.SetSystemTrayMenu(fyne.NewMenu(app.Name,
		fyne.NewMenuItem("Show", func() {
			appLogger.Debug("system tray show action invoked")
			window.Show()
			window.RequestFocus()
		}),
		fyne.NewMenuItem("Quit", func() {
			appLogger.Debug("system tray quit action invoked")
			quit()
		}),
	))
}

// newUpdateBanner renders a hidden banner that appears when the update checker
// reports a newer release.
func newUpdateBanner(dep RuntimeDependencies) fyne.CanvasObject {
	label := widget.NewLabel("")
	banner := container.NewHBox(label)
	banner.Hide()

	if dep.Data.Bus == nil {
		return banner
	}

	sub := dep.Data.Bus.Subscribe(bus.TopicUpdateSnapshot)
	go func() {
		for raw := range sub {
			snapshot, ok := raw.(app.UpdateSnapshot)
			if !ok || !snapshot.UpdateAvailable {
				continue
			}
			fyne.Do(func() {
				label.SetText("Update available: " + snapshot.Latest.Version)
				banner.Show()
			})
		}
	}()

	return banner
}

func profileLine(current func() (domain.Profile, bool)) string {
	if current == nil {
		return ""
	}
	profile, known := current()
	if !known {
		return "Signing in..."
	}

	return profileText(profile)
}

func profileText(profile domain.Profile) string {
	if profile.DisplayName != "" {
		return profile.DisplayName + " · " + profile.Email
	}

	return profile.Email
}
