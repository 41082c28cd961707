package ui

import (
	"context"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
	"drivego/internal/domain"
)

var themeOptions = []string{"system", "light", "dark"}

var sessionDurationOptions = []string{"1d", "7d", "30d", "90d"}

// newGeneralTab builds the profile panel: display name, avatar, appearance,
// session duration, logout, and account deletion.
func newGeneralTab(dep RuntimeDependencies, host *settingsWindow) *settingsTabView {
	account := dep.Controllers.Account

	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Display name")

	emailLabel := widget.NewLabel("")

	saveNameButton := widget.NewButton("Save", nil)
	saveNameButton.OnTapped = func() {
		saveNameButton.Disable()
		name := nameEntry.Text
		host.runAsync(func() error {
			return account.UpdateDisplayName(context.Background(), name)
		}, func(err error) {
			saveNameButton.Enable()
			if err != nil {
				host.toastError("Profile", err)

				return
			}
			host.toastSuccess("Profile", "Display name updated")
		})
	}

	avatarButton := widget.NewButton("Change avatar", func() {
		window := host.currentWindow()
		opener := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			defer func() {
				_ = reader.Close()
			}()
			image, err := io.ReadAll(reader)
			if err != nil {
				host.toastError("Avatar", err)

				return
			}
			filename := reader.URI().Name()
			host.runAsync(func() error {
				return account.UploadAvatar(context.Background(), filename, image)
			}, func(err error) {
				if err != nil {
					host.toastError("Avatar", err)

					return
				}
				host.toastSuccess("Avatar", "Avatar updated")
			})
		}, window)
		opener.Show()
	})

	themeSelect := widget.NewSelect(themeOptions, nil)
	themeSelect.OnChanged = func(value string) {
		host.runAsync(func() error {
			return account.UpdateTheme(context.Background(), value)
		}, func(err error) {
			if err != nil {
				host.toastError("Appearance", err)
			}
		})
	}

	durationSelect := widget.NewSelect(sessionDurationOptions, nil)
	durationSelect.OnChanged = func(value string) {
		host.runAsync(func() error {
			return account.UpdateSessionDuration(context.Background(), value)
		}, func(err error) {
			if err != nil {
				host.toastError("Session duration", err)
			}
		})
	}
	// Pre-hydration seed from the local mirror; the profile fetch overwrites
	// it once current server state arrives.
	if value, ok := account.MirroredSessionDuration(context.Background()); ok {
		durationSelect.Selected = value
	}

	logoutButton := widget.NewButton("Log out", func() {
		host.runAsync(func() error {
			return account.Logout(context.Background())
		}, func(err error) {
			if err != nil {
				host.toastError("Log out", err)

				return
			}
			if dep.Actions.OnLoggedOut != nil {
				dep.Actions.OnLoggedOut()
			}
		})
	})

	deleteDialog := newDeleteAccountDialog(dep, host)
	deleteButton := widget.NewButton("Delete account...", func() {
		deleteDialog.show(host.currentWindow())
	})
	deleteButton.Importance = widget.DangerImportance

	walletNotice := widget.NewLabel("This account is managed by an external wallet signer.")
	walletNotice.Hide()

	applyProfile := func(profile domain.Profile, known bool) {
		if !known {
			return
		}
		nameEntry.SetText(profile.DisplayName)
		emailLabel.SetText(profile.Email)
		// Seed the selects without firing OnChanged; only user picks should
		// issue network calls.
		if profile.Theme != "" {
			themeSelect.Selected = profile.Theme
			themeSelect.Refresh()
		}
		if profile.SessionDuration != "" {
			durationSelect.Selected = profile.SessionDuration
			durationSelect.Refresh()
		}
		if profile.WalletManaged() {
			walletNotice.Show()
		} else {
			walletNotice.Hide()
		}
	}

	content := container.NewVBox(
		widget.NewLabelWithStyle("Profile", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		emailLabel,
		walletNotice,
		container.NewBorder(nil, nil, nil, saveNameButton, nameEntry),
		avatarButton,
		widget.NewSeparator(),
		widget.NewForm(
			widget.NewFormItem("Appearance", themeSelect),
			widget.NewFormItem("Session duration", durationSelect),
		),
		widget.NewSeparator(),
		container.NewHBox(logoutButton, deleteButton),
	)

	load := func() {
		generation := host.router.NextGeneration(app.TabGeneral)
		host.runAsync(func() error {
			if dep.Actions.RefetchUser == nil {
				return nil
			}

			return dep.Actions.RefetchUser()
		}, func(err error) {
			if !host.router.CurrentGeneration(app.TabGeneral, generation) {
				return
			}
			if err != nil {
				host.toastError("Profile", err)

				return
			}
			if dep.Data.CurrentProfile != nil {
				profile, known := dep.Data.CurrentProfile()
				applyProfile(profile, known)
			}
		})
	}

	reset := func() {
		nameEntry.SetText("")
		deleteDialog.reset()
	}

	return &settingsTabView{content: content, load: load, reset: reset}
}
