package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
)

// emailChangeDialog walks the OTP-gated email-change wizard: credentials
// first, then the 6-digit code sent to the new address.
type emailChangeDialog struct {
	dep  RuntimeDependencies
	host *settingsWindow

	newEmailEntry     *widget.Entry
	confirmEmailEntry *widget.Entry
	passwordEntry     *widget.Entry
	otpEntry          *widget.Entry
	stepLabel         *widget.Label

	credentialsBox *fyne.Container
	otpBox         *fyne.Container

	popup dialog.Dialog
}

func newEmailChangeDialog(dep RuntimeDependencies, host *settingsWindow) *emailChangeDialog {
	d := &emailChangeDialog{dep: dep, host: host}

	d.newEmailEntry = widget.NewEntry()
	d.newEmailEntry.SetPlaceHolder("New email address")
	d.confirmEmailEntry = widget.NewEntry()
	d.confirmEmailEntry.SetPlaceHolder("Confirm new email address")
	d.passwordEntry = widget.NewPasswordEntry()
	d.passwordEntry.SetPlaceHolder("Current password")
	d.otpEntry = widget.NewEntry()
	d.otpEntry.SetPlaceHolder("6-digit code")
	d.stepLabel = widget.NewLabel("")

	submitCredentials := widget.NewButton("Continue", d.submitCredentials)
	d.credentialsBox = container.NewVBox(
		d.newEmailEntry,
		d.confirmEmailEntry,
		d.passwordEntry,
		submitCredentials,
	)

	verifyButton := widget.NewButton("Verify", d.submitOTP)
	resendButton := widget.NewButton("Resend code", d.resend)
	d.otpBox = container.NewVBox(
		widget.NewLabel("Enter the code we sent to your new address."),
		d.otpEntry,
		container.NewHBox(verifyButton, resendButton),
	)
	d.otpBox.Hide()

	return d
}

func (d *emailChangeDialog) show(window fyne.Window) {
	d.applyStep()
	content := container.NewVBox(d.stepLabel, d.credentialsBox, d.otpBox)
	d.popup = dialog.NewCustomConfirm("Change email", "", "Cancel", content, func(bool) {
		d.cancel()
	}, window)
	d.popup.Resize(fyne.NewSize(400, 300))
	d.popup.Show()
}

func (d *emailChangeDialog) submitCredentials() {
	currentEmail := ""
	if d.dep.Data.CurrentProfile != nil {
		if profile, known := d.dep.Data.CurrentProfile(); known {
			currentEmail = profile.Email
		}
	}
	newEmail := d.newEmailEntry.Text
	confirmEmail := d.confirmEmailEntry.Text
	password := d.passwordEntry.Text

	d.host.runAsync(func() error {
		return d.dep.Controllers.EmailChange.SubmitCredentials(context.Background(), currentEmail, newEmail, confirmEmail, password)
	}, func(err error) {
		if err != nil {
			d.host.toastError("Change email", err)

			return
		}
		d.applyStep()
	})
}

func (d *emailChangeDialog) submitOTP() {
	otp := d.otpEntry.Text
	d.host.runAsync(func() error {
		return d.dep.Controllers.EmailChange.SubmitOTP(context.Background(), otp)
	}, func(err error) {
		if err != nil {
			d.host.toastError("Change email", err)

			return
		}
		d.host.toastSuccess("Change email", "Email updated, please sign in again")
		d.hide()
		d.reset()
		if d.dep.Actions.OnLoggedOut != nil {
			d.dep.Actions.OnLoggedOut()
		}
	})
}

func (d *emailChangeDialog) resend() {
	d.host.runAsync(func() error {
		return d.dep.Controllers.EmailChange.ResendOTP(context.Background())
	}, func(err error) {
		if err != nil {
			d.host.toastError("Change email", err)

			return
		}
		d.host.toastSuccess("Change email", "A new code is on its way")
	})
}

func (d *emailChangeDialog) cancel() {
	d.dep.Controllers.EmailChange.Cancel()
	d.hide()
	d.reset()
}

func (d *emailChangeDialog) applyStep() {
	switch d.dep.Controllers.EmailChange.Step() {
	case app.EmailStepOTP:
		d.stepLabel.SetText("Step 2 of 2")
		d.credentialsBox.Hide()
		d.otpBox.Show()
	default:
		d.stepLabel.SetText("Step 1 of 2")
		d.credentialsBox.Show()
		d.otpBox.Hide()
	}
}

func (d *emailChangeDialog) hide() {
	if d.popup != nil {
		d.popup.Hide()
	}
}

func (d *emailChangeDialog) reset() {
	d.newEmailEntry.SetText("")
	d.confirmEmailEntry.SetText("")
	d.passwordEntry.SetText("")
	d.otpEntry.SetText("")
	d.applyStep()
}
