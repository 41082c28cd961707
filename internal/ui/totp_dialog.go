package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// totpDialog hosts two-factor enrollment and disable. Recovery codes are shown
// exactly once; closing the dialog wipes them.
type totpDialog struct {
	dep  RuntimeDependencies
	host *settingsWindow

	secretLabel   *widget.Label
	confirmEntry  *widget.Entry
	codesLabel    *widget.Label
	setupBox      *fyne.Container
	codesBox      *fyne.Container
	disableToken  *widget.Entry
	disableCode   *widget.Entry
	onStateChange func()

	popup dialog.Dialog
}

func newTOTPDialog(dep RuntimeDependencies, host *settingsWindow, onStateChange func()) *totpDialog {
	d := &totpDialog{dep: dep, host: host, onStateChange: onStateChange}

	d.secretLabel = widget.NewLabel("")
	d.secretLabel.Wrapping = fyne.TextWrapBreak
	d.confirmEntry = widget.NewEntry()
	d.confirmEntry.SetPlaceHolder("6-digit code from your authenticator app")
	d.codesLabel = widget.NewLabel("")

	confirmButton := widget.NewButton("Verify", d.confirm)
	d.setupBox = container.NewVBox(
		widget.NewLabel("Scan the QR code or enter the secret manually, then confirm with a code."),
		d.secretLabel,
		d.confirmEntry,
		confirmButton,
	)

	copyButton := widget.NewButton("Copy codes", func() {
		if d.dep.UIHooks.SetClipboard != nil {
			d.dep.UIHooks.SetClipboard(d.dep.Controllers.TOTP.RecoveryCodesText())
		}
	})
	downloadButton := widget.NewButton("Download codes", func() {
		if d.dep.UIHooks.SaveFile != nil {
			d.dep.UIHooks.SaveFile("recovery-codes.txt", []byte(d.dep.Controllers.TOTP.RecoveryCodesText()), d.host.currentWindow())
		}
	})
	d.codesBox = container.NewVBox(
		widget.NewLabelWithStyle("Recovery codes", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Each code works once. Save them now; they will not be shown again."),
		d.codesLabel,
		container.NewHBox(copyButton, downloadButton),
	)
	d.codesBox.Hide()

	d.disableToken = widget.NewEntry()
	d.disableToken.SetPlaceHolder("6-digit code")
	d.disableCode = widget.NewEntry()
	d.disableCode.SetPlaceHolder("8-character recovery code")

	return d
}

// showSetup begins enrollment and opens the wizard.
func (d *totpDialog) showSetup(window fyne.Window) {
	d.host.runAsync(func() error {
		_, err := d.dep.Controllers.TOTP.BeginSetup(context.Background())

		return err
	}, func(err error) {
		if err != nil {
			d.host.toastError("Two-factor", err)

			return
		}
		if enrollment, ok := d.dep.Controllers.TOTP.Enrollment(); ok {
			d.secretLabel.SetText("Secret: " + enrollment.Secret)
		}
		d.setupBox.Show()
		d.codesBox.Hide()

		content := container.NewVBox(d.setupBox, d.codesBox)
		d.popup = dialog.NewCustomConfirm("Set up two-factor authentication", "", "Close", content, func(bool) {
			d.close()
		}, window)
		d.popup.Resize(fyne.NewSize(420, 360))
		d.popup.Show()
	})
}

// showDisable opens the disable sub-flow.
func (d *totpDialog) showDisable(window fyne.Window) {
	items := []*widget.FormItem{
		widget.NewFormItem("Authenticator code", d.disableToken),
		widget.NewFormItem("Recovery code", d.disableCode),
	}
	form := dialog.NewForm("Disable two-factor authentication", "Disable", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			d.resetDisable()

			return
		}
		d.disable()
	}, window)
	form.Resize(fyne.NewSize(420, 240))
	form.Show()
}

func (d *totpDialog) confirm() {
	token := d.confirmEntry.Text
	d.host.runAsync(func() error {
		_, err := d.dep.Controllers.TOTP.ConfirmSetup(context.Background(), token)

		return err
	}, func(err error) {
		if err != nil {
			d.host.toastError("Two-factor", err)

			return
		}
		d.setupBox.Hide()
		d.codesLabel.SetText(d.dep.Controllers.TOTP.RecoveryCodesText())
		d.codesBox.Show()
		d.host.toastSuccess("Two-factor", "Two-factor authentication enabled")
		if d.onStateChange != nil {
			d.onStateChange()
		}
	})
}

func (d *totpDialog) disable() {
	token := d.disableToken.Text
	recoveryCode := d.disableCode.Text
	d.host.runAsync(func() error {
		return d.dep.Controllers.TOTP.Disable(context.Background(), token, recoveryCode)
	}, func(err error) {
		d.resetDisable()
		if err != nil {
			d.host.toastError("Two-factor", err)

			return
		}
		d.host.toastSuccess("Two-factor", "Two-factor authentication disabled")
		if d.onStateChange != nil {
			d.onStateChange()
		}
	})
}

// close wipes the wizard's secret material.
func (d *totpDialog) close() {
	d.dep.Controllers.TOTP.CloseWizard()
	d.confirmEntry.SetText("")
	d.secretLabel.SetText("")
	d.codesLabel.SetText("")
	if d.popup != nil {
		d.popup.Hide()
	}
}

func (d *totpDialog) resetDisable() {
	d.disableToken.SetText("")
	d.disableCode.SetText("")
}

func (d *totpDialog) reset() {
	d.close()
	d.resetDisable()
}
