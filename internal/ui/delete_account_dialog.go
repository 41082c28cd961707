package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
)

var deleteReasons = []string{
	"No longer needed",
	"Too expensive",
	"Missing features",
	"Privacy concerns",
	"Other",
}

// deleteAccountDialog collects the typed confirmation and reason before the
// irreversible account removal.
type deleteAccountDialog struct {
	dep  RuntimeDependencies
	host *settingsWindow

	reasonSelect      *widget.Select
	detailsEntry      *widget.Entry
	confirmationEntry *widget.Entry
}

func newDeleteAccountDialog(dep RuntimeDependencies, host *settingsWindow) *deleteAccountDialog {
	d := &deleteAccountDialog{dep: dep, host: host}

	d.reasonSelect = widget.NewSelect(deleteReasons, nil)
	d.detailsEntry = widget.NewMultiLineEntry()
	d.detailsEntry.SetPlaceHolder("Anything else you want to tell us (optional)")
	d.confirmationEntry = widget.NewEntry()
	d.confirmationEntry.SetPlaceHolder("Type DELETE to confirm")

	return d
}

func (d *deleteAccountDialog) show(window fyne.Window) {
	items := []*widget.FormItem{
		widget.NewFormItem("Reason", d.reasonSelect),
		widget.NewFormItem("Details", d.detailsEntry),
		widget.NewFormItem("Confirmation", d.confirmationEntry),
	}

	form := dialog.NewForm("Delete account", "Delete forever", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			d.reset()

			return
		}
		d.submit()
	}, window)
	form.Resize(fyne.NewSize(420, 320))
	form.Show()
}

func (d *deleteAccountDialog) submit() {
	confirmation := d.confirmationEntry.Text
	reason := d.reasonSelect.Selected
	details := d.detailsEntry.Text

	if err := app.ValidateDeleteAccount(confirmation, reason); err != nil {
		d.host.toastError("Delete account", err)

		return
	}

	d.host.runAsync(func() error {
		return d.dep.Controllers.Account.DeleteAccount(context.Background(), confirmation, reason, details)
	}, func(err error) {
		if err != nil {
			d.host.toastError("Delete account", err)

			return
		}
		d.reset()
		if d.dep.Actions.OnLoggedOut != nil {
			d.dep.Actions.OnLoggedOut()
		}
	})
}

func (d *deleteAccountDialog) reset() {
	d.reasonSelect.ClearSelected()
	d.detailsEntry.SetText("")
	d.confirmationEntry.SetText("")
}
