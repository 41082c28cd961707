package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
	"drivego/internal/domain"
)

// permanentDeleteDialog confirms an irreversible trash purge. The typed
// confirmation phrase is required before the batch is sent.
type permanentDeleteDialog struct {
	host  *settingsWindow
	purge *app.PermanentDelete

	content      fyne.CanvasObject
	confirmEntry *widget.Entry
}

func newPermanentDeleteDialog(host *settingsWindow, purge *app.PermanentDelete) *permanentDeleteDialog {
	d := &permanentDeleteDialog{host: host, purge: purge}

	summary := widget.NewLabel(purge.SummaryLabel())
	summary.Wrapping = fyne.TextWrapWord

	itemsBox := container.NewVBox()
	for _, item := range purge.Items() {
		itemsBox.Add(widget.NewLabel(item.Name + " · " + domain.FormatStorageSize(item.Size)))
	}

	d.confirmEntry = widget.NewEntry()
	d.confirmEntry.SetPlaceHolder("Type DELETE to confirm")

	warning := widget.NewLabel("This cannot be undone. The items are removed from the server immediately.")
	warning.Importance = widget.DangerImportance

	d.content = container.NewVBox(summary, itemsBox, warning, d.confirmEntry)

	return d
}

func (d *permanentDeleteDialog) submit() {
	confirmation := d.confirmEntry.Text
	if err := d.purge.Validate(confirmation); err != nil {
		d.host.toastError("Delete", err)

		return
	}
	d.host.runAsync(func() error {
		return d.purge.Execute(context.Background(), confirmation)
	}, func(err error) {
		if err != nil {
			d.host.toastError("Delete", err)

			return
		}
		d.host.toastSuccess("Delete", "Items permanently deleted")
	})
}
