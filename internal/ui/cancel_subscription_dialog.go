package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

var cancelReasons = []string{
	"Too expensive",
	"Not enough storage",
	"Missing features",
	"Switching to another service",
	"Other",
}

// showCancelSubscriptionDialog runs the two-phase cancellation. Phase one
// confirms and flips cancel-at-period-end; phase two collects optional
// feedback and may be skipped or fail without affecting the cancellation.
func showCancelSubscriptionDialog(host *settingsWindow, onCancelled func()) {
	billing := host.dep.Controllers.Billing

	host.showConfirm("Cancel subscription",
		"Your plan stays active until the end of the current billing period. Cancel anyway?",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			host.runAsync(func() error {
				return billing.Cancel(context.Background())
			}, func(err error) {
				if err != nil {
					host.toastError("Billing", err)

					return
				}
				host.toastSuccess("Billing", "Subscription cancelled")
				if onCancelled != nil {
					onCancelled()
				}
				showCancelFeedbackForm(host)
			})
		})
}

func showCancelFeedbackForm(host *settingsWindow) {
	billing := host.dep.Controllers.Billing

	reasonSelect := widget.NewSelect(cancelReasons, nil)
	detailsEntry := widget.NewMultiLineEntry()
	detailsEntry.SetPlaceHolder("Anything we could have done better? (optional)")

	items := []*widget.FormItem{
		widget.NewFormItem("Reason", reasonSelect),
		widget.NewFormItem("Details", detailsEntry),
	}
	form := dialog.NewForm("Help us improve", "Send", "Skip", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		reason := reasonSelect.Selected
		details := detailsEntry.Text
		host.runAsync(func() error {
			return billing.SubmitCancelFeedback(context.Background(), reason, details)
		}, func(err error) {
			if err != nil {
				host.toastError("Feedback", err)

				return
			}
			host.toastSuccess("Feedback", "Thanks for the feedback")
		})
	}, host.currentWindow())
	form.Resize(fyne.NewSize(420, 280))
	form.Show()
}
