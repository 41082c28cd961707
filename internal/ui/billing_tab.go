package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/api"
	"drivego/internal/app"
	"drivego/internal/domain"
)

// newBillingTab builds the subscription panel: plan card, storage gauge,
// cancellation, payment portal, and the two history tables.
func newBillingTab(dep RuntimeDependencies, host *settingsWindow) *settingsTabView {
	billing := dep.Controllers.Billing

	planLabel := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	badgeLabel := widget.NewLabel("")
	periodLabel := widget.NewLabel("")

	usageBar := widget.NewProgressBar()
	usageLabel := widget.NewLabel("")

	cancelButton := widget.NewButton("Cancel subscription", nil)
	cancelButton.Importance = widget.DangerImportance
	portalButton := widget.NewButton("Manage billing", func() {
		host.runAsync(func() error {
			url, err := billing.PortalURL(context.Background())
			if err != nil {
				return err
			}
			if dep.Actions.OnOpenBrowser != nil {
				return dep.Actions.OnOpenBrowser(url)
			}

			return nil
		}, func(err error) {
			if err != nil {
				host.toastError("Billing", err)
			}
		})
	})

	plansBox := container.NewVBox()

	subsBox := container.NewVBox()
	invoicesBox := container.NewVBox()

	refreshCard := func() {
		status := billing.Status()
		planLabel.SetText(billing.PlanName())
		periodLabel.SetText(billing.PeriodLabel())
		if status.Subscription != nil {
			badgeLabel.SetText("[" + string(status.Subscription.Status) + "]")
			badgeLabel.Importance = badgeImportance(app.BadgeForStatus(status.Subscription.Status))
			badgeLabel.Refresh()
			if status.Subscription.CancelAtPeriodEnd || status.Subscription.Status == domain.SubscriptionCanceled {
				cancelButton.Disable()
			} else {
				cancelButton.Enable()
			}
			cancelButton.Show()
		} else {
			badgeLabel.SetText("")
			cancelButton.Hide()
		}

		pct := status.Usage.PercentUsed()
		usageBar.SetValue(pct / 100)
		usageLabel.SetText(usageSummaryLine(billing, pct))
	}

	refreshPlans := func() {
		plansBox.RemoveAll()
		for _, plan := range billing.Plans() {
			plansBox.Add(widget.NewLabel(pricingPlanLine(plan)))
		}
		plansBox.Refresh()
	}

	subsPager := newPager(nil)
	invoicesPager := newPager(nil)

	refreshHistory := func() {
		history := billing.History()

		subsBox.RemoveAll()
		if len(history.Subscriptions.Items) == 0 {
			subsBox.Add(widget.NewLabel("No past subscriptions."))
		}
		for _, record := range history.Subscriptions.Items {
			subsBox.Add(widget.NewLabel(subscriptionRecordLine(record)))
		}
		subsBox.Refresh()
		subsPager.update(history.Subscriptions.Page, history.Subscriptions.TotalPages)

		invoicesBox.RemoveAll()
		if len(history.Invoices.Items) == 0 {
			invoicesBox.Add(widget.NewLabel("No invoices yet."))
		}
		for _, invoice := range history.Invoices.Items {
			invoicesBox.Add(invoiceRow(dep, host, invoice))
		}
		invoicesBox.Refresh()
		invoicesPager.update(history.Invoices.Page, history.Invoices.TotalPages)
	}

	// The two history tables page independently against the same endpoint.
	loadHistory := func(subDelta, invDelta int) {
		history := billing.History()
		subPage := history.Subscriptions.ClampPage(history.Subscriptions.Page + subDelta)
		invPage := history.Invoices.ClampPage(history.Invoices.Page + invDelta)
		host.runAsync(func() error {
			return billing.LoadHistory(context.Background(), subPage, invPage)
		}, func(err error) {
			if err != nil {
				host.toastError("Billing history", err)

				return
			}
			refreshHistory()
		})
	}
	subsPager.setOnPage(func(delta int) { loadHistory(delta, 0) })
	invoicesPager.setOnPage(func(delta int) { loadHistory(0, delta) })

	cancelButton.OnTapped = func() {
		showCancelSubscriptionDialog(host, refreshCard)
	}

	content := container.NewVBox(
		widget.NewLabelWithStyle("Current plan", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(planLabel, badgeLabel),
		periodLabel,
		usageBar,
		usageLabel,
		container.NewHBox(cancelButton, portalButton),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Available plans", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		plansBox,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Subscription history", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		subsBox,
		subsPager.row,
		widget.NewLabelWithStyle("Invoices", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		invoicesBox,
		invoicesPager.row,
	)

	load := func() {
		generation := host.router.NextGeneration(app.TabBilling)
		host.runAsync(func() error {
			if err := billing.LoadStatus(context.Background()); err != nil {
				return err
			}
			if err := billing.LoadPlans(context.Background()); err != nil {
				return err
			}

			return billing.LoadHistory(context.Background(), 1, 1)
		}, func(err error) {
			if !host.router.CurrentGeneration(app.TabBilling, generation) {
				return
			}
			if err != nil {
				host.toastError("Billing", err)
			}
			refreshCard()
			refreshPlans()
			refreshHistory()
		})
	}

	reset := func() {
		subsBox.RemoveAll()
		invoicesBox.RemoveAll()
		plansBox.RemoveAll()
	}

	return &settingsTabView{content: content, load: load, reset: reset}
}

// badgeImportance maps the status badge color to a label accent.
func badgeImportance(color app.BadgeColor) widget.Importance {
	switch color {
	case app.BadgeGreen:
		return widget.SuccessImportance
	case app.BadgeBlue:
		return widget.HighImportance
	case app.BadgeYellow:
		return widget.WarningImportance
	case app.BadgeRed:
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}

func usageSummaryLine(billing *app.Billing, pct float64) string {
	line := billing.UsageSummary()
	switch domain.BandForPercent(pct) {
	case domain.UsageBandCritical:
		line += " · storage almost full"
	case domain.UsageBandWarning:
		line += " · running low on storage"
	}

	return line
}

func pricingPlanLine(plan api.PricingPlan) string {
	price := fmt.Sprintf("%.2f %s/month", float64(plan.PriceCents)/100, plan.Currency)

	return fmt.Sprintf("%s · %s · %s", plan.Name, domain.FormatStorageSize(plan.QuotaBytes), price)
}

func subscriptionRecordLine(record domain.SubscriptionRecord) string {
	line := fmt.Sprintf("%s · %s · started %s", record.PlanName, record.Status, record.StartedAt.Format(time.DateOnly))
	if !record.EndedAt.IsZero() {
		line += " · ended " + record.EndedAt.Format(time.DateOnly)
	}

	return line
}

func invoiceRow(dep RuntimeDependencies, host *settingsWindow, invoice domain.Invoice) fyne.CanvasObject {
	amount := fmt.Sprintf("%.2f %s", float64(invoice.AmountCents)/100, invoice.Currency)
	label := widget.NewLabel(fmt.Sprintf("%s · %s · %s", invoice.IssuedAt.Format(time.DateOnly), amount, invoice.Status))
	if invoice.PDFURL == "" {
		return label
	}
	open := widget.NewButton("PDF", func() {
		if dep.Actions.OnOpenBrowser == nil {
			return
		}
		if err := dep.Actions.OnOpenBrowser(invoice.PDFURL); err != nil {
			host.toastError("Invoice", err)
		}
	})

	return container.NewBorder(nil, nil, nil, open, label)
}
