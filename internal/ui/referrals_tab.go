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

// newReferralsTab builds the referral program panel: share link, progress
// toward the bonus cap, and the referral history.
func newReferralsTab(dep RuntimeDependencies, host *settingsWindow) *settingsTabView {
	referrals := dep.Controllers.Referrals

	linkLabel := widget.NewLabel("")
	linkLabel.Wrapping = fyne.TextWrapBreak

	copyButton := widget.NewButton("Copy link", nil)
	copyButton.OnTapped = func() {
		if dep.UIHooks.SetClipboard == nil {
			return
		}
		dep.UIHooks.SetClipboard(referrals.ShareLink())
		copyButton.SetText("Copied")
		time.AfterFunc(2*time.Second, func() {
			onUI := dep.UIHooks.RunOnUI
			if onUI == nil {
				onUI = fyne.Do
			}
			onUI(func() {
				copyButton.SetText("Copy link")
			})
		})
	}

	progressLabel := widget.NewLabel("")
	progressBar := widget.NewProgressBar()
	statsLabel := widget.NewLabel("")

	listBox := container.NewVBox()
	listPager := newPager(nil)
	listPager.setOnPage(func(delta int) {
		page := referrals.Info().Referrals.ClampPage(referrals.Info().Referrals.Page + delta)
		host.runAsync(func() error {
			return referrals.Load(context.Background(), page)
		}, func(err error) {
			if err != nil {
				host.toastError("Referrals", err)

				return
			}
			refreshReferralRows(referrals, listBox)
			paged := referrals.Info().Referrals
			listPager.update(paged.Page, paged.TotalPages)
		})
	})

	refresh := func() {
		info := referrals.Info()
		linkLabel.SetText(referrals.ShareLink())
		progressLabel.SetText(referrals.ProgressLabel())
		progressBar.SetValue(info.Stats.ProgressTowardCap())
		statsLabel.SetText(fmt.Sprintf("%d completed · %d pending · %s per referral",
			info.Stats.Completed, info.Stats.Pending, domain.FormatStorageSize(info.Stats.PerRefMB*1024*1024)))
		refreshReferralRows(referrals, listBox)
		listPager.update(info.Referrals.Page, info.Referrals.TotalPages)
	}

	content := container.NewVBox(
		widget.NewLabelWithStyle("Invite friends", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Share your link and both of you earn extra storage."),
		container.NewBorder(nil, nil, nil, copyButton, linkLabel),
		widget.NewSeparator(),
		progressLabel,
		progressBar,
		statsLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Your referrals", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		listBox,
		listPager.row,
	)

	load := func() {
		generation := host.router.NextGeneration(app.TabReferrals)
		host.runAsync(func() error {
			return referrals.Load(context.Background(), 1)
		}, func(err error) {
			if !host.router.CurrentGeneration(app.TabReferrals, generation) {
				return
			}
			if err != nil {
				host.toastError("Referrals", err)

				return
			}
			refresh()
		})
	}

	reset := func() {
		listBox.RemoveAll()
		copyButton.SetText("Copy link")
	}

	return &settingsTabView{content: content, load: load, reset: reset}
}

func refreshReferralRows(referrals *app.Referrals, box *fyne.Container) {
	box.RemoveAll()
	info := referrals.Info()
	if len(info.Referrals.Items) == 0 {
		box.Add(widget.NewLabel("No referrals yet."))
	}
	for _, referral := range info.Referrals.Items {
		label := widget.NewLabel(fmt.Sprintf("%s · %s", referral.ReferredName, referral.CreatedAt.Format(time.DateOnly)))
		status := widget.NewLabel("[" + string(referral.Status) + "]")
		status.Importance = badgeImportance(app.BadgeForReferral(referral.Status))
		box.Add(container.NewHBox(label, status))
	}
	box.Refresh()
}
