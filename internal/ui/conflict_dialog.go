package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
)

// conflictDialog walks a batch of naming collisions one item at a time.
// "Apply to all" stamps the chosen action on every remaining item.
type conflictDialog struct {
	resolver *app.ConflictResolver
	onDone   func([]app.ConflictResolution)

	content        fyne.CanvasObject
	itemLabel      *widget.Label
	remainingLabel *widget.Label
	applyAllCheck  *widget.Check
}

func newConflictDialog(resolver *app.ConflictResolver, onDone func([]app.ConflictResolution)) *conflictDialog {
	d := &conflictDialog{
		resolver:       resolver,
		onDone:         onDone,
		itemLabel:      widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		remainingLabel: widget.NewLabel(""),
		applyAllCheck:  widget.NewCheck("Apply to all remaining conflicts", nil),
	}

	renameButton := widget.NewButton("Keep both", func() { d.choose(app.ConflictRename) })
	replaceButton := widget.NewButton("Replace", func() { d.choose(app.ConflictReplace) })
	skipButton := widget.NewButton("Skip", func() { d.choose(app.ConflictSkip) })

	d.content = container.NewVBox(
		d.itemLabel,
		d.remainingLabel,
		widget.NewLabel("An item with this name already exists in the destination."),
		container.NewHBox(renameButton, replaceButton, skipButton),
		d.applyAllCheck,
	)
	d.refresh()

	return d
}

func (d *conflictDialog) choose(choice app.ConflictChoice) {
	d.resolver.Resolve(choice, d.applyAllCheck.Checked)
	if d.resolver.Done() {
		if d.onDone != nil {
			d.onDone(d.resolver.Resolutions())
		}

		return
	}
	d.refresh()
}

func (d *conflictDialog) refresh() {
	item, ok := d.resolver.Current()
	if !ok {
		return
	}
	kind := "file"
	if item.IsFolder {
		kind = "folder"
	}
	d.itemLabel.SetText(fmt.Sprintf("%s %q", kind, item.Name))
	remaining := d.resolver.Remaining()
	if remaining > 1 {
		d.remainingLabel.SetText(fmt.Sprintf("%d conflicts remaining", remaining))
		d.remainingLabel.Show()
		d.applyAllCheck.Show()
	} else {
		d.remainingLabel.Hide()
		d.applyAllCheck.Hide()
	}
}
