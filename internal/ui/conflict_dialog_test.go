package ui

import (
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"drivego/internal/app"
)

func TestConflictDialogSequentialWalk(t *testing.T) {
	resolver := app.NewConflictResolver(
		[]app.ConflictItem{
			{Name: "report.pdf"},
			{Name: "photos", IsFolder: true},
		},
		[]string{"report.pdf", "photos"},
	)

	var done []app.ConflictResolution
	d := newConflictDialog(resolver, func(resolutions []app.ConflictResolution) {
		done = resolutions
	})
	_ = fynetest.NewTempWindow(t, d.content)

	if d.itemLabel.Text != `file "report.pdf"` {
		t.Fatalf("unexpected first item label: %q", d.itemLabel.Text)
	}
	if !d.applyAllCheck.Visible() {
		t.Fatalf("expected apply-to-all offered with conflicts remaining")
	}

	fynetest.Tap(mustFindButtonByText(t, d.content, "Keep both"))

	if done != nil {
		t.Fatalf("expected walk to continue after first choice")
	}
	if d.itemLabel.Text != `folder "photos"` {
		t.Fatalf("unexpected second item label: %q", d.itemLabel.Text)
	}
	if d.applyAllCheck.Visible() {
		t.Fatalf("expected apply-to-all hidden on the last conflict")
	}

	fynetest.Tap(mustFindButtonByText(t, d.content, "Skip"))

	if len(done) != 2 {
		t.Fatalf("expected two resolutions, got %d", len(done))
	}
	if done[0].Choice != app.ConflictRename || done[0].NewName != "report (1).pdf" {
		t.Fatalf("unexpected first resolution: %+v", done[0])
	}
	if done[1].Choice != app.ConflictSkip || done[1].NewName != "" {
		t.Fatalf("unexpected second resolution: %+v", done[1])
	}
}

func TestConflictDialogApplyToAll(t *testing.T) {
	resolver := app.NewConflictResolver(
		[]app.ConflictItem{
			{Name: "a.txt"},
			{Name: "b.txt"},
			{Name: "c.txt"},
		},
		[]string{"a.txt", "b.txt", "c.txt"},
	)

	var done []app.ConflictResolution
	d := newConflictDialog(resolver, func(resolutions []app.ConflictResolution) {
		done = resolutions
	})
	_ = fynetest.NewTempWindow(t, d.content)

	d.applyAllCheck.SetChecked(true)
	fynetest.Tap(mustFindButtonByText(t, d.content, "Replace"))

	if len(done) != 3 {
		t.Fatalf("expected all conflicts resolved at once, got %d", len(done))
	}
	for i, resolution := range done {
		if resolution.Choice != app.ConflictReplace {
			t.Fatalf("resolution %d: expected replace, got %q", i, resolution.Choice)
		}
	}
}
