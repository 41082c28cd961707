package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// saveFileDialog writes exported data through the platform save dialog.
func saveFileDialog(filename string, data []byte, window fyne.Window) {
	saver := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer func() {
			_ = writer.Close()
		}()
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(fmt.Errorf("save file: %w", err), window)
		}
	}, window)
	saver.SetFileName(filename)
	saver.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".txt"}))
	saver.Show()
}

// pager is a prev/next control pair under a paginated list.
type pager struct {
	row    *fyne.Container
	label  *widget.Label
	prev   *widget.Button
	next   *widget.Button
	onPage func(delta int)
}

func newPager(onPage func(delta int)) *pager {
	p := &pager{label: widget.NewLabel(""), onPage: onPage}
	p.prev = widget.NewButton("Previous", func() { p.page(-1) })
	p.next = widget.NewButton("Next", func() { p.page(1) })
	p.row = container.NewHBox(p.prev, p.label, p.next)

	return p
}

func (p *pager) setOnPage(onPage func(delta int)) {
	p.onPage = onPage
}

func (p *pager) page(delta int) {
	if p.onPage != nil {
		p.onPage(delta)
	}
}

// update refreshes the pager for a page position.
func (p *pager) update(page, totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	p.label.SetText(fmt.Sprintf("Page %d of %d", page, totalPages))
	if page <= 1 {
		p.prev.Disable()
	} else {
		p.prev.Enable()
	}
	if page >= totalPages {
		p.next.Disable()
	} else {
		p.next.Enable()
	}
}
