package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
	"drivego/internal/bus"
)

const toastDuration = 3 * time.Second

// startToastOverlay relays bus toast events to transient popups in the
// current window.
func startToastOverlay(messageBus bus.MessageBus, hooks UIHooks) {
	sub := messageBus.Subscribe(bus.TopicToast)
	go func() {
		for raw := range sub {
			event, ok := raw.(app.ToastEvent)
			if !ok {
				continue
			}
			fyne.Do(func() {
				showToast(event, hooks)
			})
		}
	}()
}

func showToast(event app.ToastEvent, hooks UIHooks) {
	if hooks.CurrentWindow == nil {
		return
	}
	window := hooks.CurrentWindow()
	if window == nil {
		return
	}

	label := widget.NewLabel(toastText(event))
	popup := widget.NewPopUp(label, window.Canvas())

	canvasSize := window.Canvas().Size()
	popupSize := popup.MinSize()
	popup.ShowAtPosition(fyne.NewPos(
		(canvasSize.Width-popupSize.Width)/2,
		canvasSize.Height-popupSize.Height-20,
	))

	time.AfterFunc(toastDuration, func() {
		fyne.Do(popup.Hide)
	})
}

func toastText(event app.ToastEvent) string {
	if event.Title == "" {
		return event.Message
	}
	if event.Message == "" {
		return event.Title
	}

	return event.Title + ": " + event.Message
}
