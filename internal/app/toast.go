package app

import (
	"errors"
	"log/slog"

	"drivego/internal/api"
	"drivego/internal/bus"
)

// ToastLevel classifies a toast for presentation.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// ToastEvent is a transient outcome report shown to the user. Every operation
// in the settings surface reports through toasts; there are no persistent
// error banners.
type ToastEvent struct {
	Level   ToastLevel
	Title   string
	Message string
}

// Toaster publishes toast events on the message bus.
type Toaster struct {
	bus    bus.MessageBus
	logger *slog.Logger
}

func NewToaster(messageBus bus.MessageBus, logger *slog.Logger) *Toaster {
	if logger == nil {
		logger = slog.Default().With("component", "toast")
	}

	return &Toaster{bus: messageBus, logger: logger}
}

func (t *Toaster) Success(title, message string) {
	t.publish(ToastEvent{Level: ToastSuccess, Title: title, Message: message})
}

func (t *Toaster) Info(title, message string) {
	t.publish(ToastEvent{Level: ToastInfo, Title: title, Message: message})
}

func (t *Toaster) Error(title, message string) {
	t.publish(ToastEvent{Level: ToastError, Title: title, Message: message})
}

// ReportError surfaces a failed operation: server-reported messages verbatim,
// everything else as a generic failure (the details go to the log only).
func (t *Toaster) ReportError(title string, err error) {
	t.logger.Warn("operation failed", "title", title, "error", err)
	t.publish(ToastEvent{Level: ToastError, Title: title, Message: UserMessage(err)})
}

func (t *Toaster) publish(event ToastEvent) {
	if t == nil || t.bus == nil {
		return
	}
	t.bus.Publish(bus.TopicToast, event)
}

// UserMessage maps an error to the text shown in a toast. Server envelope
// errors carry their own message; transport and unexpected errors collapse to
// a generic string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return validationError.Message
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}

	return "Something went wrong, please try again"
}
