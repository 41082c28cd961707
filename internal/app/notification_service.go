package app

import (
	"context"
	"fmt"
	"log/slog"

	"drivego/internal/bus"
	"drivego/internal/notifications"
)

const notificationTitleUpdateAvailable = "Update available"

// NotificationService listens to bus events and emits desktop notifications
// when the main window is not in the foreground.
type NotificationService struct {
	bus          bus.MessageBus
	isForeground func() bool
	inAppEnabled func() bool
	sender       notifications.Sender
	logger       *slog.Logger
}

func NewNotificationService(
	messageBus bus.MessageBus,
	isForeground func() bool,
	inAppEnabled func() bool,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:          messageBus,
		isForeground: isForeground,
		inAppEnabled: inAppEnabled,
		sender:       sender,
		logger:       logger,
	}
}

func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	toastSub := s.bus.Subscribe(bus.TopicToast)
	updateSub := s.bus.Subscribe(bus.TopicUpdateSnapshot)

	go func() {
		defer s.bus.Unsubscribe(toastSub, bus.TopicToast)
		defer s.bus.Unsubscribe(updateSub, bus.TopicUpdateSnapshot)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-toastSub:
				if !ok {
					return
				}
				s.handleToast(msg)
			case msg, ok := <-updateSub:
				if !ok {
					return
				}
				s.handleUpdate(msg)
			}
		}
	}()
}

func (s *NotificationService) handleToast(msg any) {
	event, ok := msg.(ToastEvent)
	if !ok {
		s.logger.Warn("unexpected toast payload", "type", fmt.Sprintf("%T", msg))

		return
	}
	if s.inAppEnabled != nil && !s.inAppEnabled() {
		return
	}
	if s.isForeground != nil && s.isForeground() {
		return
	}

	s.sender.Send(notifications.Payload{Title: event.Title, Body: event.Message})
}

func (s *NotificationService) handleUpdate(msg any) {
	snapshot, ok := msg.(UpdateSnapshot)
	if !ok {
		s.logger.Warn("unexpected update payload", "type", fmt.Sprintf("%T", msg))

		return
	}
	if !snapshot.UpdateAvailable {
		return
	}

	s.sender.Send(notifications.Payload{
		Title: notificationTitleUpdateAvailable,
		Body:  fmt.Sprintf("Version %s is available (current %s)", snapshot.Latest.Version, snapshot.CurrentVersion),
	})
}
