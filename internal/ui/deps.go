package ui

import (
	"fyne.io/fyne/v2"

	"drivego/internal/app"
	"drivego/internal/bus"
	"drivego/internal/config"
	"drivego/internal/domain"
)

// DataDependencies carries the read side of the UI: configuration, the message
// bus, and the session snapshot.
type DataDependencies struct {
	Config         config.AppConfig
	Bus            bus.MessageBus
	CurrentProfile func() (domain.Profile, bool)
	DeviceLimit    func() bool
}

// ControllerDependencies carries the per-panel controllers the settings window
// binds to.
type ControllerDependencies struct {
	Account         *app.Account
	EmailChange     *app.EmailChangeWizard
	TOTP            *app.TOTPWizard
	SecurityLists   *app.SecurityLists
	ActivityMonitor *app.ActivityMonitor
	Billing         *app.Billing
	Notifications   *app.NotificationSettings
	Referrals       *app.Referrals
}

// ActionDependencies carries the write side: callbacks into the runtime.
type ActionDependencies struct {
	Toaster     *app.Toaster
	RefetchUser func() error
	// StartNotifications begins relaying bus events to desktop notifications
	// once the UI can report whether it is in the foreground.
	StartNotifications func(isForeground func() bool)
	OnTabChanged       func(tab app.SettingsTab)
	OnLoggedOut        func()
	OnOpenBrowser      func(rawURL string) error
	OnQuit             func()
}

// UIHooks abstracts fyne surfaces so panel logic is testable without a real
// driver.
type UIHooks struct {
	CurrentWindow func() fyne.Window
	RunOnUI       func(func())
	RunAsync      func(func())
	ShowError     func(err error, window fyne.Window)
	ShowInfo      func(title, message string, window fyne.Window)
	ShowConfirm   func(title, message string, callback func(confirmed bool), window fyne.Window)
	SaveFile      func(filename string, data []byte, window fyne.Window)
	SetClipboard  func(text string)
}

// LaunchOptions tweaks startup behavior.
type LaunchOptions struct {
	StartHidden bool
	// OpenSettings opens the settings window immediately after startup,
	// landing on InitialTab.
	OpenSettings bool
	InitialTab   app.SettingsTab
}

// RuntimeDependencies is everything the UI layer needs, injected by cmd/gui.
type RuntimeDependencies struct {
	Data        DataDependencies
	Controllers ControllerDependencies
	Actions     ActionDependencies
	UIHooks     UIHooks
	Launch      LaunchOptions
}
