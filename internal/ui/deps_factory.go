package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	driveapp "drivego/internal/app"
)

// BuildRuntimeDependencies assembles the UI dependency set from a runtime.
func BuildRuntimeDependencies(rt *driveapp.Runtime, launch LaunchOptions, onQuit func()) RuntimeDependencies {
	dep := RuntimeDependencies{
		Launch: launch,
		Actions: ActionDependencies{
			OnQuit: onQuit,
		},
		UIHooks: defaultUIHooks(),
	}

	if rt == nil {
		return dep
	}

	dep.Data = DataDependencies{
		Config:         rt.Config,
		Bus:            rt.Bus,
		CurrentProfile: rt.Session.Current,
		DeviceLimit:    rt.Session.DeviceLimitReached,
	}
	dep.Controllers = ControllerDependencies{
		Account:         rt.Account,
		EmailChange:     rt.EmailChange,
		TOTP:            rt.TOTP,
		SecurityLists:   rt.SecurityLists,
		ActivityMonitor: rt.ActivityMonitor,
		Billing:         rt.Billing,
		Notifications:   rt.Notifications,
		Referrals:       rt.Referrals,
	}
	dep.Actions.Toaster = rt.Toaster
	dep.Actions.RefetchUser = func() error {
		return rt.Session.Refetch(rt.Ctx)
	}
	dep.Actions.StartNotifications = rt.StartNotifications
	dep.Actions.OnTabChanged = rt.RememberSettingsTab
	// The launch flag wins over the remembered tab.
	if dep.Launch.InitialTab == "" {
		dep.Launch.InitialTab = driveapp.SettingsTab(rt.Config.UI.LastSettingsTab)
	}

	return dep
}

func defaultUIHooks() UIHooks {
	return UIHooks{
		RunOnUI:  fyne.Do,
		RunAsync: func(fn func()) { go fn() },
		ShowError: func(err error, window fyne.Window) {
			dialog.ShowError(err, window)
		},
		ShowInfo: func(title, message string, window fyne.Window) {
			dialog.ShowInformation(title, message, window)
		},
		ShowConfirm: func(title, message string, callback func(confirmed bool), window fyne.Window) {
			dialog.ShowConfirm(title, message, callback, window)
		},
		SaveFile: saveFileDialog,
	}
}
