package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drivego/internal/app"
)

// settingsWindow hosts the five tab panels behind the settings router. Tabs
// load lazily, once per open-session; closing resets every panel's form state.
type settingsWindow struct {
	dep       RuntimeDependencies
	router    *app.Router
	navigator *appNavigator

	window fyne.Window
	tabs   map[app.SettingsTab]*settingsTabView
	stack  *fyne.Container
	nav    map[app.SettingsTab]*widget.Button

	// Set by the security tab so that revocations and pref changes triggered
	// anywhere in the panel re-render its lists.
	refreshSecurityLists  func()
	refreshSecurityEvents func()
}

// settingsTabView pairs a tab's content with its lazy loader and reset hook.
type settingsTabView struct {
	content fyne.CanvasObject
	load    func()
	reset   func()
}

func newSettingsWindow(dep RuntimeDependencies) *settingsWindow {
	s := &settingsWindow{
		dep:       dep,
		navigator: newAppNavigator(),
		tabs:      make(map[app.SettingsTab]*settingsTabView),
		nav:       make(map[app.SettingsTab]*widget.Button),
	}

	s.tabs[app.TabGeneral] = newGeneralTab(dep, s)
	s.tabs[app.TabSecurity] = newSecurityTab(dep, s)
	s.tabs[app.TabBilling] = newBillingTab(dep, s)
	s.tabs[app.TabNotifications] = newNotificationsTab(dep, s)
	s.tabs[app.TabReferrals] = newReferralsTab(dep, s)

	loaders := make(map[app.SettingsTab]func(), len(s.tabs))
	for tab, view := range s.tabs {
		if view.load != nil {
			loaders[tab] = view.load
		}
	}

	s.router = app.NewRouter(app.RouterConfig{
		Navigator:          s.navigator,
		InitialTab:         dep.Launch.InitialTab,
		DeviceLimitReached: dep.Data.DeviceLimit,
		Loaders:            loaders,
		OnOpenChanged:      s.onOpenChanged,
		OnActiveChanged:    s.onActiveChanged,
	})
	for _, view := range s.tabs {
		if view.reset != nil {
			s.router.OnClose(view.reset)
		}
	}
	s.navigator.setOnChange(s.router.HandleFragmentChange)

	return s
}

// Show opens the settings window, creating it on first use.
func (s *settingsWindow) Show(parent fyne.Window) {
	if s.window == nil {
		s.window = fyne.CurrentApp().NewWindow("Settings")
		s.window.Resize(fyne.NewSize(820, 600))
		s.window.SetContent(s.buildContent())
		s.window.SetCloseIntercept(func() {
			s.router.Close()
		})
	}

	s.router.Open()
}

// Router exposes the orchestrator for deep links and tests.
func (s *settingsWindow) Router() *app.Router {
	return s.router
}

// Navigate handles an external settings link, e.g. from a notification.
func (s *settingsWindow) Navigate(fragment string) {
	s.navigator.Navigate(fragment)
}

func (s *settingsWindow) buildContent() fyne.CanvasObject {
	s.stack = container.NewStack()
	for _, info := range app.TabRegistry() {
		view := s.tabs[info.ID]
		s.stack.Add(view.content)
		view.content.Hide()
	}

	navBox := container.NewVBox()
	for _, info := range app.TabRegistry() {
		tab := info.ID
		button := widget.NewButton(info.Title, func() {
			s.router.Activate(tab)
		})
		s.nav[tab] = button
		navBox.Add(button)
	}

	return container.NewBorder(nil, nil, navBox, nil, s.stack)
}

func (s *settingsWindow) onOpenChanged(open bool) {
	if s.window == nil {
		return
	}
	if open {
		s.refreshNavState()
		s.window.Show()
		s.window.RequestFocus()

		return
	}
	s.window.Hide()
}

func (s *settingsWindow) onActiveChanged(active app.SettingsTab) {
	if s.stack != nil {
		for tab, view := range s.tabs {
			if tab == active {
				view.content.Show()
			} else {
				view.content.Hide()
			}
		}
		s.stack.Refresh()
	}
	s.refreshNavState()
	if s.dep.Actions.OnTabChanged != nil {
		s.dep.Actions.OnTabChanged(active)
	}
}

// refreshNavState re-applies the device-limit gate to the tab buttons.
func (s *settingsWindow) refreshNavState() {
	for tab, button := range s.nav {
		if s.router.TabEnabled(tab) {
			button.Enable()
		} else {
			button.Disable()
		}
	}
}

// toastError reports a failed operation through the shared toaster.
func (s *settingsWindow) toastError(title string, err error) {
	if s.dep.Actions.Toaster != nil {
		s.dep.Actions.Toaster.ReportError(title, err)
	}
}

func (s *settingsWindow) toastSuccess(title, message string) {
	if s.dep.Actions.Toaster != nil {
		s.dep.Actions.Toaster.Success(title, message)
	}
}

// showConfirm asks a yes/no question through the injected hook so tests can
// answer without a real dialog.
func (s *settingsWindow) showConfirm(title, message string, callback func(bool)) {
	if s.dep.UIHooks.ShowConfirm != nil {
		s.dep.UIHooks.ShowConfirm(title, message, callback, s.currentWindow())

		return
	}
	callback(true)
}

// showUpsell surfaces a plan-gated feature as an upgrade prompt.
func (s *settingsWindow) showUpsell(gate *app.PlanGateError) {
	message := gate.Error()
	if s.dep.UIHooks.ShowInfo != nil {
		s.dep.UIHooks.ShowInfo("Upgrade required", message, s.currentWindow())

		return
	}
	s.toastSuccess("Upgrade required", message)
}

func (s *settingsWindow) currentWindow() fyne.Window {
	if s.window != nil {
		return s.window
	}
	if s.dep.UIHooks.CurrentWindow != nil {
		return s.dep.UIHooks.CurrentWindow()
	}

	return nil
}

// runAsync executes a blocking operation off the UI goroutine and delivers the
// result back on it.
func (s *settingsWindow) runAsync(op func() error, done func(err error)) {
	run := s.dep.UIHooks.RunAsync
	if run == nil {
		run = func(fn func()) { go fn() }
	}
	onUI := s.dep.UIHooks.RunOnUI
	if onUI == nil {
		onUI = fyne.Do
	}

	run(func() {
		err := op()
		onUI(func() {
			done(err)
		})
	})
}
