package app

import (
	"strings"
	"sync"
)

// SettingsTab identifies one tab panel of the settings window.
type SettingsTab string

const (
	TabGeneral       SettingsTab = "general"
	TabSecurity      SettingsTab = "security"
	TabBilling       SettingsTab = "billing"
	TabNotifications SettingsTab = "notifications"
	TabReferrals     SettingsTab = "referrals"

	fragmentPrefix = "#settings"
)

// TabInfo is one entry of the fixed tab registry.
type TabInfo struct {
	ID    SettingsTab
	Title string
}

var tabRegistry = []TabInfo{
	{ID: TabGeneral, Title: "General"},
	{ID: TabSecurity, Title: "Security"},
	{ID: TabBilling, Title: "Billing"},
	{ID: TabNotifications, Title: "Notifications"},
	{ID: TabReferrals, Title: "Referrals"},
}

// TabRegistry returns the settings tabs in display order.
func TabRegistry() []TabInfo {
	out := make([]TabInfo, len(tabRegistry))
	copy(out, tabRegistry)

	return out
}

// DefaultTab is the fallback when neither fragment nor caller names a tab.
func DefaultTab() SettingsTab {
	return tabRegistry[0].ID
}

// Navigator abstracts the URL-fragment surface so routing logic runs without a
// browser. The desktop build persists the fragment in app state; tests inject
// a fake.
type Navigator interface {
	Fragment() string
	SetFragment(fragment string)
}

// SettingsRoute is a parsed `#settings` fragment.
type SettingsRoute struct {
	Open bool
	Tab  SettingsTab
	// TabNamed reports whether the fragment carried an explicit tab segment.
	TabNamed bool
}

// ParseRoute interprets a URL fragment against the tab registry. The tab
// segment matches either the tab id or its display title, case-insensitively;
// an unrecognized segment falls back to the first registered tab.
func ParseRoute(fragment string) SettingsRoute {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return SettingsRoute{}
	}
	if !strings.EqualFold(trimmed, fragmentPrefix) &&
		!strings.HasPrefix(strings.ToLower(trimmed), fragmentPrefix+"/") {
		return SettingsRoute{}
	}
	if strings.EqualFold(trimmed, fragmentPrefix) {
		return SettingsRoute{Open: true, Tab: DefaultTab()}
	}

	segment := trimmed[len(fragmentPrefix)+1:]
	for _, info := range tabRegistry {
		if strings.EqualFold(segment, string(info.ID)) || strings.EqualFold(segment, info.Title) {
			return SettingsRoute{Open: true, Tab: info.ID, TabNamed: true}
		}
	}

	return SettingsRoute{Open: true, Tab: DefaultTab()}
}

// FormatRoute renders the fragment for a tab, capitalized as the web client
// writes it.
func FormatRoute(tab SettingsTab) string {
	for _, info := range tabRegistry {
		if info.ID == tab {
			return fragmentPrefix + "/" + info.Title
		}
	}

	return fragmentPrefix
}

// RouterConfig wires the orchestrator's collaborators.
type RouterConfig struct {
	Navigator Navigator
	// InitialTab is preferred over the default when the fragment names no tab.
	InitialTab SettingsTab
	// DeviceLimitReached gates navigation to the Security tab only.
	DeviceLimitReached func() bool
	// Loaders fire at most once per tab per open-session.
	Loaders map[SettingsTab]func()
	// OnOpenChanged observes modal visibility transitions.
	OnOpenChanged func(open bool)
	// OnActiveChanged observes tab activation.
	OnActiveChanged func(tab SettingsTab)
}

// Router owns the settings window's cross-cutting state: open/closed, active
// tab synced to the URL fragment, the loaded-tabs set, and per-tab load
// generations for discarding late responses.
type Router struct {
	mu sync.Mutex

	nav                Navigator
	initialTab         SettingsTab
	deviceLimitReached func() bool
	loaders            map[SettingsTab]func()
	onOpenChanged      func(open bool)
	onActiveChanged    func(tab SettingsTab)
	resetFns           []func()

	open        bool
	active      SettingsTab
	loaded      map[SettingsTab]struct{}
	generations map[SettingsTab]int
}

func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		nav:                cfg.Navigator,
		initialTab:         cfg.InitialTab,
		deviceLimitReached: cfg.DeviceLimitReached,
		loaders:            cfg.Loaders,
		onOpenChanged:      cfg.OnOpenChanged,
		onActiveChanged:    cfg.OnActiveChanged,
		loaded:             make(map[SettingsTab]struct{}),
		generations:        make(map[SettingsTab]int),
	}
}

// OnClose registers a state-reset hook invoked whenever the window closes.
// Tab panels and wizards register their buffer resets here so reopening never
// shows stale input.
func (r *Router) OnClose(fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.resetFns = append(r.resetFns, fn)
	r.mu.Unlock()
}

// Open shows the settings window. The active tab comes from, in priority
// order: the current fragment, the configured initial tab, the default.
func (r *Router) Open() {
	r.mu.Lock()
	tab := r.resolveInitialTabLocked()
	tab = r.gateLocked(tab)
	wasOpen := r.open
	r.open = true
	r.active = tab
	fireLoader := r.markLoadedLocked(tab)
	r.mu.Unlock()

	r.writeFragment(tab)
	if !wasOpen && r.onOpenChanged != nil {
		r.onOpenChanged(true)
	}
	if r.onActiveChanged != nil {
		r.onActiveChanged(tab)
	}
	if fireLoader != nil {
		fireLoader()
	}
}

// Close hides the settings window, clears the loaded-tab set and fragment,
// and runs every registered reset hook.
func (r *Router) Close() {
	r.mu.Lock()
	if !r.open {
		r.mu.Unlock()

		return
	}
	r.open = false
	r.loaded = make(map[SettingsTab]struct{})
	for tab := range r.generations {
		r.generations[tab]++
	}
	resets := make([]func(), len(r.resetFns))
	copy(resets, r.resetFns)
	r.mu.Unlock()

	if r.nav != nil && ParseRoute(r.nav.Fragment()).Open {
		r.nav.SetFragment("")
	}
	for _, reset := range resets {
		reset()
	}
	if r.onOpenChanged != nil {
		r.onOpenChanged(false)
	}
}

// Activate switches to a tab, firing its loaders exactly once per
// open-session. Navigation to gated tabs is refused while the device limit is
// reached.
func (r *Router) Activate(tab SettingsTab) {
	if !r.TabEnabled(tab) {
		return
	}

	r.mu.Lock()
	if !r.open || !knownTab(tab) {
		r.mu.Unlock()

		return
	}
	r.active = tab
	fireLoader := r.markLoadedLocked(tab)
	r.mu.Unlock()

	r.writeFragment(tab)
	if r.onActiveChanged != nil {
		r.onActiveChanged(tab)
	}
	if fireLoader != nil {
		fireLoader()
	}
}

// HandleFragmentChange reacts to an external fragment change (deep link,
// back/forward): a settings fragment opens and navigates, anything else
// closes the window.
func (r *Router) HandleFragmentChange(fragment string) {
	route := ParseRoute(fragment)
	if !route.Open {
		r.Close()

		return
	}

	r.mu.Lock()
	open := r.open
	r.mu.Unlock()

	if !open {
		r.mu.Lock()
		r.open = true
		tab := r.gateLocked(route.Tab)
		r.active = tab
		fireLoader := r.markLoadedLocked(tab)
		r.mu.Unlock()

		if r.onOpenChanged != nil {
			r.onOpenChanged(true)
		}
		if r.onActiveChanged != nil {
			r.onActiveChanged(tab)
		}
		if fireLoader != nil {
			fireLoader()
		}

		return
	}

	r.Activate(route.Tab)
}

// TabEnabled reports whether a tab is reachable. While the device limit is
// reached, only Security remains enabled to force remediation.
func (r *Router) TabEnabled(tab SettingsTab) bool {
	if !knownTab(tab) {
		return false
	}
	if r.deviceLimitReached != nil && r.deviceLimitReached() && tab != TabSecurity {
		return false
	}

	return true
}

// IsOpen reports window visibility.
func (r *Router) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.open
}

// ActiveTab returns the currently selected tab.
func (r *Router) ActiveTab() SettingsTab {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active
}

// Loaded reports whether a tab's loaders already fired this open-session.
func (r *Router) Loaded(tab SettingsTab) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loaded[tab]

	return ok
}

// NextGeneration starts a fresh load for a tab and invalidates in-flight
// responses from earlier loads.
func (r *Router) NextGeneration(tab SettingsTab) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[tab]++

	return r.generations[tab]
}

// CurrentGeneration reports whether a response generation is still the tab's
// live one; stale responses must be discarded.
func (r *Router) CurrentGeneration(tab SettingsTab, generation int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generations[tab] == generation
}

func (r *Router) resolveInitialTabLocked() SettingsTab {
	if r.nav != nil {
		if route := ParseRoute(r.nav.Fragment()); route.Open && route.TabNamed {
			return route.Tab
		}
	}
	if knownTab(r.initialTab) {
		return r.initialTab
	}

	return DefaultTab()
}

func (r *Router) gateLocked(tab SettingsTab) SettingsTab {
	if r.deviceLimitReached != nil && r.deviceLimitReached() && tab != TabSecurity {
		return TabSecurity
	}

	return tab
}

func (r *Router) markLoadedLocked(tab SettingsTab) func() {
	if _, ok := r.loaded[tab]; ok {
		return nil
	}
	r.loaded[tab] = struct{}{}
	if r.loaders == nil {
		return nil
	}

	return r.loaders[tab]
}

func (r *Router) writeFragment(tab SettingsTab) {
	if r.nav == nil {
		return
	}
	next := FormatRoute(tab)
	if r.nav.Fragment() == next {
		return
	}
	r.nav.SetFragment(next)
}

func knownTab(tab SettingsTab) bool {
	for _, info := range tabRegistry {
		if info.ID == tab {
			return true
		}
	}

	return false
}
