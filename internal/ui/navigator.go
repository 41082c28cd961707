package ui

import "sync"

// appNavigator is the desktop stand-in for the URL fragment: a mutable string
// with change notification, driving the settings router the same way external
// hash changes would in a browser.
type appNavigator struct {
	mu       sync.Mutex
	fragment string
	onChange func(fragment string)
}

func newAppNavigator() *appNavigator {
	return &appNavigator{}
}

func (n *appNavigator) Fragment() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.fragment
}

func (n *appNavigator) SetFragment(fragment string) {
	n.mu.Lock()
	n.fragment = fragment
	n.mu.Unlock()
}

// Navigate changes the fragment externally (deep link) and notifies the
// router.
func (n *appNavigator) Navigate(fragment string) {
	n.mu.Lock()
	n.fragment = fragment
	onChange := n.onChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(fragment)
	}
}

func (n *appNavigator) setOnChange(fn func(fragment string)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}
