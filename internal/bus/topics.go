package bus

// Topics carried over the app message bus.
const (
	// TopicToast carries app.ToastEvent payloads for user-facing outcome reports.
	TopicToast = "ui.toast"
	// TopicProfileUpdated carries domain.Profile payloads after a session refetch
	// or optimistic local mutation.
	TopicProfileUpdated = "session.profile_updated"
	// TopicSettingsRoute carries fragment strings (e.g. "#settings/Security")
	// when something outside the settings window asks for navigation.
	TopicSettingsRoute = "settings.route"
	// TopicUpdateSnapshot carries app.UpdateSnapshot payloads from the update checker.
	TopicUpdateSnapshot = "app.update_snapshot"
)
