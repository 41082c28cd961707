package app

const (
	Name           = "drivego"
	SourceURL      = "https://github.com/drivego/drivego"
	ConfigFilename = "config.json"
	DBFilename     = "app.db"
	LogFilename    = "app.log"

	// Page sizes used by the settings lists.
	SessionsPageSize       = 5
	DevicesPageSize        = 5
	SecurityEventsPageSize = 10
	HistoryPageSize        = 5
	ReferralsPageSize      = 5

	// SecurityEventsExportLimit is the single large page fetched for CSV export.
	SecurityEventsExportLimit = 10000
)
