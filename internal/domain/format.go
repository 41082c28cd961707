package domain

import "fmt"

const (
	bytesPerMB = 1024 * 1024
	mbPerGB    = 1024
)

// FormatStorageSize renders a byte count the way the drive UI presents storage
// amounts: whole megabytes below 1024 MB, one-decimal gigabytes at or above.
func FormatStorageSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	mb := float64(bytes) / bytesPerMB
	if mb >= mbPerGB {
		return fmt.Sprintf("%.1fGB", mb/mbPerGB)
	}

	return fmt.Sprintf("%.0fMB", mb)
}

// UsageBand classifies a percent-used value into the gauge color bands.
type UsageBand string

const (
	UsageBandNormal   UsageBand = "normal"
	UsageBandWarning  UsageBand = "warning"
	UsageBandCritical UsageBand = "critical"

	usageWarningThreshold  = 75
	usageCriticalThreshold = 90
)

// BandForPercent maps percent-used to its gauge band. Thresholds sit at 75%
// and 90%.
func BandForPercent(pct float64) UsageBand {
	switch {
	case pct >= usageCriticalThreshold:
		return UsageBandCritical
	case pct >= usageWarningThreshold:
		return UsageBandWarning
	default:
		return UsageBandNormal
	}
}
