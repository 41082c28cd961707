package app

import (
	"runtime/debug"
	"strings"
	"time"
)

// Set through ldflags on release builds; dev builds fall back to module
// metadata embedded by the toolchain.
var (
	Version   = ""
	BuildDate = ""
)

// BuildVersion resolves the release version, preferring the ldflags value
// over whatever the toolchain stamped into the binary.
func BuildVersion() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

// BuildDateYMD normalizes the stamped build date to YYYY-MM-DD. RFC 3339
// timestamps and bare dates are both accepted; anything else passes through.
func BuildDateYMD() string {
	raw := strings.TrimSpace(BuildDate)
	if raw == "" {
		return ""
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Format(time.DateOnly)
	}
	if len(raw) >= len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, raw[:len(time.DateOnly)]); err == nil {
			return raw[:len(time.DateOnly)]
		}
	}

	return raw
}
