package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"

	"drivego/internal/bus"
)

const (
	defaultUpdateCheckInterval  = 12 * time.Hour
	defaultUpdateRequestTimeout = 15 * time.Second
	defaultReleaseFeedURL       = "https://releases.drivego.app/desktop/latest.json"
)

// ReleaseInfo is the published release described by the feed.
type ReleaseInfo struct {
	Version     string
	Notes       string
	DownloadURL string
	PublishedAt time.Time
}

// UpdateSnapshot is the result of one successful release check.
type UpdateSnapshot struct {
	CurrentVersion  string
	Latest          ReleaseInfo
	UpdateAvailable bool
	CheckedAt       time.Time
}

type UpdateCheckerConfig struct {
	CurrentVersion string
	FeedURL        string
	HTTPClient     *http.Client
	Interval       time.Duration
	Bus            bus.MessageBus
	Logger         *slog.Logger
}

// UpdateChecker polls the release feed and publishes snapshots over the
// message bus. The feed serves a single document describing the newest
// stable build.
type UpdateChecker struct {
	currentVersion string
	feedURL        string
	client         *http.Client
	interval       time.Duration
	bus            bus.MessageBus
	logger         *slog.Logger

	mu          sync.RWMutex
	latest      UpdateSnapshot
	latestKnown bool

	startOnce sync.Once
}

type releaseDocument struct {
	Version     string    `json:"version"`
	Channel     string    `json:"channel"`
	Notes       string    `json:"notes"`
	DownloadURL string    `json:"download_url"`
	PublishedAt time.Time `json:"published_at"`
}

func NewUpdateChecker(cfg UpdateCheckerConfig) *UpdateChecker {
	checker := &UpdateChecker{
		currentVersion: strings.TrimSpace(cfg.CurrentVersion),
		feedURL:        strings.TrimSpace(cfg.FeedURL),
		client:         cfg.HTTPClient,
		interval:       cfg.Interval,
		bus:            cfg.Bus,
		logger:         cfg.Logger,
	}
	if checker.feedURL == "" {
		checker.feedURL = defaultReleaseFeedURL
	}
	if checker.client == nil {
		checker.client = &http.Client{Timeout: defaultUpdateRequestTimeout}
	}
	if checker.interval <= 0 {
		checker.interval = defaultUpdateCheckInterval
	}
	if checker.logger == nil {
		checker.logger = slog.Default().With("component", "update_checker")
	}

	return checker
}

func (c *UpdateChecker) Start(ctx context.Context) {
	if c == nil {
		return
	}

	c.startOnce.Do(func() {
		go c.poll(ctx)
	})
}

func (c *UpdateChecker) CurrentSnapshot() (UpdateSnapshot, bool) {
	if c == nil {
		return UpdateSnapshot{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.latest, c.latestKnown
}

func (c *UpdateChecker) poll(ctx context.Context) {
	c.logger.Info("update checker started", "feed", c.feedURL, "interval", c.interval.String(), "current_version", c.currentVersion)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.checkAndPublish(ctx); err != nil {
			c.logger.Warn("check for updates", "error", err)
		}

		select {
		case <-ctx.Done():
			c.logger.Info("update checker stopped")

			return
		case <-ticker.C:
		}
	}
}

func (c *UpdateChecker) checkAndPublish(ctx context.Context) error {
	snapshot, err := c.check(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.latest = snapshot
	c.latestKnown = true
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(bus.TopicUpdateSnapshot, snapshot)
	}
	c.logger.Info(
		"update check completed",
		"latest_version", snapshot.Latest.Version,
		"update_available", snapshot.UpdateAvailable,
	)

	return nil
}

func (c *UpdateChecker) check(ctx context.Context) (UpdateSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return UpdateSnapshot{}, fmt.Errorf("create release feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return UpdateSnapshot{}, fmt.Errorf("request release feed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			return UpdateSnapshot{}, fmt.Errorf("request release feed: unexpected status %d: %s", resp.StatusCode, trimmed)
		}

		return UpdateSnapshot{}, fmt.Errorf("request release feed: unexpected status %d", resp.StatusCode)
	}

	var doc releaseDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return UpdateSnapshot{}, fmt.Errorf("decode release feed: %w", err)
	}

	version := strings.TrimSpace(doc.Version)
	if version == "" {
		return UpdateSnapshot{}, fmt.Errorf("release feed has no version")
	}
	if channel := strings.TrimSpace(doc.Channel); channel != "" && channel != "stable" {
		return UpdateSnapshot{}, fmt.Errorf("release feed serves channel %q", channel)
	}

	latest := ReleaseInfo{
		Version:     version,
		Notes:       strings.TrimSpace(doc.Notes),
		DownloadURL: strings.TrimSpace(doc.DownloadURL),
		PublishedAt: doc.PublishedAt,
	}

	return UpdateSnapshot{
		CurrentVersion:  c.currentVersion,
		Latest:          latest,
		UpdateAvailable: versionNewer(c.currentVersion, latest.Version),
		CheckedAt:       time.Now().UTC(),
	}, nil
}

// versionNewer reports whether latest is a valid semver ahead of current.
// An unparseable current version (dev builds) always counts as outdated.
func versionNewer(current, latest string) bool {
	latestCanon := canonicalVersion(latest)
	if !semver.IsValid(latestCanon) {
		return false
	}

	currentCanon := canonicalVersion(current)
	if !semver.IsValid(currentCanon) {
		return true
	}

	return semver.Compare(currentCanon, latestCanon) < 0
}

func canonicalVersion(version string) string {
	trimmed := strings.TrimSpace(version)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "v") {
		trimmed = "v" + trimmed
	}

	return trimmed
}
