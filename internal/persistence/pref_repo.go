package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Recognized preference keys. Persistent keys mirror server-side preferences
// for early, pre-hydration initialization; scoped keys tie the email-change
// handshake to the running process and are never written to disk.
const (
	KeySessionConfig    = "session_config"
	KeyUsageDiagnostics = "privacy_usage_diagnostics"
	KeyCrashReports     = "privacy_crash_reports"

	ScopedKeyEmailChangeToken = "emailChangeToken"
	ScopedKeyNewEmail         = "newEmail"
)

var persistentKeys = map[string]struct{}{
	KeySessionConfig:    {},
	KeyUsageDiagnostics: {},
	KeyCrashReports:     {},
}

var scopedKeys = map[string]struct{}{
	ScopedKeyEmailChangeToken: {},
	ScopedKeyNewEmail:         {},
}

// ErrUnknownKey is returned for keys outside the recognized set.
var ErrUnknownKey = errors.New("unknown preference key")

// PrefRepo stores recognized client-side preferences. Persistent keys live in
// sqlite; scoped keys live in process memory only and vanish on exit.
type PrefRepo struct {
	db *sql.DB

	mu     sync.RWMutex
	scoped map[string]string
}

func NewPrefRepo(db *sql.DB) *PrefRepo {
	return &PrefRepo{
		db:     db,
		scoped: make(map[string]string),
	}
}

func (r *PrefRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if _, ok := scopedKeys[key]; ok {
		r.mu.RLock()
		value, found := r.scoped[key]
		r.mu.RUnlock()

		return value, found, nil
	}
	if _, ok := persistentKeys[key]; !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %q: %w", key, err)
	}

	return value, true, nil
}

func (r *PrefRepo) Set(ctx context.Context, key, value string) error {
	if _, ok := scopedKeys[key]; ok {
		r.mu.Lock()
		r.scoped[key] = value
		r.mu.Unlock()

		return nil
	}
	if _, ok := persistentKeys[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences(key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write preference %q: %w", key, err)
	}

	return nil
}

func (r *PrefRepo) Delete(ctx context.Context, key string) error {
	if _, ok := scopedKeys[key]; ok {
		r.mu.Lock()
		delete(r.scoped, key)
		r.mu.Unlock()

		return nil
	}
	if _, ok := persistentKeys[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}

	return nil
}

// ClearScope drops every scoped key. Called on email-change completion,
// cancellation, and settings window close.
func (r *PrefRepo) ClearScope() {
	r.mu.Lock()
	r.scoped = make(map[string]string)
	r.mu.Unlock()
}
