package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"drivego/internal/api"
	"drivego/internal/bus"
	"drivego/internal/config"
	"drivego/internal/logging"
	"drivego/internal/notifications"
	"drivego/internal/persistence"
	"drivego/internal/session"
)

// Runtime wires together the client's long-lived services: config, logging,
// the message bus, the local preference store, the API client, the session
// context, and the per-panel controllers the settings surface is built from.
type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.Broker
	DB         *sql.DB
	Prefs      *persistence.PrefRepo

	API     *api.Client
	Session *session.Manager
	Toaster *Toaster

	Account         *Account
	EmailChange     *EmailChangeWizard
	TOTP            *TOTPWizard
	SecurityLists   *SecurityLists
	ActivityMonitor *ActivityMonitor
	Billing         *Billing
	Notifications   *NotificationSettings
	Referrals       *Referrals

	UpdateChecker *UpdateChecker
}

func Initialize(parent context.Context) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting drivego runtime", "version", BuildVersion(), "build_date", BuildDateYMD())

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()

		return nil, err
	}
	rt.DB = db
	rt.Prefs = persistence.NewPrefRepo(db)

	rt.Bus = bus.New(logMgr.Logger("bus"))
	rt.Toaster = NewToaster(rt.Bus, logMgr.Logger("toast"))

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.API.RequestTimeout) * time.Second},
		Logger:     logMgr.Logger("api"),
	})
	if err != nil {
		_ = rt.Close()

		return nil, fmt.Errorf("initialize api client: %w", err)
	}
	rt.API = client

	rt.Session = session.NewManager(client, rt.Bus, logMgr.Logger("session"))

	rt.Account = NewAccount(client, rt.Session, rt.Prefs, logMgr.Logger("account"))
	rt.EmailChange = NewEmailChangeWizard(client, rt.Prefs, logMgr.Logger("email_change"))
	rt.TOTP = NewTOTPWizard(client, logMgr.Logger("totp"))
	rt.SecurityLists = NewSecurityLists(client, logMgr.Logger("security_lists"))
	rt.ActivityMonitor = NewActivityMonitor(client, rt.Prefs, logMgr.Logger("activity_monitor"))
	rt.ActivityMonitor.InitFromMirrors(ctx)
	rt.Billing = NewBilling(client, logMgr.Logger("billing"))
	rt.Notifications = NewNotificationSettings(client, logMgr.Logger("notification_prefs"))
	rt.Referrals = NewReferrals(client, logMgr.Logger("referrals"))

	rt.UpdateChecker = NewUpdateChecker(UpdateCheckerConfig{
		CurrentVersion: BuildVersion(),
		Bus:            rt.Bus,
		Logger:         logMgr.Logger("update_checker"),
	})
	rt.UpdateChecker.Start(ctx)

	return rt, nil
}

// StartNotifications begins relaying toast and update events to the desktop
// notification daemon. The foreground probe comes from the UI layer.
func (r *Runtime) StartNotifications(isForeground func() bool) {
	inAppEnabled := func() bool {
		return r.Notifications.Value(ToggleInApp)
	}
	sender := notifications.NewBeeepSender(Name, r.LogManager.Logger("notifications"))
	service := NewNotificationService(r.Bus, isForeground, inAppEnabled, sender, r.LogManager.Logger("app.notifications"))
	service.Start(r.Ctx)
}

// SaveAndApplyConfig persists and applies a full config replacement. The
// last-selected settings tab is carried over from the running config.
func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	cfg.UI.LastSettingsTab = r.Config.UI.LastSettingsTab
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()

		return err
	}
	r.Config = cfg
	r.mu.Unlock()

	return r.LogManager.Configure(cfg.Logging, r.Paths.LogFile)
}

// RememberSettingsTab records the last active settings tab so reopening the
// window restores it.
func (r *Runtime) RememberSettingsTab(tab SettingsTab) {
	r.mu.Lock()
	if r.Config.UI.LastSettingsTab == string(tab) {
		r.mu.Unlock()

		return
	}
	cfg := r.Config
	cfg.UI.LastSettingsTab = string(tab)
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()
		slog.Warn("save settings tab", "error", err)

		return
	}
	r.Config = cfg
	r.mu.Unlock()
}

// CurrentConfig returns a copy of the active configuration.
func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

func (r *Runtime) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}

	return nil
}
