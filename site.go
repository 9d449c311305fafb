// Package site is the toolkit behind isidrok.com. It loads and validates the
// blog collection, keeps a SQLite index of it, and runs a development server
// that live-reloads browsers when posts change.
//
// The animation and throttle subpackages hold the small UI utilities the
// site's pages use: typewriter timing and frame-paced call throttling.
package site

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/isidrok/site/animation"
	"github.com/isidrok/site/content"
	"github.com/isidrok/site/throttle"
)

// App wires together the store, cache, watcher and dev server.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *EntryCache
	Log    *zap.Logger

	calc   animation.Calculator
	frames throttle.Frames
	hub    *reloadHub

	mu     sync.RWMutex
	report Report
}

// Report summarizes the last collection sync.
type Report struct {
	Entries  int              `json:"entries"`
	Drafts   int              `json:"drafts"`
	Issues   []*content.Issue `json:"issues"`
	SyncedAt time.Time        `json:"synced_at"`
}

// OK reports whether the synced collection had no schema issues.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

// New creates an App with the given configuration. Call Open before using
// the store.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Log:    zap.NewNop(),
		hub:    newReloadHub(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open validates the configuration, opens the index and registers the dev
// server routes.
func (a *App) Open() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	calc, err := a.Config.Animation.Calculator()
	if err != nil {
		return fmt.Errorf("site: %w", err)
	}
	a.calc = calc

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("site: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewEntryCache(a.Store, a.Config.CacheTTL)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	a.hub.closeAll()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Check loads and validates the collection without touching the index.
func (a *App) Check(ctx context.Context) ([]content.Entry, Report, error) {
	entries, err := content.Load(ctx, a.Config.Collection.Base, a.Config.Collection.Pattern)
	issues := content.Issues(err)
	if err != nil && len(issues) == 0 {
		return nil, Report{}, err
	}
	report := Report{
		Entries:  len(entries),
		Drafts:   len(entries) - len(content.Published(entries)),
		Issues:   issues,
		SyncedAt: time.Now().UTC(),
	}
	return entries, report, nil
}

// Sync loads the collection, replaces the index with its valid entries and
// invalidates the cache. Schema issues are reported, not returned as errors.
func (a *App) Sync(ctx context.Context) (Report, error) {
	entries, report, err := a.Check(ctx)
	if err != nil {
		return Report{}, err
	}
	if err := a.Store.ReplaceEntries(ctx, entries); err != nil {
		return Report{}, fmt.Errorf("site: index collection: %w", err)
	}
	a.Cache.Invalidate()

	a.mu.Lock()
	a.report = report
	a.mu.Unlock()

	a.Log.Info("collection synced",
		zap.Int("entries", report.Entries),
		zap.Int("drafts", report.Drafts),
		zap.Int("issues", len(report.Issues)),
	)
	for _, issue := range report.Issues {
		a.Log.Warn("invalid entry", zap.String("path", issue.Path), zap.String("field", issue.Field), zap.String("message", issue.Message))
	}
	return report, nil
}

// LastReport returns the report of the most recent Sync.
func (a *App) LastReport() Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report
}

// Calculator returns the configured animation calculator. It is valid after
// Open.
func (a *App) Calculator() animation.Calculator {
	return a.calc
}
