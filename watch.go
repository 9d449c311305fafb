package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/isidrok/site/content"
	"github.com/isidrok/site/throttle"
)

// Watch re-syncs the collection and reloads connected browsers whenever a
// post under the collection base changes. Changes arriving while a reload is
// cooling down are dropped. Watch blocks until ctx is canceled.
func (a *App) Watch(ctx context.Context) error {
	w, err := a.startWatcher()
	if err != nil {
		return err
	}
	return a.watchLoop(ctx, w, a.frames)
}

func (a *App) startWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("site: create watcher: %w", err)
	}
	if err := addTree(w, a.Config.Collection.Base); err != nil {
		w.Close()
		return nil, fmt.Errorf("site: watch %s: %w", a.Config.Collection.Base, err)
	}
	return w, nil
}

// addTree watches root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// watchLoop paces reloads on frames, or on the shared default loop when
// frames is nil.
func (a *App) watchLoop(ctx context.Context, w *fsnotify.Watcher, frames throttle.Frames) error {
	defer w.Close()

	opts := []throttle.Option{throttle.WithFrames(frames)}
	if a.Config.Dev.ResetAfterLimit {
		opts = append(opts, throttle.ResetAfterLimit())
	}
	reload := throttle.Func(func() { a.reload(ctx) }, a.Config.Dev.ThrottleLimit, opts...)

	a.Log.Info("watching collection", zap.String("base", a.Config.Collection.Base))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(w, ev.Name); err != nil {
						a.Log.Warn("watch directory failed", zap.String("path", ev.Name), zap.Error(err))
					}
					reload()
					continue
				}
			}
			if a.relevant(ev) {
				a.Log.Debug("collection changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.Log.Warn("watcher error", zap.Error(err))
		}
	}
}

// relevant reports whether ev touches a collection entry. Removing or
// renaming a directory counts, since the entries below it go with it.
func (a *App) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	rel, err := filepath.Rel(a.Config.Collection.Base, ev.Name)
	if err != nil {
		return false
	}
	if content.Match(a.Config.Collection.Pattern, filepath.ToSlash(rel)) {
		return true
	}
	return (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) && filepath.Ext(ev.Name) == ""
}

func (a *App) reload(ctx context.Context) {
	if _, err := a.Sync(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			a.Log.Error("sync failed", zap.Error(err))
		}
		return
	}
	n := a.Reload()
	a.Log.Info("reloaded browsers", zap.Int("clients", n))
}
