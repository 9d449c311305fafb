package site

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/isidrok/site/throttle"
)

const shutdownTimeout = 5 * time.Second

// Serve syncs the collection, watches it for changes and runs the dev
// server on Config.Dev.Addr until ctx is canceled. Open must be called first.
func (a *App) Serve(ctx context.Context) error {
	// A loop started here lives only as long as this call.
	frames := a.frames
	if frames == nil {
		loop := throttle.NewLoop(a.Config.Dev.FrameInterval)
		stop := loop.Start(ctx)
		defer stop()
		frames = loop
	}

	if _, err := a.Sync(ctx); err != nil {
		return err
	}

	w, err := a.startWatcher()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	go func() {
		errc <- a.watchLoop(ctx, w, frames)
	}()
	go func() {
		a.Log.Info("dev server listening", zap.String("addr", a.Config.Dev.Addr))
		if err := a.Echo.Start(a.Config.Dev.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
	}
	cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	a.hub.closeAll()
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("dev server shutdown", zap.Error(err))
	}
	a.Log.Info("dev server stopped")
	return serveErr
}
