package site

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/isidrok/site/content"
	"github.com/isidrok/site/views"
)

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/__reload.js", echo.WrapHandler(http.StripPrefix("/__", http.FileServer(http.FS(embeddedFS)))))
	e.GET("/__reload", a.handleReload)
	e.GET("/__status", a.handleStatus)
	e.GET("/__entries/:slug", a.handleEntry)
	e.GET("/__typewriter", a.handleTypewriter)
}

// statusEntry is an indexed entry as listed by /__status.
type statusEntry struct {
	content.Entry
	URL string `json:"url"`
}

type statusResponse struct {
	Report  Report        `json:"report"`
	Clients int           `json:"clients"`
	Entries []statusEntry `json:"entries"`
}

func (a *App) handleStatus(c echo.Context) error {
	includeDrafts := c.QueryParam("drafts") != "false"
	entries, err := a.Cache.ListEntries(c.Request().Context(), includeDrafts)
	if err != nil {
		return err
	}
	resp := statusResponse{
		Report:  a.LastReport(),
		Clients: a.hub.count(),
		Entries: make([]statusEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, statusEntry{Entry: e, URL: BuildURL(a.Config.Site, "blog", e.Slug)})
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleEntry(c echo.Context) error {
	e, err := a.Cache.GetEntry(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entry not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, statusEntry{Entry: e, URL: BuildURL(a.Config.Site, "blog", e.Slug)})
}

// handleTypewriter previews the typewriter component. speed and delay are
// Go durations ("80ms") or plain milliseconds and default to the configured
// animation timings.
func (a *App) handleTypewriter(c echo.Context) error {
	calc := a.calc
	var err error
	if calc.Speed, err = durationParam(c, "speed", calc.Speed); err != nil {
		return err
	}
	if calc.StartDelay, err = durationParam(c, "delay", calc.StartDelay); err != nil {
		return err
	}
	c.Response().Header().Set("X-Animation-Duration", strconv.FormatInt(calc.Duration(c.QueryParam("text")).Milliseconds(), 10))
	return renderHTML(c, views.Typewriter(c.QueryParam("text"), calc))
}

// renderHTML buffers cmp before writing so a failing component leaves the
// response uncommitted for httpErrorHandler.
func renderHTML(c echo.Context, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func durationParam(c echo.Context, name string, fallback time.Duration) (time.Duration, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": "+raw)
	}
	return d, nil
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	code := http.StatusInternalServerError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
