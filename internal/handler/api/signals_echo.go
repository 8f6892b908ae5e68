package api

import (
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	"IndexPulse/internal/services/catalog"
	xhttp "IndexPulse/pkg/http"
	xlogger "IndexPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler serves the read side of the engine: latest and historic
// classifications, plus the live driver catalog.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	latest   domrepo.LatestCache
	store    domrepo.SignalStore
	catalog  *catalog.Store
	ingestUp func() bool
}

// NewSignalsEchoHandler creates the handler. ingestUp reports liveness of the
// configured ingest transport; nil skips the check.
func NewSignalsEchoHandler(logger *xlogger.Logger, latest domrepo.LatestCache, store domrepo.SignalStore, cat *catalog.Store, ingestUp func() bool) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, latest: latest, store: store, catalog: cat, ingestUp: ingestUp}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals/:instrument", h.Latest)
	g.GET("/signals/:instrument/history", h.History)
	g.GET("/drivers", h.Drivers)
	g.PUT("/drivers", h.ReplaceDrivers)
	e.GET("/healthz", h.Health)
}

// Latest returns the most recent classification for an instrument.
func (h *SignalsEchoHandler) Latest(c echo.Context) error {
	instrument := c.Param("instrument")
	cl, ok := h.latest.Latest(instrument)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no classification for instrument %s", instrument))
	}
	return xhttp.SuccessResponse(c, cl)
}

// History returns emitted transitions for an instrument within a window.
func (h *SignalsEchoHandler) History(c echo.Context) error {
	instrument := c.Param("instrument")
	now := time.Now()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)

	rows, err := h.store.Query(c.Request().Context(), instrument, from, to, limit)
	if err != nil {
		h.logger.Error("signal history query error",
			xlogger.String("instrument", instrument),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.InternalError("signal history unavailable"))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Drivers returns the active catalog and any quarantined driver names.
func (h *SignalsEchoHandler) Drivers(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"catalog":     h.catalog.Snapshot(),
		"quarantined": h.catalog.Quarantined(),
	})
}

// ReplaceDrivers installs a new driver catalog. Weight changes take effect on
// the next tick.
func (h *SignalsEchoHandler) ReplaceDrivers(c echo.Context) error {
	var cat models.DriverCatalog
	if vErr := xhttp.ReadAndValidateRequest(c, &cat); vErr != nil {
		return xhttp.BadRequestResponse(c, vErr)
	}
	if err := h.catalog.Replace(cat); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid catalog: %v", err))
	}
	h.logger.Info("driver catalog replaced via api",
		xlogger.Int("drivers", len(cat.All())),
		xlogger.Int("quarantined", len(h.catalog.Quarantined())),
	)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"quarantined": h.catalog.Quarantined(),
	})
}

// Health reports liveness of the signal store and the ingest transport.
func (h *SignalsEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("signal store unhealthy: %v", err))
	}
	if h.ingestUp != nil && !h.ingestUp() {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("ingest disconnected"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
