package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	models "aiwealth/internal/domain/models"
	domrepo "aiwealth/internal/domain/repository"
	icache "aiwealth/internal/service/cache"
	"aiwealth/internal/usecase"
	xhttp "aiwealth/pkg/http"
	mw "aiwealth/pkg/http/middleware"
	xlogger "aiwealth/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ConsoleEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type ConsoleEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.ConsoleUseCase
	runlog domrepo.RunLogStore
	plain  *ConsoleHandler
}

func NewConsoleEchoHandler(logger *xlogger.Logger, uc *usecase.ConsoleUseCase, runlog domrepo.RunLogStore) *ConsoleEchoHandler {
	plain := NewConsoleHandler(uc)
	plain.SetCache(icache.NewTTLCache())
	plain.SetLogger(logger)
	return &ConsoleEchoHandler{logger: logger, uc: uc, runlog: runlog, plain: plain}
}

// SetBytesCache swaps the response cache behind the /cached endpoints, e.g.
// for a Redis-backed cache shared across replicas.
func (h *ConsoleEchoHandler) SetBytesCache(c icache.BytesCache) { h.plain.SetCache(c) }

func (h *ConsoleEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/aiwealth")
	g.POST("/core-business", h.CoreBusiness)
	g.GET("/validation", h.Dashboard)
	g.GET("/validation/table", h.Table)
	g.GET("/validation/table/export", h.ExportCSV)
	g.GET("/runlog", h.Runlog)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.POST("/replay", h.Replay)
	g.GET("/baselines", h.Baselines)
	g.GET("/errors", h.RecentErrors)
	// cached, rate-limited read variants for dashboard polling
	instrument := mw.Metrics(h.logger, time.Second)
	g.GET("/cached/table", echo.WrapHandler(instrument(h.plain.Table())))
	g.GET("/cached/runlog", echo.WrapHandler(instrument(h.plain.Runlog())))
	e.GET("/healthz", h.Health)
}

// CoreBusiness evaluates caller-supplied payloads without touching storage.
func (h *ConsoleEchoHandler) CoreBusiness(c echo.Context) error {
	req := &models.CoreBusinessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res := h.uc.EvaluateDirect(req.Settings, req.Table, req.View)
	return xhttp.SuccessResponse(c, res)
}

func (h *ConsoleEchoHandler) Dashboard(c echo.Context) error {
	env := string(domrepo.NormalizeEnv(c.QueryParam("env")))
	res, err := h.uc.GetDashboard(c.Request().Context(), env)
	if err != nil {
		h.logger.Error("dashboard usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ConsoleEchoHandler) Table(c echo.Context) error {
	req := &models.TableRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.Table(c.Request().Context(), req.Env, req.ViewMode)
	if err != nil {
		h.logger.Error("table usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

// ExportCSV streams the validation table as CSV for spreadsheet review.
func (h *ConsoleEchoHandler) ExportCSV(c echo.Context) error {
	req := &models.TableRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.Table(c.Request().Context(), req.Env, req.ViewMode)
	if err != nil {
		h.logger.Error("export usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="validation_%s_%s.csv"`, res.Meta.RunDate, strings.ToLower(req.Env)))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	header := []string{"symbol", "profile", "direction", "risk_bucket", "safety_class",
		"ai_suggestion", "expected_return_pct", "downside_pct", "rr_ratio",
		"capital_required", "capital_at_risk", "ai_reason_short"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range res.Rows {
		rec := []string{
			r.Symbol, r.Profile, r.Direction, r.RiskBucket, r.SafetyClass, r.AISuggestion,
			csvFloat(r.ExpectedReturnPct), csvFloat(r.DownsidePct), csvFloat(r.RRRatio),
			csvFloat(r.CapitalRequired), csvFloat(r.CapitalAtRisk), r.AIReasonShort,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (h *ConsoleEchoHandler) Runlog(c echo.Context) error {
	req := &models.RunlogRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	entries, err := h.uc.Runlog(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("runlog usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *ConsoleEchoHandler) GetSettings(c echo.Context) error {
	payload, err := h.uc.GetSettings(c.Request().Context())
	if err != nil {
		h.logger.Error("settings get error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

func (h *ConsoleEchoHandler) UpdateSettings(c echo.Context) error {
	req := &models.SettingsUpdateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	payload, err := h.uc.UpdateSettings(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("settings update error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

func (h *ConsoleEchoHandler) Replay(c echo.Context) error {
	req := &models.ReplayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.uc.Replay(c.Request().Context(), req); err != nil {
		h.logger.Error("replay enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{
		"status": "queued", "run_date": req.RunDate, "env": req.Env,
	})
}

func (h *ConsoleEchoHandler) Baselines(c echo.Context) error {
	env := string(domrepo.NormalizeEnv(c.QueryParam("env")))
	res, err := h.uc.Baselines(c.Request().Context(), env)
	if err != nil {
		h.logger.Error("baselines usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// RecentErrors serves the logger's aggregated error buffer for ops triage.
func (h *ConsoleEchoHandler) RecentErrors(c echo.Context) error {
	entries := h.logger.RecentErrors()
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *ConsoleEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.runlog != nil {
		if err := h.runlog.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["runlog"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
	}
	return c.JSON(http.StatusOK, status)
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
