package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	models "aiwealth/internal/domain/models"
	domrepo "aiwealth/internal/domain/repository"
	icache "aiwealth/internal/service/cache"
	"aiwealth/internal/service/metrics"
	"aiwealth/internal/service/ratelimit"
	"aiwealth/internal/usecase"
	applogger "aiwealth/pkg/logger"
	xutil "aiwealth/pkg/util"
)

// ConsoleHandler serves the read-only console endpoints over plain net/http,
// with response caching and per-client rate limiting. The writable endpoints
// live on the Echo handler.
type ConsoleHandler struct {
	uc    *usecase.ConsoleUseCase
	cache icache.BytesCache
	rl    *ratelimit.Limiter
	l     *applogger.Logger
}

func NewConsoleHandler(uc *usecase.ConsoleUseCase) *ConsoleHandler {
	metrics.Register()
	return &ConsoleHandler{uc: uc, rl: ratelimit.New()}
}

func (h *ConsoleHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *ConsoleHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *ConsoleHandler) Table() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "table"
		defer func() { metrics.ConsoleLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		env := string(domrepo.NormalizeEnv(r.URL.Query().Get("env")))
		view := r.URL.Query().Get("view")
		if !h.rl.Allow(r.RemoteAddr+":table", 5, 2) {
			if h.l != nil {
				h.l.Warn("console.table rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "table:" + env + ":" + view
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("console.table cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("console.table cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("console.table write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("console.table cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.uc.Table(r.Context(), env, view)
		if err != nil {
			metrics.ConsoleErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("console.table error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("console.table marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 15*time.Second); err != nil && h.l != nil {
				h.l.Warn("console.table cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("console.table write_error", applogger.Error(err))
		}
	}
}

func (h *ConsoleHandler) Runlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "runlog"
		defer func() { metrics.ConsoleLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		env := string(domrepo.NormalizeEnv(r.URL.Query().Get("env")))
		runDate := r.URL.Query().Get("run_date")
		if runDate != "" {
			normalized, ok := xutil.NormalizeRunDate(runDate)
			if !ok {
				http.Error(w, "invalid run_date", http.StatusBadRequest)
				return
			}
			runDate = normalized
		}
		limit := xutil.ParseIntDefault(r.URL.Query().Get("limit"), 50)
		if limit < 1 || limit > 1000 {
			limit = 50
		}
		if !h.rl.Allow(r.RemoteAddr+":runlog", 5, 2) {
			if h.l != nil {
				h.l.Warn("console.runlog rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "runlog:" + env + ":" + runDate + ":" + strconv.Itoa(limit)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("console.runlog cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("console.runlog cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("console.runlog write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("console.runlog cache_miss", applogger.String("key", cacheKey))
			}
		}
		req := &models.RunlogRequest{RunDate: runDate, Env: env, Limit: limit}
		entries, err := h.uc.Runlog(r.Context(), req)
		if err != nil {
			metrics.ConsoleErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("console.runlog error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(entries)
		if err != nil {
			if h.l != nil {
				h.l.Error("console.runlog marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("console.runlog cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("console.runlog write_error", applogger.Error(err))
		}
	}
}
