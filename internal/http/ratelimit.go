package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
)

// RateConfig es el presupuesto de un endpoint sensible (login, forgot, etc).
type RateConfig struct {
	Limit  int
	Window time.Duration
}

func setRateHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time, retryAfter time.Duration) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
}

// Enforce aplica el presupuesto dado sobre una key semántica. Retorna true si
// el request puede continuar. Fail-open: limiter ausente, presupuesto inválido
// o backend caído nunca bloquean tráfico.
func Enforce(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg RateConfig, key string) bool {
	if lim == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return true
	}

	res, err := lim.AllowWithLimits(r.Context(), key, cfg.Limit, cfg.Window)
	if err != nil {
		logger.From(r.Context()).Warn("rate limiter unavailable, failing open",
			logger.Op("rate.enforce"), logger.Err(err))
		return true
	}

	now := time.Now().UTC()
	resetAt := now.Truncate(cfg.Window).Add(cfg.Window)

	if res.Allowed {
		setRateHeaders(w, cfg.Limit, res.Remaining, resetAt, 0)
		return true
	}

	retryAfter := time.Until(resetAt)
	if retryAfter < 0 {
		retryAfter = cfg.Window
	}
	setRateHeaders(w, cfg.Limit, 0, resetAt, retryAfter)
	WriteError(w, http.StatusTooManyRequests, "rate_limited", "demasiadas solicitudes", 1401)
	return false
}

// ---- Wrappers semánticos ----

// EnforceLoginLimit limita intentos de login por IP+email.
func EnforceLoginLimit(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg RateConfig, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	key := fmt.Sprintf("login:%s:%s", ClientIP(r), email)
	return Enforce(w, r, lim, cfg, key)
}

// EnforceForgotLimit limita solicitudes de reset de contraseña por IP+email.
func EnforceForgotLimit(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg RateConfig, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	key := fmt.Sprintf("forgot:%s:%s", ClientIP(r), email)
	return Enforce(w, r, lim, cfg, key)
}

// EnforceResetLimit limita confirmaciones de reset por IP.
func EnforceResetLimit(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg RateConfig) bool {
	key := "reset:" + ClientIP(r)
	return Enforce(w, r, lim, cfg, key)
}

// EnforceVoteLimit limita votos de reseñas por usuario.
func EnforceVoteLimit(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg RateConfig, userID string) bool {
	key := "vote:" + userID
	return Enforce(w, r, lim, cfg, key)
}

// EnforceCheckoutLimit limita checkouts por usuario.
func EnforceCheckoutLimit(w http.ResponseWriter, r *http.Request, lim rate.MultiLimiter, cfg RateConfig, userID string) bool {
	key := "checkout:" + userID
	return Enforce(w, r, lim, cfg, key)
}

// ---- Límite global ----

// WithRateLimit aplica un presupuesto global por IP+path a todo el API.
// /healthz, /readyz y /metrics quedan fuera del conteo. Fail-open ante
// errores de backend.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			key := ClientIP(r) + "|" + r.URL.Path
			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable, failing open",
					logger.Op("rate.global"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				if res.WindowTTL > 0 {
					resetAt := time.Now().Add(res.WindowTTL).Unix()
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
				}
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "demasiadas solicitudes", 1401)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			next.ServeHTTP(w, r)
		})
	}
}
