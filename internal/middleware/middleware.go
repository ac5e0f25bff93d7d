package middleware

import (
	"crypto/subtle"
	"net/http"
	"ssipfix/internal/config"
	handlers "ssipfix/internal/handler"
	"ssipfix/internal/logger"
	"ssipfix/internal/metrics"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFormField  = "csrf_token"
)

type Middleware func(http.Handler) http.Handler

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SessionMiddleware resolves the caller from the identity cookies and stores it in the
// request context. Stale cookies are cleared; a remember-me restore sets a fresh session cookie.
func SessionMiddleware(authService service.AuthService, cfg *config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := authService.ResolveCaller(r.Context(), handlers.ReadCredentials(r))
			if err != nil {
				logger.ErrorWithFields("Failed to resolve caller", err, logger.WithIP(r.RemoteAddr))
			}
			if res == nil {
				res = &service.Resolution{Caller: &models.Caller{}}
			}

			if res.ClearSession {
				handlers.ClearSessionCookie(w, r, cfg)
			}
			if res.ClearRemember {
				handlers.ClearRememberCookies(w, r, cfg)
			}
			if res.Restored && res.Session != nil {
				handlers.SetSessionCookie(w, r, cfg, res.Session)
			}

			next.ServeHTTP(w, r.WithContext(models.WithCaller(r.Context(), res.Caller)))
		})
	}
}

// RequireAuth rejects anonymous callers before the handler runs.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !models.CallerFromContext(r.Context()).Authenticated() {
			handlers.WriteError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFMiddleware requires every state-changing request outside exemptPaths to carry the
// session's CSRF token in the X-CSRF-Token header or the csrf_token form field.
func CSRFMiddleware(exemptPaths ...string) Middleware {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			caller := models.CallerFromContext(r.Context())
			token := r.Header.Get(CSRFHeaderName)
			if token == "" {
				token = r.FormValue(CSRFFormField)
			}

			if caller.CSRFToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(caller.CSRFToken)) != 1 {
				metrics.AuthEvents.WithLabelValues("csrf_rejected").Inc()
				logger.Log.Warn("CSRF token rejected",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					logger.WithUserID(caller.UserID),
					logger.WithIP(r.RemoteAddr),
				)
				handlers.WriteError(w, "Invalid CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit caps the request body; reads past the limit fail with *http.MaxBytesError.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		logger.Log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			logger.WithIP(r.RemoteAddr),
		)
	})
}

// MetricsMiddleware is meant for router.Use so the matched route template is known.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

// Chain wraps h so that the last middleware in the list runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
