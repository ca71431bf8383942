package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/observability"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey int

const (
	callerKey ctxKey = iota
	claimsKey
)

// caller returns the user the auth middleware resolved. Only valid inside
// protected routes.
func caller(r *http.Request) *models.User {
	u, _ := r.Context().Value(callerKey).(*models.User)
	return u
}

func sessionClaims(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return c
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate resolves the bearer token before any protected handler runs.
func (h *handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.metrics.AuthFailure(observability.ReasonMissingToken)
			writeError(w, common.ErrorUnauthorized)
			return
		}

		user, claims, err := h.resolver.Resolve(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInactiveAccount):
				h.metrics.AuthFailure(observability.ReasonInactiveAccount)
			case errors.Is(err, common.ErrorUnauthorized):
				h.metrics.AuthFailure(observability.ReasonInvalidToken)
			default:
				h.logger.Error(r.Context(), "session resolve failed", "error", err)
			}
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, user)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

const maxRequestIDLen = 64

// observe tags the request with an id, then logs and counts it under its
// route template. Unmatched requests are labelled "unmatched".
func (h *handlers) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		ctx := logging.WithRequestID(r.Context(), id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.serveRecovering(next, rec, r.WithContext(ctx))

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)

		if h.metrics != nil {
			h.metrics.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			h.metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		}
		h.logger.Info(ctx, "request",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

// serveRecovering answers a handler panic with a 500. http.ErrAbortHandler
// is re-raised so net/http still aborts the response.
func (h *handlers) serveRecovering(next http.Handler, w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			h.fail(w, r, fmt.Errorf("%w: panic: %v", common.ErrorInternal, p))
		}
	}()
	next.ServeHTTP(w, r)
}
