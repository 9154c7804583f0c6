package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/storefront"
	"go.uber.org/zap"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestIDKey
)

const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserAdmin = "X-User-Admin"
)

// SessionSource hands out the session for an id, creating it if needed.
type SessionSource interface {
	Session(id string) *storefront.Session
}

// SessionMiddleware resolves the X-Session-ID session (minting an id when the
// header is missing), holds the session lock for the whole request and applies
// the caller identity carried in the mock auth headers.
func SessionMiddleware(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderSessionID))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderSessionID, id)

			s := sessions.Session(id)
			s.Lock()
			defer s.Unlock()

			s.SetUser(userFromHeaders(r))

			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFromHeaders simulates token validation (replace with real JWT parsing).
func userFromHeaders(r *http.Request) *domain.User {
	uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if uid == "" {
		return nil
	}
	u := &domain.User{UID: uid, Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail))}
	if admin, err := strconv.ParseBool(r.Header.Get(HeaderUserAdmin)); err == nil && admin {
		u.Claims = map[string]any{"admin": true}
	}
	return u
}

func sessionFromContext(ctx context.Context) *storefront.Session {
	s, _ := ctx.Value(sessionKey).(*storefront.Session)
	return s
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// LoggerMiddleware writes one structured line per request.
func LoggerMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", getRequestID(r.Context())))
		})
	}
}
