package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

const sessionName = "jungle-session"

type ctxKey int

const userKey ctxKey = iota

// LoggingMiddleware logs the details of each HTTP request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
			"ip", r.RemoteAddr,
		)
	})
}

// Custom ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SecurityHeadersMiddleware adds standard security headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}

// RateLimiter allows one request per window per remote address. Applied to
// the auth and order-submission routes only.
type RateLimiter struct {
	visitors sync.Map
	window   time.Duration
}

func NewRateLimiter(window time.Duration) *RateLimiter {
	rl := &RateLimiter{window: window}
	go rl.cleanup()
	return rl
}

// cleanup removes old entries to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		now := time.Now()
		rl.visitors.Range(func(key, value interface{}) bool {
			lastSeen := value.(time.Time)
			if now.Sub(lastSeen) > rl.window {
				rl.visitors.Delete(key)
			}
			return true
		})
	}
}

func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if lastSeen, ok := rl.visitors.Load(ip); ok {
			if time.Since(lastSeen.(time.Time)) < rl.window {
				slog.Warn("Rate limit exceeded", "ip", ip)
				writeMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
		}
		rl.visitors.Store(ip, time.Now())
		next(w, r)
	}
}

// Auth glues the session cookie to the users table. Admin status is read
// from the store on every privileged request rather than cached in-process,
// so demoting an admin takes effect immediately.
type Auth struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
}

func (a *Auth) currentUser(r *http.Request) (*models.User, error) {
	session, _ := a.SessionStore.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(int)
	if !ok {
		return nil, nil
	}
	return a.Store.GetUserByID(userID)
}

// RequireUser rejects unauthenticated requests and stashes the user in the
// request context.
func (a *Auth) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.currentUser(r)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if user == nil {
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	}
}

func (a *Auth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r).IsAdmin {
			writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}

// userFrom returns the authenticated user; only valid behind RequireUser.
func userFrom(r *http.Request) *models.User {
	return r.Context().Value(userKey).(*models.User)
}
