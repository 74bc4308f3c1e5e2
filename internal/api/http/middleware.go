package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/security"
	"blackrent-backend/internal/service"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated caller set by Authenticate
func ActorFromContext(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(service.Actor)
	return actor, ok
}

func withActor(ctx context.Context, actor service.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Authenticate validates the bearer token and stores the caller in the
// request context. A "token" query parameter is accepted as well so that
// protocol photos can be linked from <img> tags.
func Authenticate(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Chýba prístupový token")
				return
			}
			claims, err := tokens.ValidateToken(token)
			if err != nil {
				msg := "Neplatný prístupový token"
				if errors.Is(err, security.ErrExpiredToken) {
					msg = "Platnosť prihlásenia vypršala"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}
			actor := service.Actor{
				UserID:    claims.UserID,
				Username:  claims.Username,
				Role:      domain.Role(claims.Role),
				CompanyID: claims.CompanyID,
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging writes one access log line per request
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.HTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	requests int
	window   time.Duration
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		requests: requests,
		window:   window,
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		perSecond := float64(rl.requests) / rl.window.Seconds()
		l = rate.NewLimiter(rate.Limit(perSecond), rl.requests)
		rl.limiters[ip] = l
	}
	return l
}

// Middleware answers 429 once a client exceeds its budget. RealIP must run
// first so RemoteAddr holds the client address.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !rl.limiter(ip).Allow() {
			writeError(w, http.StatusTooManyRequests, "Príliš veľa požiadaviek, skúste to neskôr")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Reset drops every bucket. The server calls it periodically so idle clients
// do not accumulate.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	rl.limiters = make(map[string]*rate.Limiter)
	rl.mu.Unlock()
}
