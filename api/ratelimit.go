package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/observability"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateGuard allows each client IP `requests` requests per `window`, refilling
// continuously.
type rateGuard struct {
	responder Responder
	requests  int
	window    time.Duration
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newRateGuard(requests int, window time.Duration) *rateGuard {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateGuard{
		responder: NewResponder(log.With().Str("handlerName", "rateGuard").Logger()),
		requests:  requests,
		window:    window,
		now:       time.Now,
		clients:   make(map[string]*client),
	}
}

func (g *rateGuard) allow(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.lastSweep) > g.window {
		for k, c := range g.clients {
			if now.Sub(c.lastSeen) > g.window {
				delete(g.clients, k)
			}
		}
		g.lastSweep = now
	}

	c, ok := g.clients[key]
	if !ok {
		every := g.window / time.Duration(g.requests)
		c = &client{limiter: rate.NewLimiter(rate.Every(every), g.requests)}
		g.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (g *rateGuard) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.allow(clientIP(r)) {
			observability.RateLimited.Inc()
			g.responder.WriteError(w, errs.NewRateLimitError(g.window))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP expects middleware.RealIP to have run first.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
