// Package web is the HTTP and websocket transport.
package web

import (
	"net/http"
	"time"

	"chat-assistant/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RateLimitConfig struct {
	Limiter  Limiter
	Requests int
	Window   time.Duration
	KeyFunc  func(ip string) string
}

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimit      RateLimitConfig
	Cookie         CookieConfig
	// Metrics serves /metrics; nil uses the default registry.
	Metrics http.Handler
}

type Server struct {
	chatUC usecase.ChatUseCase
	authUC usecase.AuthUseCase
	tokens TokenParser
	opts   Options
	log    *zerolog.Logger
}

func NewServer(chatUC usecase.ChatUseCase, authUC usecase.AuthUseCase, tokens TokenParser, opts Options, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "web").Logger()
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.RateLimit.KeyFunc == nil {
		opts.RateLimit.KeyFunc = func(ip string) string { return "rate_limit:ip:" + ip }
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	return &Server{chatUC: chatUC, authUC: authUC, tokens: tokens, opts: opts, log: &l}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		SecurityHeaders(),
		CORS(s.opts.CORSOrigins),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics)

	limited := RateLimit(s.opts.RateLimit.Limiter, s.opts.RateLimit.Requests, s.opts.RateLimit.Window, s.opts.RateLimit.KeyFunc, s.log)

	r.Route("/api", func(r chi.Router) {
		r.Use(Timeout(s.opts.RequestTimeout), limited)

		if s.authUC != nil {
			ah := NewAuthHandler(s.authUC, s.opts.Cookie, s.log)
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", ah.Register)
				r.Post("/login", ah.Login)
				r.Post("/refresh", ah.Refresh)
				r.With(RequireAuth(s.tokens)).Get("/me", ah.Me)
			})
		}

		ch := NewChatHandler(s.chatUC, s.log)
		r.Route("/chat", func(r chi.Router) {
			r.Use(OptionalAuth(s.tokens))
			r.Post("/", ch.Chat)
			r.Get("/sessions/{id}", ch.History)
			r.Delete("/sessions/{id}", ch.End)
		})
	})

	sh := NewSocketHandler(s.chatUC, s.opts.CORSOrigins, s.opts.RequestTimeout, s.log)
	r.With(limited, OptionalAuth(s.tokens)).Get("/ws", sh.Serve)

	return r
}
