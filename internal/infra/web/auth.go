package web

import (
	"net/http"
	"strings"
	"time"

	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/infra/logging"
)

// TokenParser verifies a signed token of the wanted type.
type TokenParser interface {
	Parse(tok string, want model.TokenType) (model.TokenClaims, error)
}

type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	TTL    time.Duration
}

const refreshCookieName = "refresh_token"

func setRefreshCookie(w http.ResponseWriter, cfg CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/api/auth",
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/api/auth",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// bearerToken reads "Authorization: Bearer <jwt>". Browsers cannot set headers
// on websocket upgrades, so the access_token query parameter is accepted too.
func bearerToken(r *http.Request) string {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if len(hdr) > 7 && strings.EqualFold(hdr[:7], "bearer ") {
			return strings.TrimSpace(hdr[7:])
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// OptionalAuth attaches the user id of a valid access token to the request
// context. Missing or invalid tokens pass through anonymously.
func OptionalAuth(p TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerToken(r); tok != "" && p != nil {
				if claims, err := p.Parse(tok, model.TokenAccess); err == nil {
					r = r.WithContext(logging.WithUserID(r.Context(), claims.UserID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAuth(p TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" || p == nil {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := p.Parse(tok, model.TokenAccess)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), claims.UserID)))
		})
	}
}
