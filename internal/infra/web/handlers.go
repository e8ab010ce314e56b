package web

import (
	"encoding/json"
	"net/http"

	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/infra/logging"
	"chat-assistant/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ===== Auth =====

type AuthHandler struct {
	uc     usecase.AuthUseCase
	cookie CookieConfig
	log    *zerolog.Logger
}

func NewAuthHandler(uc usecase.AuthUseCase, cookie CookieConfig, logger *zerolog.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = refreshCookieName
	}
	return &AuthHandler{uc: uc, cookie: cookie, log: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   *model.User     `json:"user,omitempty"`
	Tokens model.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, pair, err := h.uc.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setRefreshCookie(w, h.cookie, pair.RefreshToken)
	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: pair})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, pair, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setRefreshCookie(w, h.cookie, pair.RefreshToken)
	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: pair})
}

// Refresh takes the token from the JSON body, falling back to the cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if req.RefreshToken == "" {
		if c, err := r.Cookie(h.cookie.Name); err == nil {
			req.RefreshToken = c.Value
		}
	}
	pair, err := h.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		clearRefreshCookie(w, h.cookie)
		h.fail(w, r, err)
		return
	}
	setRefreshCookie(w, h.cookie, pair.RefreshToken)
	writeJSON(w, http.StatusOK, authResponse{Tokens: pair})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.uc.Me(r.Context(), logging.UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.With(r.Context(), h.log).Error().Err(err).Msg("auth request failed")
	}
	writeError(w, status, msg)
}

// ===== Chat =====

type ChatHandler struct {
	uc  usecase.ChatUseCase
	log *zerolog.Logger
}

func NewChatHandler(uc usecase.ChatUseCase, logger *zerolog.Logger) *ChatHandler {
	return &ChatHandler{uc: uc, log: logger}
}

type chatRequest struct {
	Message   string          `json:"message"`
	Context   json.RawMessage `json:"context"`
	SessionID string          `json:"sessionId"`
}

type historyResponse struct {
	SessionID string          `json:"sessionId"`
	Messages  []model.Message `json:"messages"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	reply, err := h.uc.Process(r.Context(), usecase.ChatRequest{
		Message:    req.Message,
		RawContext: req.Context,
		SessionID:  req.SessionID,
		UserID:     logging.UserID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msgs, err := h.uc.History(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, Messages: msgs})
}

func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.With(r.Context(), h.log).Error().Err(err).Msg("chat request failed")
	}
	writeError(w, status, msg)
}
