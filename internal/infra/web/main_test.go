//go:build !integration

package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-assistant/internal/assistant"
	"chat-assistant/internal/infra/db/memory"
	"chat-assistant/internal/infra/security"
	"chat-assistant/internal/infra/session"
	"chat-assistant/internal/usecase"

	"github.com/rs/zerolog"
)

const testSecret = "test-secret-0123456789abcdef-0123456789"

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type testEnv struct {
	handler http.Handler
	store   *session.Store
	tokens  *security.TokenManager
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	logger := newTestLogger()
	store := session.New(session.Config{MaxSessions: 10, MaxMessages: 10, IdleTimeout: time.Hour}, logger)
	tokens := security.NewTokenManager(testSecret, time.Minute, time.Hour)

	chatUC := usecase.NewChatUseCase(store, assistant.NewComposer(assistant.FirstPicker), logger)
	authUC := usecase.NewAuthUseCase(memory.NewUserRepo(), memory.TxManager{}, security.NewPasswordHasher(4), tokens, true, logger)

	if opts.Metrics == nil {
		opts.Metrics = http.NotFoundHandler()
	}
	srv := NewServer(chatUC, authUC, tokens, opts, logger)
	return &testEnv{handler: srv.Handler(), store: store, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}
