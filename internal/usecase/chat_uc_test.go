//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"chat-assistant/internal/assistant"
	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/usecase"
)

func now() time.Time { return time.Now().Truncate(time.Millisecond) }

func TestChatUseCase_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("empty message is rejected without touching the store", func(t *testing.T) {
		store := NewMockSessionStore()
		uc := usecase.NewChatUseCase(store, &MockComposer{}, newTestLogger())

		_, err := uc.Process(ctx, usecase.ChatRequest{Message: "   ", SessionID: "s1"})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if store.Session("s1") != nil {
			t.Fatalf("session should not be created for an empty message")
		}
	})

	t.Run("happy path records both turns", func(t *testing.T) {
		store := NewMockSessionStore()
		uc := usecase.NewChatUseCase(store, assistant.NewComposer(assistant.FirstPicker), newTestLogger())

		reply, err := uc.Process(ctx, usecase.ChatRequest{
			Message:    "How do I stake my tokens?",
			RawContext: json.RawMessage(`{"currentPage":"/staking"}`),
			SessionID:  "s1",
		})
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if reply.SessionID != "s1" || reply.Context != "defi" {
			t.Fatalf("unexpected reply: %+v", reply)
		}
		if reply.TemplateID != "defi.question.0" || reply.Metadata.Intent != "question" {
			t.Fatalf("template/intent = %s/%s", reply.TemplateID, reply.Metadata.Intent)
		}

		sess := store.Session("s1")
		if len(sess.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(sess.Messages))
		}
		if sess.Messages[0].Role != model.RoleUser || sess.Messages[1].Role != model.RoleAssistant {
			t.Fatalf("unexpected roles: %s, %s", sess.Messages[0].Role, sess.Messages[1].Role)
		}
		if sess.Messages[1].Content != reply.Content {
			t.Errorf("assistant turn does not match reply content")
		}
		if sess.Context["lastCategory"] != "defi" || sess.Context["lastPage"] != "home" {
			t.Errorf("session context = %+v", sess.Context)
		}
	})

	t.Run("history from earlier turns reaches the composer", func(t *testing.T) {
		store := NewMockSessionStore()
		comp := &MockComposer{}
		uc := usecase.NewChatUseCase(store, comp, newTestLogger())

		for _, msg := range []string{"hello", "tell me about games"} {
			if _, err := uc.Process(ctx, usecase.ChatRequest{Message: msg, SessionID: "s1"}); err != nil {
				t.Fatalf("Process: %v", err)
			}
		}
		if len(comp.LastHistory) != 2 || comp.LastHistory[0].Content != "hello" {
			t.Fatalf("composer saw history %+v", comp.LastHistory)
		}
	})

	t.Run("malformed context falls back to defaults", func(t *testing.T) {
		store := NewMockSessionStore()
		var seen model.NormalizedContext
		comp := &MockComposer{ComposeFunc: func(_ model.AnalyzedMessage, nc model.NormalizedContext, _ []model.Message) model.Composition {
			seen = nc
			return model.Composition{Content: "x"}
		}}
		uc := usecase.NewChatUseCase(store, comp, newTestLogger())

		if _, err := uc.Process(ctx, usecase.ChatRequest{Message: "hi", RawContext: json.RawMessage(`{not json`)}); err != nil {
			t.Fatalf("Process: %v", err)
		}
		if seen.CurrentPage != "home" || seen.Confidence != 0.3 {
			t.Fatalf("expected default context, got page=%s confidence=%v", seen.CurrentPage, seen.Confidence)
		}
	})

	t.Run("raw page hint drives the category", func(t *testing.T) {
		store := NewMockSessionStore()
		uc := usecase.NewChatUseCase(store, assistant.NewComposer(assistant.FirstPicker), newTestLogger())

		reply, err := uc.Process(ctx, usecase.ChatRequest{
			Message:    "what is this?",
			RawContext: json.RawMessage(`{"currentPage":"games"}`),
		})
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if reply.Context != "games" {
			t.Fatalf("category = %s, want games", reply.Context)
		}
	})

	t.Run("composer panic yields the apology and no history", func(t *testing.T) {
		store := NewMockSessionStore()
		comp := &MockComposer{ComposeFunc: func(model.AnalyzedMessage, model.NormalizedContext, []model.Message) model.Composition {
			panic("boom")
		}}
		uc := usecase.NewChatUseCase(store, comp, newTestLogger())

		reply, err := uc.Process(ctx, usecase.ChatRequest{Message: "hello", SessionID: "s1"})
		if err != nil {
			t.Fatalf("apology path should not error: %v", err)
		}
		if reply.Content != assistant.ApologyContent || reply.Confidence != 0.1 || reply.Context != "general" {
			t.Fatalf("unexpected apology: %+v", reply)
		}
		if len(reply.Suggestions) != 0 || len(reply.Actions) != 0 || reply.Suggestions == nil {
			t.Fatalf("apology should carry empty, non-nil lists")
		}
		if n := len(store.Session("s1").Messages); n != 0 {
			t.Fatalf("history mutated on failure: %d messages", n)
		}
	})

	t.Run("cancelled context aborts before mutation", func(t *testing.T) {
		store := NewMockSessionStore()
		uc := usecase.NewChatUseCase(store, &MockComposer{}, newTestLogger())

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := uc.Process(cctx, usecase.ChatRequest{Message: "hello", SessionID: "s1"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if store.appended != 0 {
			t.Fatalf("store was written after cancellation")
		}
	})
}

func TestChatUseCase_HistoryAndEnd(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := usecase.NewChatUseCase(store, &MockComposer{}, newTestLogger())

	if _, err := uc.History(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("History(\"\") err = %v", err)
	}
	if _, err := uc.History(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("History(missing) err = %v", err)
	}

	if _, err := uc.Process(ctx, usecase.ChatRequest{Message: "hi", SessionID: "s1"}); err != nil {
		t.Fatal(err)
	}
	hist, err := uc.History(ctx, "s1")
	if err != nil || len(hist) != 2 {
		t.Fatalf("History = %d, %v", len(hist), err)
	}

	if err := uc.EndSession(ctx, "s1"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if err := uc.EndSession(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("second EndSession err = %v", err)
	}
}
