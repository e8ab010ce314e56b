package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one turn within a chat session. Immutable once appended.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Session is one conversational thread. Only the session store mutates it.
type Session struct {
	ID           string         `json:"id"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
	Messages     []Message      `json:"messages"`
	MessageCount int            `json:"messageCount"`
	Preferences  map[string]any `json:"preferences"`
	Context      map[string]any `json:"context"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		Messages:     make([]Message, 0, 8),
		Preferences:  map[string]any{},
		Context:      map[string]any{},
	}
}

// AddMessage appends a turn and drops the oldest entries beyond maxMessages.
func (s *Session) AddMessage(role Role, content string, metadata map[string]any, maxMessages int, now time.Time) Message {
	s.MessageCount++
	msg := Message{
		ID:        fmt.Sprintf("%s-%d", s.ID, s.MessageCount),
		Role:      role,
		Content:   content,
		CreatedAt: now,
		Metadata:  metadata,
	}
	s.Messages = append(s.Messages, msg)
	if maxMessages > 0 && len(s.Messages) > maxMessages {
		drop := len(s.Messages) - maxMessages
		kept := make([]Message, maxMessages)
		copy(kept, s.Messages[drop:])
		s.Messages = kept
	}
	s.Touch(now)
	return msg
}

// Touch refreshes the activity timestamp; it never moves backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

func (s *Session) SetPreference(key string, value any) {
	if s.Preferences == nil {
		s.Preferences = map[string]any{}
	}
	s.Preferences[key] = value
}

func (s *Session) SetContext(key string, value any) {
	if s.Context == nil {
		s.Context = map[string]any{}
	}
	s.Context[key] = value
}

// LastUserMessage returns the most recent user turn in the given history.
func LastUserMessage(history []Message) (Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i], true
		}
	}
	return Message{}, false
}
