// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chat-assistant/internal/assistant"
	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/infra/logging"
	"chat-assistant/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatRequest is one inbound chat message. RawContext is the freeform client
// page context and may be empty or malformed.
type ChatRequest struct {
	Message    string
	RawContext json.RawMessage
	SessionID  string
	UserID     string
}

type ChatUseCase interface {
	Process(ctx context.Context, req ChatRequest) (*model.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]model.Message, error)
	EndSession(ctx context.Context, sessionID string) error
}

// SessionStore is the slice of the session store the pipeline uses.
type SessionStore interface {
	Resolve(id string) model.Session
	Append(id string, role model.Role, content string, metadata map[string]any) (model.Message, error)
	History(id string) ([]model.Message, error)
	SetContext(id, key string, value any) error
	Remove(id string) bool
}

type Composer interface {
	Compose(a model.AnalyzedMessage, nc model.NormalizedContext, history []model.Message) model.Composition
}

const apologyConfidence = 0.1

type chatUC struct {
	sessions SessionStore
	composer Composer
	classify func(text, pageHint string) model.AnalyzedMessage
	now      func() time.Time
	log      *zerolog.Logger
}

func NewChatUseCase(sessions SessionStore, composer Composer, logger *zerolog.Logger) *chatUC {
	return &chatUC{
		sessions: sessions,
		composer: composer,
		classify: assistant.Classify,
		now:      time.Now,
		log:      logger,
	}
}

func (c *chatUC) Process(ctx context.Context, req ChatRequest) (*model.ChatReply, error) {
	defer logging.TraceDuration(c.log, "ChatUC.Process")()
	start := time.Now()

	text := strings.TrimSpace(req.Message)
	if text == "" {
		metrics.ObserveChat(model.CategoryGeneral, "rejected", time.Since(start), 0)
		return nil, fmt.Errorf("empty message: %w", domain.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess := c.sessions.Resolve(req.SessionID)
	ctx = logging.WithSessID(ctx, sess.ID)
	if req.UserID != "" {
		ctx = logging.WithUserID(ctx, req.UserID)
	}
	log := logging.With(ctx, c.log)

	history, err := c.sessions.History(sess.ID)
	if err != nil {
		// evicted between Resolve and History; answer without memory
		history = nil
	}

	raw, nc := c.normalize(req.RawContext)
	a, comp, err := c.analyze(text, pageHint(raw), nc, history)
	if err != nil {
		log.Error().Err(err).Msg("chat pipeline failed; replying with apology")
		reply := apology(sess.ID, time.Since(start))
		metrics.ObserveChat(model.CategoryGeneral, "fallback", time.Since(start), reply.Confidence)
		return reply, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := c.sessions.Append(sess.ID, model.RoleUser, text, map[string]any{
		"page":    nc.CurrentPage,
		"section": nc.CurrentSection,
	}); err != nil {
		log.Warn().Err(err).Msg("user turn not recorded")
	}
	if _, err := c.sessions.Append(sess.ID, model.RoleAssistant, comp.Content, map[string]any{
		"intent":     a.Intent,
		"category":   a.Category,
		"confidence": comp.Confidence,
		"templateId": comp.TemplateID,
	}); err != nil {
		log.Warn().Err(err).Msg("assistant turn not recorded")
	}
	_ = c.sessions.SetContext(sess.ID, "lastCategory", a.Category)
	_ = c.sessions.SetContext(sess.ID, "lastPage", nc.CurrentPage)
	if req.UserID != "" {
		_ = c.sessions.SetContext(sess.ID, "userId", req.UserID)
	}

	elapsed := time.Since(start)
	log.Debug().
		Str("intent", a.Intent).
		Str("category", a.Category).
		Str("urgency", string(a.Urgency)).
		Str("template", comp.TemplateID).
		Float64("confidence", comp.Confidence).
		Dur("elapsed", elapsed).
		Msg("chat reply composed")
	metrics.ObserveChat(a.Category, "ok", elapsed, comp.Confidence)

	return &model.ChatReply{
		Content:        comp.Content,
		Confidence:     comp.Confidence,
		Context:        a.Category,
		Suggestions:    comp.Suggestions,
		Actions:        comp.Actions,
		ProcessingTime: elapsed.Milliseconds(),
		Metadata: model.ReplyMetadata{
			Intent:    a.Intent,
			Entities:  a.Entities,
			Sentiment: a.Sentiment,
		},
		SessionID:  sess.ID,
		TemplateID: comp.TemplateID,
	}, nil
}

func (c *chatUC) normalize(rawContext json.RawMessage) (map[string]any, model.NormalizedContext) {
	now := c.now()
	var raw map[string]any
	if len(rawContext) == 0 || json.Unmarshal(rawContext, &raw) != nil || raw == nil {
		return nil, assistant.DefaultContext(now)
	}
	return raw, assistant.Normalize(raw, now)
}

// analyze turns a panic in classification or composition into an error.
func (c *chatUC) analyze(text, page string, nc model.NormalizedContext, history []model.Message) (a model.AnalyzedMessage, comp model.Composition, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	a = c.classify(text, page)
	comp = c.composer.Compose(a, nc, history)
	return a, comp, nil
}

// pageHint is the caller's raw currentPage; the normalized page is a closed
// set and loses section names like "games".
func pageHint(raw map[string]any) string {
	s, _ := raw["currentPage"].(string)
	return s
}

func apology(sessionID string, elapsed time.Duration) *model.ChatReply {
	return &model.ChatReply{
		Content:        assistant.ApologyContent,
		Confidence:     apologyConfidence,
		Context:        model.CategoryGeneral,
		Suggestions:    []string{},
		Actions:        []model.Action{},
		ProcessingTime: elapsed.Milliseconds(),
		Metadata: model.ReplyMetadata{
			Intent:    model.IntentGeneral,
			Entities:  model.Entities{Games: []string{}, Amounts: []string{}, Timeframes: []string{}, Features: []string{}, Currencies: []string{}},
			Sentiment: model.SentimentNeutral,
		},
		SessionID: sessionID,
	}
}

func (c *chatUC) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return c.sessions.History(sessionID)
}

func (c *chatUC) EndSession(ctx context.Context, sessionID string) error {
	if !c.sessions.Remove(sessionID) {
		return domain.ErrSessionNotFound
	}
	logging.With(logging.WithSessID(ctx, sessionID), c.log).Info().Msg("session ended")
	return nil
}
