//go:build !integration

package usecase_test

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/domain/ports/repository"
	"chat-assistant/internal/usecase"

	"github.com/jackc/pgx/v4"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Composer ----

type MockComposer struct {
	ComposeFunc func(a model.AnalyzedMessage, nc model.NormalizedContext, history []model.Message) model.Composition
	Calls       int
	LastHistory []model.Message
}

var _ usecase.Composer = (*MockComposer)(nil)

func (m *MockComposer) Compose(a model.AnalyzedMessage, nc model.NormalizedContext, history []model.Message) model.Composition {
	m.Calls++
	m.LastHistory = history
	if m.ComposeFunc != nil {
		return m.ComposeFunc(a, nc, history)
	}
	return model.Composition{Content: "ok", TemplateID: "general.default.0", Confidence: 0.5}
}

// ---- SessionStore ----

type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	appended int
}

var _ usecase.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: map[string]*model.Session{}}
}

func (m *MockSessionStore) Resolve(id string) model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = "generated"
	}
	s, ok := m.sessions[id]
	if !ok {
		s = model.NewSession(id, now())
		m.sessions[id] = s
	}
	return *s
}

func (m *MockSessionStore) Append(id string, role model.Role, content string, md map[string]any) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.Message{}, domain.ErrSessionNotFound
	}
	m.appended++
	return s.AddMessage(role, content, md, 50, now()), nil
}

func (m *MockSessionStore) History(id string) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]model.Message(nil), s.Messages...), nil
}

func (m *MockSessionStore) SetContext(id, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.SetContext(key, value)
	return nil
}

func (m *MockSessionStore) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *MockSessionStore) Session(id string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// ---- UserRepository ----

type MockUserRepo struct {
	mu      sync.Mutex
	byID    map[string]model.User
	Updates int

	FindByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo { return &MockUserRepo{byID: map[string]model.User{}} }

func (m *MockUserRepo) Create(_ context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email {
			return domain.ErrAlreadyExists
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *MockUserRepo) Update(_ context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	m.Updates++
	m.byID[u.ID] = *u
	return nil
}

func (m *MockUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, tx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range m.byID {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- TransactionManager ----

type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}
