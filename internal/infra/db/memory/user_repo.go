// Package memory is the default, process-local user store used when no
// database is configured.
package memory

import (
	"context"
	"sync"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/domain/ports/repository"
	"chat-assistant/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.TransactionManager = (*TxManager)(nil)
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepo) Create(_ context.Context, _ repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := model.NormalizeEmail(u.Email)
	if _, taken := r.byEmail[email]; taken {
		metrics.ObserveUserStore("memory", "create", domain.ErrAlreadyExists)
		return domain.ErrAlreadyExists
	}
	if _, taken := r.byID[u.ID]; taken {
		metrics.ObserveUserStore("memory", "create", domain.ErrAlreadyExists)
		return domain.ErrAlreadyExists
	}
	r.byID[u.ID] = *u
	r.byEmail[email] = u.ID
	metrics.ObserveUserStore("memory", "create", nil)
	return nil
}

func (r *UserRepo) Update(_ context.Context, _ repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	newEmail := model.NormalizeEmail(u.Email)
	if owner, taken := r.byEmail[newEmail]; taken && owner != u.ID {
		return domain.ErrAlreadyExists
	}
	delete(r.byEmail, model.NormalizeEmail(prev.Email))
	r.byEmail[newEmail] = u.ID
	r.byID[u.ID] = *u
	metrics.ObserveUserStore("memory", "update", nil)
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

// TxManager runs fn directly. The repository serializes writes itself; a
// failed fn leaves earlier writes in place.
type TxManager struct{}

func (TxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}
