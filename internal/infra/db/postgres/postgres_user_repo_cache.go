package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/domain/ports/repository"
	red "chat-assistant/internal/infra/redis"

	"github.com/rs/zerolog"
)

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

// userRepoCacheDecorator caches FindByID, the lookup behind /me and token
// refresh. Writes invalidate.
type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

// cachedUser carries the fields model.User hides from JSON.
type cachedUser struct {
	model.User
	PasswordHash   string `json:"passwordHash"`
	RefreshTokenID string `json:"refreshTokenId"`
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &userRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func userKey(id string) string { return fmt.Sprintf("user:id:%s", id) }

func (d *userRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	return d.inner.Create(ctx, tx, u)
}

func (d *userRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, u *model.User) error {
	err := d.inner.Update(ctx, tx, u)
	_ = d.cache.Del(ctx, userKey(u.ID))
	return err
}

func (d *userRepoCacheDecorator) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return d.inner.FindByEmail(ctx, tx, email)
}

func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	key := userKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var cu cachedUser
		if json.Unmarshal([]byte(val), &cu) == nil {
			u := cu.User
			u.PasswordHash, u.RefreshTokenID = cu.PasswordHash, cu.RefreshTokenID
			return &u, nil
		}
	} else if !red.IsMiss(err) {
		d.log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
	}

	u, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(cachedUser{User: *u, PasswordHash: u.PasswordHash, RefreshTokenID: u.RefreshTokenID}); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return u, nil
}
