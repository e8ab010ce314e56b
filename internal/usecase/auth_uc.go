package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/domain/ports/repository"
	"chat-assistant/internal/infra/logging"
	"chat-assistant/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string) (*model.User, model.TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.User, model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Mint(userID string) (model.TokenPair, string, error)
	Parse(tok string, want model.TokenType) (model.TokenClaims, error)
}

type authUC struct {
	users  repository.UserRepository
	tm     repository.TransactionManager
	hasher PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
	dev    bool
	log    *zerolog.Logger
}

func NewAuthUseCase(users repository.UserRepository, tm repository.TransactionManager, hasher PasswordHasher, tokens TokenIssuer, dev bool, logger *zerolog.Logger) *authUC {
	return &authUC{
		users:  users,
		tm:     tm,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		dev:    dev,
		log:    logger,
	}
}

func (u *authUC) Register(ctx context.Context, email, username, password string) (*model.User, model.TokenPair, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Register")()

	hash, err := u.hasher.Hash(password)
	if err != nil {
		metrics.IncAuthEvent("register", "rejected")
		return nil, model.TokenPair{}, err
	}
	user, err := model.NewUser("", email, username, hash)
	if err != nil {
		metrics.IncAuthEvent("register", "rejected")
		return nil, model.TokenPair{}, err
	}

	var pair model.TokenPair
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.users.FindByEmail(ctx, tx, user.Email); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		var jti string
		pair, jti, err = u.tokens.Mint(user.ID)
		if err != nil {
			return err
		}
		user.RefreshTokenID = jti
		user.MarkLogin(u.now())
		return u.users.Create(ctx, tx, user)
	})
	if err != nil {
		metrics.IncAuthEvent("register", outcome(err))
		if !errors.Is(err, domain.ErrAlreadyExists) {
			u.log.Error().Err(err).Msg("register failed")
		}
		return nil, model.TokenPair{}, err
	}

	metrics.IncAuthEvent("register", "ok")
	u.log.Info().Str("user_id", user.ID).Str("email", logging.Redact(user.Email, u.dev)).Msg("user registered")
	return user, pair, nil
}

func (u *authUC) Login(ctx context.Context, email, password string) (*model.User, model.TokenPair, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Login")()

	user, err := u.users.FindByEmail(ctx, nil, model.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncAuthEvent("login", "rejected")
		return nil, model.TokenPair{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		metrics.IncAuthEvent("login", "error")
		return nil, model.TokenPair{}, fmt.Errorf("find user: %w", err)
	}
	if err := u.hasher.Compare(user.PasswordHash, password); err != nil {
		metrics.IncAuthEvent("login", outcome(err))
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, model.TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, model.TokenPair{}, err
	}

	pair, err := u.rotate(ctx, user)
	if err != nil {
		metrics.IncAuthEvent("login", "error")
		return nil, model.TokenPair{}, err
	}
	metrics.IncAuthEvent("login", "ok")
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new pair. Only the most recently
// issued refresh token is accepted; using it revokes it.
func (u *authUC) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Refresh")()

	claims, err := u.tokens.Parse(strings.TrimSpace(refreshToken), model.TokenRefresh)
	if err != nil {
		metrics.IncAuthEvent("refresh", "rejected")
		return model.TokenPair{}, domain.ErrInvalidToken
	}
	user, err := u.users.FindByID(ctx, nil, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncAuthEvent("refresh", "rejected")
		return model.TokenPair{}, domain.ErrInvalidToken
	}
	if err != nil {
		metrics.IncAuthEvent("refresh", "error")
		return model.TokenPair{}, fmt.Errorf("find user: %w", err)
	}
	if user.RefreshTokenID == "" || user.RefreshTokenID != claims.ID {
		metrics.IncAuthEvent("refresh", "rejected")
		u.log.Warn().Str("user_id", user.ID).Msg("stale refresh token presented")
		return model.TokenPair{}, domain.ErrInvalidToken
	}

	pair, err := u.rotate(ctx, user)
	if err != nil {
		metrics.IncAuthEvent("refresh", "error")
		return model.TokenPair{}, err
	}
	metrics.IncAuthEvent("refresh", "ok")
	return pair, nil
}

func (u *authUC) rotate(ctx context.Context, user *model.User) (model.TokenPair, error) {
	pair, jti, err := u.tokens.Mint(user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	user.RefreshTokenID = jti
	user.MarkLogin(u.now())
	if err := u.users.Update(ctx, nil, user); err != nil {
		return model.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

func (u *authUC) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, domain.ErrInvalidToken
	}
	return u.users.FindByID(ctx, nil, userID)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrWeakPassword):
		return "rejected"
	default:
		return "error"
	}
}
