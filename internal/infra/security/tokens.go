package security

import (
	"errors"
	"fmt"
	"time"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const issuer = "chat-assistant"

type TokenConfig struct {
	HMACSecret []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager signs and verifies HS256 access and refresh tokens.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		cfg: TokenConfig{HMACSecret: []byte(secret), AccessTTL: accessTTL, RefreshTTL: refreshTTL},
		now: time.Now,
	}
}

type claims struct {
	Type model.TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Mint issues a fresh pair. The refresh token's jti is returned separately so
// the caller can record it for rotation.
func (m *TokenManager) Mint(userID string) (model.TokenPair, string, error) {
	access, _, err := m.sign(userID, model.TokenAccess, m.cfg.AccessTTL)
	if err != nil {
		return model.TokenPair{}, "", err
	}
	refresh, jti, err := m.sign(userID, model.TokenRefresh, m.cfg.RefreshTTL)
	if err != nil {
		return model.TokenPair{}, "", err
	}
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.cfg.AccessTTL.Seconds()),
	}, jti, nil
}

func (m *TokenManager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *TokenManager) sign(userID string, typ model.TokenType, ttl time.Duration) (string, string, error) {
	now := m.now()
	jti := ulid.Make().String()
	c := claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.cfg.HMACSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, jti, nil
}

// Parse verifies tok and checks its type. Every failure is domain.ErrInvalidToken.
func (m *TokenManager) Parse(tok string, want model.TokenType) (model.TokenClaims, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(tok, c, func(t *jwt.Token) (any, error) {
		return m.cfg.HMACSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return model.TokenClaims{}, errors.Join(domain.ErrInvalidToken, err)
	}
	if c.Type != want || c.Subject == "" {
		return model.TokenClaims{}, domain.ErrInvalidToken
	}
	return model.TokenClaims{UserID: c.Subject, Type: c.Type, ID: c.ID}, nil
}
