package repository

import (
	"context"

	"chat-assistant/internal/domain/model"
)

// UserRepository stores auth accounts. Lookups that find nothing return
// domain.ErrNotFound; Create on a taken email returns domain.ErrAlreadyExists.
type UserRepository interface {
	Create(ctx context.Context, tx Tx, u *model.User) error
	Update(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
}
