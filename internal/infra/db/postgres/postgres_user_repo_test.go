//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewUserRepo(testPool)
	ctx := context.Background()
	nop := zerolog.Nop()

	t.Run("should perform full CRUD cycle", func(t *testing.T) {
		cleanup(t)

		newUser, err := model.NewUser("", "integration@example.com", "integration_user", "hash")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		if err := repo.Create(ctx, nil, newUser); err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}

		found, err := repo.FindByEmail(ctx, nil, "Integration@Example.com")
		if err != nil {
			t.Fatalf("Failed to find user by email: %v", err)
		}
		if found.ID != newUser.ID || found.LastLoginAt != nil {
			t.Errorf("unexpected user: %+v", found)
		}

		found.Username = "updated_user"
		found.RefreshTokenID = "jti-1"
		found.MarkLogin(time.Now().UTC().Truncate(time.Microsecond))
		if err := repo.Update(ctx, nil, found); err != nil {
			t.Fatalf("Failed to update user: %v", err)
		}

		updated, err := repo.FindByID(ctx, nil, found.ID)
		if err != nil {
			t.Fatalf("Failed to find user by ID: %v", err)
		}
		if updated.Username != "updated_user" || updated.RefreshTokenID != "jti-1" || updated.LastLoginAt == nil {
			t.Errorf("update not persisted: %+v", updated)
		}
	})

	t.Run("should reject duplicate emails", func(t *testing.T) {
		cleanup(t)

		a, _ := model.NewUser("", "dup@example.com", "a", "hash")
		b, _ := model.NewUser("", "dup@example.com", "b", "hash")
		if err := repo.Create(ctx, nil, a); err != nil {
			t.Fatalf("Create a: %v", err)
		}
		if err := repo.Create(ctx, nil, b); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("Create b err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("should map missing rows to ErrNotFound", func(t *testing.T) {
		cleanup(t)

		if _, err := repo.FindByID(ctx, nil, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("FindByID err = %v", err)
		}
		ghost := &model.User{ID: "ghost"}
		if err := repo.Update(ctx, nil, ghost); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Update err = %v", err)
		}
	})

	t.Run("should roll back on error inside a transaction", func(t *testing.T) {
		cleanup(t)

		tm := NewTxManager(testPool, &nop)
		boom := errors.New("boom")
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			u, _ := model.NewUser("", "tx@example.com", "tx", "hash")
			if err := repo.Create(ctx, tx, u); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WithTx err = %v", err)
		}
		if _, err := repo.FindByEmail(ctx, nil, "tx@example.com"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("row survived rollback: %v", err)
		}
	})

	t.Run("should roll back and re-panic when the callback panics", func(t *testing.T) {
		cleanup(t)

		tm := NewTxManager(testPool, &nop)
		func() {
			defer func() {
				if r := recover(); r != "kaboom" {
					t.Fatalf("recovered %v, want kaboom", r)
				}
			}()
			_ = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
				u, _ := model.NewUser("", "panic@example.com", "panic", "hash")
				if err := repo.Create(ctx, tx, u); err != nil {
					return err
				}
				panic("kaboom")
			})
		}()
		if _, err := repo.FindByEmail(ctx, nil, "panic@example.com"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("row survived panic: %v", err)
		}
	})

	t.Run("should commit when the callback succeeds", func(t *testing.T) {
		cleanup(t)

		tm := NewTxManager(testPool, &nop)
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			u, _ := model.NewUser("", "commit@example.com", "commit", "hash")
			return repo.Create(ctx, tx, u)
		})
		if err != nil {
			t.Fatalf("WithTx err = %v", err)
		}
		if _, err := repo.FindByEmail(ctx, nil, "commit@example.com"); err != nil {
			t.Fatalf("committed row missing: %v", err)
		}
	})
}
