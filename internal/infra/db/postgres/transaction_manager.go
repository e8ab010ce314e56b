package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/ports/repository"
	"chat-assistant/internal/infra/logging"
)

var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager runs account writes in one Postgres transaction. The tx handle
// reaches the callback as a pgx.Tx and is accepted by every UserRepo method.
type TxManager struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewTxManager(pool *pgxpool.Pool, logger *zerolog.Logger) *TxManager {
	l := logger.With().Str("component", "TxManager").Logger()
	return &TxManager{pool: pool, log: &l}
}

// WithTx commits when fn returns nil. An error or a panic in fn rolls the
// transaction back; the panic is re-raised afterwards.
func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) (err error) {
	defer logging.TraceDuration(m.log, "TxManager.WithTx")()

	tx, err := m.pool.BeginTx(ctx, txOpt)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			m.rollback(tx)
			panic(p)
		}
		if err != nil {
			m.rollback(tx)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// rollback runs detached from the caller's context so a cancelled request
// still releases the connection.
func (m *TxManager) rollback(tx pgx.Tx) {
	err := tx.Rollback(context.Background())
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		m.log.Error().Err(err).Msg("rollback failed")
	}
}

type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

func getExecutor(pool *pgxpool.Pool, tx repository.Tx) (executor, error) {
	switch v := tx.(type) {
	case pgx.Tx:
		return v, nil
	case *pgxpool.Conn:
		return v, nil
	case *pgxpool.Pool:
		return v, nil
	case nil:
		if pool != nil {
			return pool, nil
		}
		return nil, domain.ErrInvalidArgument
	default:
		return nil, domain.ErrInvalidExecContext
	}
}
