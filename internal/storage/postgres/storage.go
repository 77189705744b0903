package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/ordertrack/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type promptRepository struct {
	storage *Storage
	ttl     time.Duration
	now     func() time.Time
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Prompts returns the prompted-orders repository. Rows older than ttl are
// treated as expired; a non-positive ttl keeps them forever.
func (s *Storage) Prompts(ttl time.Duration) repository.PromptRepository {
	return &promptRepository{storage: s, ttl: ttl, now: time.Now}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tracked_prompts (
            rider_id TEXT NOT NULL,
            order_id TEXT NOT NULL,
            prompted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (rider_id, order_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_prompts_age ON tracked_prompts(rider_id, prompted_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- PromptRepository implementation ---

func (r *promptRepository) Load(ctx context.Context, riderID string) ([]string, error) {
	var ids []string
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if r.ttl > 0 {
			const prune = `DELETE FROM tracked_prompts WHERE rider_id=$1 AND prompted_at < $2`
			tag, err := tx.Exec(ctx, prune, riderID, r.now().Add(-r.ttl))
			if err != nil {
				return err
			}
			if n := tag.RowsAffected(); n > 0 {
				r.storage.logger.Debug("pruned expired prompts", slog.String("rider", riderID), slog.Int64("rows", n))
			}
		}

		const query = `SELECT order_id FROM tracked_prompts WHERE rider_id=$1 ORDER BY prompted_at`
		rows, err := tx.Query(ctx, query, riderID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return ids, nil
}

func (r *promptRepository) Add(ctx context.Context, riderID, orderID string) error {
	const query = `INSERT INTO tracked_prompts (rider_id, order_id, prompted_at) VALUES ($1, $2, $3)
                   ON CONFLICT (rider_id, order_id) DO UPDATE SET prompted_at = EXCLUDED.prompted_at`
	if _, err := r.storage.pool.Exec(ctx, query, riderID, orderID, r.now()); err != nil {
		return fmt.Errorf("add prompt: %w", err)
	}
	return nil
}

func (r *promptRepository) Remove(ctx context.Context, riderID, orderID string) error {
	const query = `DELETE FROM tracked_prompts WHERE rider_id=$1 AND order_id=$2`
	if _, err := r.storage.pool.Exec(ctx, query, riderID, orderID); err != nil {
		return fmt.Errorf("remove prompt: %w", err)
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
