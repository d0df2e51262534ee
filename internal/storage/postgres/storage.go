package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool used by the storage. It exists so
// tests can substitute a pgxmock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
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

type orderRepository struct {
	storage *Storage
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
	if s.pool != nil {
		s.pool.Close()
	}
}

// Orders returns the order repository backed by this storage.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            order_key TEXT UNIQUE NOT NULL,
            reference TEXT NOT NULL,
            amount BIGINT NOT NULL,
            currency TEXT NOT NULL,
            status TEXT NOT NULL,
            transaction_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_notes (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            note TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_pending ON orders(status, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_notes_order ON order_notes(order_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// newOrderKey generates the per-order secret capability token.
func newOrderKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order key: %w", err)
	}
	return "wc_order_" + hex.EncodeToString(buf), nil
}

func (r *orderRepository) Create(ctx context.Context, amount int64, currency, reference string) (*model.Order, error) {
	key, err := newOrderKey()
	if err != nil {
		return nil, err
	}

	const query = `INSERT INTO orders (order_key, reference, amount, currency, status)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at, updated_at`
	order := model.Order{
		Key:       key,
		Reference: reference,
		Amount:    amount,
		Currency:  currency,
		Status:    model.OrderStatusPending,
	}
	err = r.storage.pool.QueryRow(ctx, query, key, reference, amount, currency, model.OrderStatusPending).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT id, order_key, reference, amount, currency, status, transaction_id, created_at, updated_at
                   FROM orders WHERE id=$1`
	var order model.Order
	err := r.storage.pool.QueryRow(ctx, query, id).
		Scan(&order.ID, &order.Key, &order.Reference, &order.Amount, &order.Currency, &order.Status, &order.TransactionID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) AttachTransaction(ctx context.Context, orderID int64, transactionID, note string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const update = `UPDATE orders SET transaction_id=$1, status=$2, updated_at=NOW() WHERE id=$3`
		tag, err := tx.Exec(ctx, update, transactionID, model.OrderStatusPending, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return insertNote(ctx, tx, orderID, note)
	})
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID int64, transactionID, note string) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		// Guarded in SQL so a racing webhook and return visit converge on paid.
		const update = `UPDATE orders SET status=$1, transaction_id=$2, updated_at=NOW() WHERE id=$3 AND status <> $1`
		tag, err := tx.Exec(ctx, update, model.OrderStatusPaid, transactionID, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists int
			if err := tx.QueryRow(ctx, `SELECT 1 FROM orders WHERE id=$1`, orderID).Scan(&exists); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domainErrors.ErrNotFound
				}
				return err
			}
			return nil
		}
		applied = true
		return insertNote(ctx, tx, orderID, note)
	})
	return applied, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, note string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const update = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
		tag, err := tx.Exec(ctx, update, status, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		if note == "" {
			return nil
		}
		return insertNote(ctx, tx, orderID, note)
	})
}

func (r *orderRepository) AddNote(ctx context.Context, orderID int64, note string) error {
	const query = `INSERT INTO order_notes (order_id, note) VALUES ($1, $2)`
	_, err := r.storage.pool.Exec(ctx, query, orderID, note)
	return err
}

func (r *orderRepository) ListNotes(ctx context.Context, orderID int64) ([]model.OrderNote, error) {
	const query = `SELECT id, order_id, note, created_at
                   FROM order_notes WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderNote
	for rows.Next() {
		var n model.OrderNote
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Note, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) SelectPendingBatch(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	const query = `SELECT id, order_key, reference, amount, currency, status, transaction_id, created_at, updated_at
                   FROM orders
                   WHERE status=$1 AND transaction_id <> ''
                     AND updated_at <= NOW() - make_interval(secs => $2)
                   ORDER BY updated_at
                   LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusPending, minAge.Seconds(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Key, &o.Reference, &o.Amount, &o.Currency, &o.Status, &o.TransactionID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func insertNote(ctx context.Context, tx pgx.Tx, orderID int64, note string) error {
	const query = `INSERT INTO order_notes (order_id, note) VALUES ($1, $2)`
	_, err := tx.Exec(ctx, query, orderID, note)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
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

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
