package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses; it lets tests
// substitute a pgxmock pool.
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

type orderRepository struct {
	storage *Storage
}

type notificationRepository struct {
	storage *Storage
}

type rateRepository struct {
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

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Notifications() repository.NotificationRepository {
	return &notificationRepository{storage: s}
}

func (s *Storage) Rates() repository.RateRepository {
	return &rateRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            client_id TEXT NOT NULL,
            state INT NOT NULL CHECK (state BETWEEN 1 AND 13),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_transitions (
            id BIGSERIAL PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id),
            previous_state INT NOT NULL,
            new_state INT NOT NULL,
            occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            audience_type TEXT NOT NULL,
            audience_value TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            href TEXT NOT NULL DEFAULT '',
            severity TEXT NOT NULL DEFAULT 'info',
            order_id TEXT NOT NULL DEFAULT '',
            dedupe_key TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            unread BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS notification_reads (
            notification_id UUID NOT NULL REFERENCES notifications(id),
            user_id TEXT NOT NULL,
            read_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (notification_id, user_id)
        )`,
		`CREATE TABLE IF NOT EXISTS exchange_rates (
            id BIGSERIAL PRIMARY KEY,
            rate DOUBLE PRECISION NOT NULL,
            source TEXT NOT NULL,
            is_fallback BOOLEAN NOT NULL DEFAULT FALSE,
            metadata JSONB,
            recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_dedupe ON notifications(dedupe_key)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_audience ON notifications(audience_type, audience_value, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_order ON notifications(order_id, title, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_order ON order_transitions(order_id, occurred_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_exchange_rates_recorded ON exchange_rates(recorded_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, id, clientID string, state int) (*model.Order, error) {
	const query = `INSERT INTO orders (id, client_id, state) VALUES ($1, $2, $3)
                   ON CONFLICT (id) DO NOTHING
                   RETURNING created_at, updated_at`
	order := model.Order{ID: id, ClientID: clientID, State: state}
	err := r.storage.pool.QueryRow(ctx, query, id, clientID, state).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT id, client_id, state, created_at, updated_at FROM orders WHERE id=$1`
	var order model.Order
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&order.ID, &order.ClientID, &order.State, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) SetState(ctx context.Context, id string, previous, next int, at time.Time) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const updateQuery = `UPDATE orders SET state=$1, updated_at=$2 WHERE id=$3`
		tag, err := tx.Exec(ctx, updateQuery, next, at, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}

		const auditQuery = `INSERT INTO order_transitions (order_id, previous_state, new_state, occurred_at)
                            VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, auditQuery, id, previous, next, at); err != nil {
			return err
		}
		return nil
	})
}

// --- NotificationRepository implementation ---

func (r *notificationRepository) Insert(ctx context.Context, n *model.Notification) (string, error) {
	const query = `INSERT INTO notifications
                   (id, audience_type, audience_value, title, description, href, severity, order_id, dedupe_key, created_at, unread)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   ON CONFLICT (dedupe_key) DO NOTHING
                   RETURNING id`

	var dedupeKey *string
	if n.DedupeKey != "" {
		dedupeKey = &n.DedupeKey
	}

	var id string
	err := r.storage.pool.QueryRow(ctx, query,
		n.ID, n.AudienceType, n.AudienceValue, n.Title, n.Description,
		n.Href, n.Severity, n.OrderID, dedupeKey, n.CreatedAt, n.Unread,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainErrors.ErrAlreadyExists
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domainErrors.ErrAlreadyExists
		}
		return "", err
	}
	return id, nil
}

func (r *notificationRepository) ExistsSince(ctx context.Context, audienceType model.AudienceType, audienceValue, orderID, title string, since time.Time) (bool, error) {
	const query = `SELECT EXISTS (
                       SELECT 1 FROM notifications
                       WHERE audience_type=$1 AND audience_value=$2 AND order_id=$3 AND title=$4 AND created_at >= $5
                   )`
	var exists bool
	err := r.storage.pool.QueryRow(ctx, query, audienceType, audienceValue, orderID, title, since).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *notificationRepository) List(ctx context.Context, audienceType model.AudienceType, audienceValue string, limit int, readerID string) ([]model.Notification, error) {
	const query = `SELECT n.id, n.audience_type, n.audience_value, n.title, n.description, n.href,
                          n.severity, n.order_id, n.created_at, n.unread, r.user_id IS NOT NULL AS read
                   FROM notifications n
                   LEFT JOIN notification_reads r ON r.notification_id = n.id AND r.user_id = $3
                   WHERE n.audience_type=$1 AND n.audience_value=$2
                   ORDER BY n.created_at DESC
                   LIMIT $4`
	rows, err := r.storage.pool.Query(ctx, query, audienceType, audienceValue, readerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AudienceType, &n.AudienceValue, &n.Title, &n.Description, &n.Href,
			&n.Severity, &n.OrderID, &n.CreatedAt, &n.Unread, &n.Read); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	const query = `INSERT INTO notification_reads (notification_id, user_id)
                   VALUES ($1, $2)
                   ON CONFLICT (notification_id, user_id) DO NOTHING`
	_, err := r.storage.pool.Exec(ctx, query, notificationID, userID)
	return err
}

// --- RateRepository implementation ---

func (r *rateRepository) Insert(ctx context.Context, rec *model.ExchangeRateRecord) error {
	const query = `INSERT INTO exchange_rates (rate, source, is_fallback, metadata, recorded_at)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id`
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal rate metadata: %w", err)
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return r.storage.pool.QueryRow(ctx, query, rec.Rate, rec.Source, rec.IsFallback, metadata, ts).Scan(&rec.ID)
}

func (r *rateRepository) LatestValidSince(ctx context.Context, since time.Time) (*model.ExchangeRateRecord, error) {
	const query = `SELECT id, rate, source, is_fallback, metadata, recorded_at
                   FROM exchange_rates
                   WHERE is_fallback = FALSE AND recorded_at >= $1
                   ORDER BY recorded_at DESC, id DESC
                   LIMIT 1`
	return r.scanRecord(r.storage.pool.QueryRow(ctx, query, since))
}

func (r *rateRepository) LatestAny(ctx context.Context) (*model.ExchangeRateRecord, error) {
	const query = `SELECT id, rate, source, is_fallback, metadata, recorded_at
                   FROM exchange_rates
                   ORDER BY recorded_at DESC, id DESC
                   LIMIT 1`
	return r.scanRecord(r.storage.pool.QueryRow(ctx, query))
}

func (r *rateRepository) scanRecord(row pgx.Row) (*model.ExchangeRateRecord, error) {
	var (
		rec      model.ExchangeRateRecord
		metadata []byte
	)
	err := row.Scan(&rec.ID, &rec.Rate, &rec.Source, &rec.IsFallback, &metadata, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			r.storage.logger.Warn("malformed rate metadata", slog.Int64("id", rec.ID))
		}
	}
	return &rec, nil
}

// DeleteOlderThan removes aged records but always keeps the newest row:
// even a long-stale history must stay queryable through LatestAny.
func (r *rateRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM exchange_rates
                   WHERE recorded_at < $1
                     AND id <> (SELECT id FROM exchange_rates ORDER BY recorded_at DESC, id DESC LIMIT 1)`
	tag, err := r.storage.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
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
