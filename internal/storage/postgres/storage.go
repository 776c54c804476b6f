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

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
)

// pgxPool abstracts pgxpool.Pool so tests can substitute a mock.
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

type roleRepository struct {
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

func (s *Storage) Roles() repository.RoleRepository {
	return &roleRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            payment_id TEXT,
            payment_date TIMESTAMPTZ,
            notes TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            user_id TEXT NOT NULL DEFAULT '',
            address JSONB NOT NULL DEFAULT 'null',
            items JSONB NOT NULL DEFAULT '[]',
            subtotal_cents BIGINT NOT NULL DEFAULT 0,
            shipping_cents BIGINT NOT NULL DEFAULT 0,
            tax_cents BIGINT NOT NULL DEFAULT 0,
            discount_cents BIGINT NOT NULL DEFAULT 0,
            total_cents BIGINT NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            status_history JSONB NOT NULL DEFAULT '[]',
            tracking_number TEXT NOT NULL DEFAULT '',
            shipping_provider TEXT NOT NULL DEFAULT '',
            shipped_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            admin_notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS admin_users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'admin',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq`,
		// One row per completed payment: duplicate confirmed inserts for
		// the same charge collapse into a unique violation.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_payment_id ON orders(payment_id) WHERE payment_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_orders_updated ON orders(updated_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, number, payment_id, payment_date, notes, email, phone, user_id,
        address, items, subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents,
        status, payment_status, status_history, tracking_number, shipping_provider,
        shipped_at, delivered_at, admin_notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o       model.Order
		address []byte
		items   []byte
		history []byte
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.PaymentID, &o.PaymentDate, &o.Notes, &o.Email, &o.Phone, &o.UserID,
		&address, &items, &o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.DiscountCents, &o.TotalCents,
		&o.Status, &o.PaymentStatus, &history, &o.TrackingNumber, &o.ShippingProvider,
		&o.ShippedAt, &o.DeliveredAt, &o.AdminNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.AddressJSON = json.RawMessage(address)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.History); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) insert(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (
            id, number, payment_id, payment_date, notes, email, phone, user_id,
            address, items, subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents,
            status, payment_status, status_history, admin_notes
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING created_at, updated_at`

	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	history, err := json.Marshal(order.History)
	if err != nil {
		return nil, fmt.Errorf("encode status history: %w", err)
	}
	address := []byte(order.AddressJSON)
	if len(address) == 0 {
		address = []byte("null")
	}

	row := r.storage.pool.QueryRow(ctx, query,
		order.ID, order.Number, order.PaymentID, order.PaymentDate, order.Notes,
		order.Email, order.Phone, order.UserID, address, items,
		order.SubtotalCents, order.ShippingCents, order.TaxCents, order.DiscountCents, order.TotalCents,
		order.Status, order.PaymentStatus, history, order.AdminNotes,
	)
	if err := row.Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, domainErrors.Persistence("insert order", err)
	}
	return order, nil
}

func (r *orderRepository) InsertDraft(ctx context.Context, order *model.Order) (*model.Order, error) {
	return r.insert(ctx, order)
}

func (r *orderRepository) InsertConfirmed(ctx context.Context, order *model.Order) (*model.Order, error) {
	return r.insert(ctx, order)
}

func (r *orderRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, domainErrors.Persistence(op, err)
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.getOne(ctx, "get order by id",
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.getOne(ctx, "get order by number",
		`SELECT `+orderColumns+` FROM orders WHERE number=$1`, number)
}

func (r *orderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	return r.getOne(ctx, "get order by payment id",
		`SELECT `+orderColumns+` FROM orders WHERE payment_id=$1`, paymentID)
}

func (r *orderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	return r.getOne(ctx, "find order by gateway order id",
		`SELECT `+orderColumns+` FROM orders WHERE notes LIKE '%' || $1 || '%' ORDER BY created_at DESC LIMIT 1`,
		gatewayOrderID)
}

func (r *orderRepository) StatusHistory(ctx context.Context, orderID string) (model.StatusHistory, error) {
	const query = `SELECT status_history FROM orders WHERE id=$1`
	var raw []byte
	if err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, domainErrors.Persistence("fetch status history", err)
	}
	var history model.StatusHistory
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &history); err != nil {
			return nil, domainErrors.Persistence("fetch status history", err)
		}
	}
	return history, nil
}

func (r *orderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM orders WHERE number=$1)`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, domainErrors.Persistence("check order number", err)
	}
	return exists, nil
}

func (r *orderRepository) NextOrderSeq(ctx context.Context) (int64, error) {
	const query = `SELECT nextval('order_number_seq')`
	var seq int64
	if err := r.storage.pool.QueryRow(ctx, query).Scan(&seq); err != nil {
		return 0, domainErrors.Persistence("next order sequence", err)
	}
	return seq, nil
}

// UpdateStatus applies patch inside a single transaction with the row
// locked. A history entry is appended only when the status actually
// changes; shipped_at/delivered_at are stamped the first time the
// corresponding status is reached, checked against prior history so a
// bouncing status never re-stamps them. Shipment metadata is set once and
// never overwritten.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, patch repository.OrderPatch) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const selectQuery = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		order, err := scanOrder(tx.QueryRow(ctx, selectQuery, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()
		prior := order.History

		switch {
		case patch.Status != nil && *patch.Status != order.Status:
			order.History = order.History.Append(*patch.Status, now, patch.HistoryNote)
			order.Status = *patch.Status
		case patch.Status == nil && patch.HistoryNote != "":
			order.History = order.History.Append(order.Status, now, patch.HistoryNote)
		}

		if order.Status == model.OrderStatusShipped && order.ShippedAt == nil && !prior.Contains(model.OrderStatusShipped) {
			order.ShippedAt = &now
		}
		if order.Status == model.OrderStatusDelivered && order.DeliveredAt == nil && !prior.Contains(model.OrderStatusDelivered) {
			order.DeliveredAt = &now
		}

		if patch.PaymentStatus != nil {
			order.PaymentStatus = *patch.PaymentStatus
		}
		if patch.PaymentID != nil && *patch.PaymentID != "" {
			order.PaymentID = patch.PaymentID
		}
		if patch.PaymentDate != nil {
			order.PaymentDate = patch.PaymentDate
		}
		if patch.TrackingNumber != nil && order.TrackingNumber == "" {
			order.TrackingNumber = *patch.TrackingNumber
		}
		if patch.ShippingProvider != nil && order.ShippingProvider == "" {
			order.ShippingProvider = *patch.ShippingProvider
		}
		if patch.AdminNotes != nil {
			order.AdminNotes = *patch.AdminNotes
		}

		history, err := json.Marshal(order.History)
		if err != nil {
			return fmt.Errorf("encode status history: %w", err)
		}

		const updateQuery = `UPDATE orders SET
                status=$1, payment_status=$2, payment_id=$3, payment_date=$4,
                status_history=$5, tracking_number=$6, shipping_provider=$7,
                shipped_at=$8, delivered_at=$9, admin_notes=$10, updated_at=$11
            WHERE id=$12`
		if _, err := tx.Exec(ctx, updateQuery,
			order.Status, order.PaymentStatus, order.PaymentID, order.PaymentDate,
			history, order.TrackingNumber, order.ShippingProvider,
			order.ShippedAt, order.DeliveredAt, order.AdminNotes, now, orderID,
		); err != nil {
			return err
		}

		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
		return nil, domainErrors.Persistence("update order", err)
	}
	return updated, nil
}

func (r *orderRepository) ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE updated_at > $1 ORDER BY updated_at LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, domainErrors.Persistence("list updated orders", err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domainErrors.Persistence("list updated orders", err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, domainErrors.Persistence("list updated orders", err)
	}
	return result, nil
}

// --- RoleRepository implementation ---

func (r *roleRepository) GetByLogin(ctx context.Context, login string) (*model.AdminUser, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM admin_users WHERE login=$1`
	var u model.AdminUser
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, domainErrors.Persistence("get admin by login", err)
	}
	return &u, nil
}

func (r *roleRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM admin_users WHERE id=$1 AND role='admin')`
	var ok bool
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&ok); err != nil {
		return false, domainErrors.Persistence("check admin role", err)
	}
	return ok, nil
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
