package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// SQLiteOrderJournal keeps the order journal in a single SQLite file. One
// open connection serializes appends, so seq follows arrival order.
type SQLiteOrderJournal struct {
	db *sql.DB
}

func NewSQLiteOrderJournal(path string) (*SQLiteOrderJournal, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS orders (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		user_id    TEXT NOT NULL,
		items      TEXT NOT NULL,
		total      TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user_seq ON orders(user_id, seq);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteOrderJournal{db: db}, nil
}

func (j *SQLiteOrderJournal) AppendOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	items, err := encodeItems(order.Items)
	if err != nil {
		return domain.Order{}, err
	}

	result, err := j.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, items, total, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.ID, order.UserID, string(items), order.Total.String(),
		order.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return domain.Order{}, fmt.Errorf("order seq: %w", err)
	}
	order.Seq = seq
	return order, nil
}

func (j *SQLiteOrderJournal) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, id, user_id, items, total, created_at
		FROM orders WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanSQLiteOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (j *SQLiteOrderJournal) LatestOrder(ctx context.Context, userID string) (domain.Order, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT seq, id, user_id, items, total, created_at
		FROM orders WHERE user_id = ? ORDER BY seq DESC LIMIT 1`, userID)

	order, err := scanSQLiteOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, err
}

func (j *SQLiteOrderJournal) Close() error {
	return j.db.Close()
}

func scanSQLiteOrder(row rowScanner) (domain.Order, error) {
	var (
		order     domain.Order
		items     string
		createdAt string
	)
	if err := row.Scan(&order.Seq, &order.ID, &order.UserID, &items, &order.Total, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	decoded, err := decodeItems([]byte(items))
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = decoded

	order.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse created_at: %w", err)
	}
	return order, nil
}

var _ port.OrderRepository = (*SQLiteOrderJournal)(nil)
