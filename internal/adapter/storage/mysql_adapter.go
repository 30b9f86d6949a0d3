package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id VARCHAR(128) NOT NULL PRIMARY KEY,
		stock      INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		seq        BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		id         CHAR(36) NOT NULL UNIQUE,
		user_id    VARCHAR(128) NOT NULL,
		items      JSON NOT NULL,
		total      DECIMAL(14,2) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_orders_user_seq (user_id, seq)
	)`,
}

// MySQLAdapter backs both the stock ledger and the order journal.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := m.db.QueryRowContext(ctx, `SELECT stock FROM inventory WHERE product_id = ?`, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query inventory: %w", err)
	}
	return stock, nil
}

func (m *MySQLAdapter) SetStock(ctx context.Context, productID string, quantity int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (product_id, stock) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE stock = VALUES(stock)`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

// ReserveStock locks the row for the check and the decrement, so concurrent
// reservations on the same product serialize inside MySQL.
func (m *MySQLAdapter) ReserveStock(ctx context.Context, productID string, quantity int) (domain.ReservationOutcome, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ReservationOutcome{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var stock int
	err = tx.QueryRowContext(ctx, `SELECT stock FROM inventory WHERE product_id = ? FOR UPDATE`, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReservationOutcome{}, nil
	}
	if err != nil {
		return domain.ReservationOutcome{}, fmt.Errorf("lock inventory: %w", err)
	}
	if stock < quantity {
		return domain.ReservationOutcome{}, nil
	}

	_, err = tx.ExecContext(ctx, `UPDATE inventory SET stock = stock - ? WHERE product_id = ?`, quantity, productID)
	if err != nil {
		return domain.ReservationOutcome{}, fmt.Errorf("update inventory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ReservationOutcome{}, fmt.Errorf("commit: %w", err)
	}
	return domain.ReservationOutcome{Granted: true, Remaining: stock - quantity}, nil
}

func (m *MySQLAdapter) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (product_id, stock) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE stock = stock + VALUES(stock)`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("release inventory: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) AppendOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	items, err := encodeItems(order.Items)
	if err != nil {
		return domain.Order{}, err
	}

	result, err := m.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, items, total, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.ID, order.UserID, items, order.Total, order.CreatedAt,
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

func (m *MySQLAdapter) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT seq, id, user_id, items, total, created_at
		FROM orders WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanMySQLOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (m *MySQLAdapter) LatestOrder(ctx context.Context, userID string) (domain.Order, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT seq, id, user_id, items, total, created_at
		FROM orders WHERE user_id = ? ORDER BY seq DESC LIMIT 1`, userID)

	order, err := scanMySQLOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, err
}

func scanMySQLOrder(row rowScanner) (domain.Order, error) {
	var (
		order domain.Order
		items []byte
	)
	if err := row.Scan(&order.Seq, &order.ID, &order.UserID, &items, &order.Total, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	decoded, err := decodeItems(items)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = decoded
	return order, nil
}

var (
	_ port.StockRepository = (*MySQLAdapter)(nil)
	_ port.OrderRepository = (*MySQLAdapter)(nil)
)
