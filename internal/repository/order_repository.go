package repository

import (
	"database/sql"
	"fmt"
	"time"

	"trading-bot/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS orders (
		order_id   TEXT PRIMARY KEY,
		symbol     TEXT NOT NULL,
		side       TEXT NOT NULL,
		order_type TEXT NOT NULL,
		price      DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity   DOUBLE PRECISION NOT NULL,
		status     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)
`

// OrderRepository журнал ордеров, размещённых из консоли.
type OrderRepository interface {
	EnsureSchema() error
	InsertOrder(order *model.Order) error
	UpdateStatus(orderID, status string) (bool, error)
}

// orderRepository — реализация OrderRepository.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository возвращает новую реализацию OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{
		db: db,
	}
}

func (r *orderRepository) EnsureSchema() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

// InsertOrder вставляет новый ордер; повторная вставка того же id обновляет статус.
func (r *orderRepository) InsertOrder(order *model.Order) error {
	query := `
		INSERT INTO orders
		(order_id, symbol, side, order_type, price, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.db.Exec(query, order.OrderID, order.Symbol, order.Side, order.OrderType,
		order.Price, order.Quantity, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("InsertOrder: %w", err)
	}
	return nil
}

// UpdateStatus обновляет статус; false, если ордера в журнале нет.
func (r *orderRepository) UpdateStatus(orderID, status string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3
	`
	res, err := r.db.Exec(query, status, time.Now(), orderID)
	if err != nil {
		return false, fmt.Errorf("UpdateStatus: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("UpdateStatus: %w", err)
	}
	return n > 0, nil
}
