package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	ordererrors "github.com/vinkj/autoshop/internal/order/errors"
)

type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const findOrderSQL = `
SELECT id, total_price, full_name, phone_number, estate, street_address, payment_method, status, created_at, updated_at
FROM orders
WHERE id = $1`

const findOrderItemsSQL = `
SELECT id, order_id, product_id, quantity, unit_price, price
FROM order_items
WHERE order_id = $1
ORDER BY id`

func (p *PgStore) FindByID(ctx context.Context, id int64) (*Order, []OrderItem, error) {
	var order *Order
	var items []OrderItem

	// Use transaction to ensure atomicity and consistency
	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, findOrderSQL, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ordererrors.ErrOrderNotFound
			}
			return fmt.Errorf("failed to find order: %w", err)
		}
		rows, err := tx.Query(ctx, findOrderItemsSQL, id)
		if err != nil {
			return fmt.Errorf("failed to find order items: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var item OrderItem
			if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Price); err != nil {
				return fmt.Errorf("failed to scan order item: %w", err)
			}
			items = append(items, item)
		}
		order = o
		return rows.Err()
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return order, items, nil
}

const findOrdersSQL = `
SELECT id, total_price, full_name, phone_number, estate, street_address, payment_method, status, created_at, updated_at
FROM orders
ORDER BY id DESC
OFFSET $1 LIMIT $2`

func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Order, error) {
	rows, err := p.db.Query(ctx, findOrdersSQL, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

const lockProductSQL = `
SELECT price, stock_quantity
FROM products
WHERE id = $1
FOR UPDATE`

const insertOrderSQL = `
INSERT INTO orders (total_price, full_name, phone_number, estate, street_address, payment_method, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, total_price, full_name, phone_number, estate, street_address, payment_method, status, created_at, updated_at`

const insertOrderItemSQL = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

const decrementStockSQL = `
UPDATE products
SET stock_quantity = stock_quantity - $2,
    is_available   = (stock_quantity - $2) > 0,
    updated_at     = now()
WHERE id = $1`

func (p *PgStore) CreateOrder(ctx context.Context, params CreateOrderParams, specs []ItemSpec) (*Order, []OrderItem, error) {
	var createdOrder *Order
	var createdItems []OrderItem

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		// Lock each product row, verify stock and price the line items
		// before any insert.
		var totalPrice int64
		priced := make([]OrderItem, 0, len(specs))
		for _, spec := range specs {
			var price int64
			var stock int32
			err := tx.QueryRow(ctx, lockProductSQL, spec.ProductID).Scan(&price, &stock)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("product %d: %w", spec.ProductID, ordererrors.ErrProductNotFound)
				}
				return fmt.Errorf("failed to lock product %d: %w", spec.ProductID, err)
			}
			if stock < spec.Quantity {
				return fmt.Errorf("product %d. Available: %d, Requested: %d: %w",
					spec.ProductID, stock, spec.Quantity, ordererrors.ErrInsufficientStock)
			}
			linePrice := price * int64(spec.Quantity)
			priced = append(priced, OrderItem{
				ProductID: spec.ProductID,
				Quantity:  spec.Quantity,
				UnitPrice: price,
				Price:     linePrice,
			})
			totalPrice += linePrice
		}

		order, err := scanOrder(tx.QueryRow(ctx, insertOrderSQL,
			totalPrice, params.FullName, params.PhoneNumber, params.Estate,
			params.StreetAddress, params.PaymentMethod, StatusPending))
		if err != nil {
			return ordererrors.ErrCreateOrder
		}

		for i := range priced {
			priced[i].OrderID = order.ID
			err := tx.QueryRow(ctx, insertOrderItemSQL,
				order.ID, priced[i].ProductID, priced[i].Quantity, priced[i].UnitPrice, priced[i].Price).
				Scan(&priced[i].ID)
			if err != nil {
				return ordererrors.ErrCreateOrderItem
			}
			if _, err := tx.Exec(ctx, decrementStockSQL, priced[i].ProductID, priced[i].Quantity); err != nil {
				return fmt.Errorf("failed to decrement stock for product %d: %w", priced[i].ProductID, err)
			}
		}

		createdOrder = order
		createdItems = priced
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return createdOrder, createdItems, nil
}

const lockOrderSQL = findOrderSQL + `
FOR UPDATE`

const restoreStockSQL = `
UPDATE products
SET stock_quantity = stock_quantity + $2,
    is_available   = TRUE,
    updated_at     = now()
WHERE id = $1`

const cancelOrderSQL = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, total_price, full_name, phone_number, estate, street_address, payment_method, status, created_at, updated_at`

func (p *PgStore) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	var cancelled *Order

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx, lockOrderSQL, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ordererrors.ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}
		if order.Status == StatusCancelled {
			return ordererrors.ErrOrderAlreadyCancelled
		}

		rows, err := tx.Query(ctx, findOrderItemsSQL, id)
		if err != nil {
			return fmt.Errorf("failed to find order items: %w", err)
		}
		items := make([]OrderItem, 0)
		for rows.Next() {
			var item OrderItem
			if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Price); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order item: %w", err)
			}
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, item := range items {
			if _, err := tx.Exec(ctx, restoreStockSQL, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
			}
		}

		cancelled, err = scanOrder(tx.QueryRow(ctx, cancelOrderSQL, id, StatusCancelled))
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return cancelled, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ordererrors.ErrTransactionBegin
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return ordererrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ordererrors.ErrTransactionCommit
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.TotalPrice, &o.FullName, &o.PhoneNumber, &o.Estate,
		&o.StreetAddress, &o.PaymentMethod, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
