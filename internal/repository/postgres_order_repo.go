package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/legadoapp/legado/internal/model"
)

// PostgresOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo はPostgresOrderRepoを生成する。
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// CreateWithItems は注文と明細を同一トランザクションで作成する。
// 明細の保存に失敗した場合は注文ごとロールバックされる。
func (r *PostgresOrderRepo) CreateWithItems(ctx context.Context, order *model.Order, items []*model.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, full_name, phone, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.UserID, nullString(order.FullName), nullString(order.Phone),
		string(order.Status), order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, product_name, unit_price_cents, qty)
			 VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.UnitPriceCents, item.Qty,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの注文を取得する。見つからない場合はnilを返す。
func (r *PostgresOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	order := &model.Order{}
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, COALESCE(full_name, ''), COALESCE(phone, ''), status, created_at
		 FROM orders WHERE id = $1`,
		id,
	).Scan(&order.ID, &order.UserID, &order.FullName, &order.Phone, &status, &order.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	order.Status = model.OrderStatus(status)
	return order, nil
}

// ListByStatus は指定状態の注文を作成日時の新しい順に取得する。
func (r *PostgresOrderRepo) ListByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, COALESCE(full_name, ''), COALESCE(phone, ''), status, created_at
		 FROM orders
		 WHERE status = $1
		 ORDER BY created_at DESC`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order := &model.Order{}
		var s string
		if err := rows.Scan(&order.ID, &order.UserID, &order.FullName, &order.Phone, &s, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.Status = model.OrderStatus(s)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// ListItemsByOrderIDs は複数注文の明細を商品名順で取得する。
func (r *PostgresOrderRepo) ListItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]*model.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, COALESCE(product_id::text, ''), product_name, unit_price_cents, qty
		 FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY product_name ASC`,
		pq.Array(orderIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []*model.OrderItem
	for rows.Next() {
		item := &model.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPriceCents, &item.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return items, nil
}

// UpdateStatus は注文状態を変更する。対象が存在しない場合はエラーを返す。
func (r *PostgresOrderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// DeleteByID は注文を削除する。明細はCASCADE削除される。
func (r *PostgresOrderRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// compile-time interface check
var _ OrderRepository = (*PostgresOrderRepo)(nil)
