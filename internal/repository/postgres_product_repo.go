package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/legadoapp/legado/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

const productColumns = `id, name, COALESCE(description, ''), price_cents,
	COALESCE(image_path, ''), is_active, created_at, updated_at`

func scanProduct(row interface {
	Scan(dest ...any) error
}) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents,
		&p.ImagePath, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		id,
	)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return p, nil
}

// ListActive は公開中の商品を作成日時の新しい順に取得する。
func (r *PostgresProductRepo) ListActive(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE is_active = TRUE
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListAll は非公開を含む全商品を作成日時の新しい順に取得する（管理画面用）。
func (r *PostgresProductRepo) ListAll(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]*model.Product, error) {
	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// Create は商品を作成する。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price_cents, image_path, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		product.ID, product.Name, nullString(product.Description), product.PriceCents,
		nullString(product.ImagePath), product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update は商品を更新する。
func (r *PostgresProductRepo) Update(ctx context.Context, product *model.Product) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET
		     name = $1, description = $2, price_cents = $3,
		     image_path = $4, is_active = $5, updated_at = now()
		 WHERE id = $6`,
		product.Name, nullString(product.Description), product.PriceCents,
		nullString(product.ImagePath), product.IsActive, product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found: %s", product.ID)
	}
	return nil
}

// DeleteByID は指定IDの商品を削除する。
func (r *PostgresProductRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
