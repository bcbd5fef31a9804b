package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gautambamne/ECom-sub000/internal/cache"
	"github.com/gautambamne/ECom-sub000/internal/model"
)

const productListKeyPrefix = "products:list:"

// ProductRepository is the catalog store. Paginated listings are cached with
// sliding expiration; any write invalidates every cached listing page by
// pattern delete.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, page, limit int) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

type PostgresProductRepository struct {
	pool  *pgxpool.Pool
	cache *cache.Store
}

func NewPostgresProductRepository(pool *pgxpool.Pool, store *cache.Store) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool, cache: store}
}

const productColumns = `id, name, description, price_cents, stock, created_at, updated_at`

func productListKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", productListKeyPrefix, page, limit)
}

func (r *PostgresProductRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	r.cache.DeletePattern(ctx, productListKeyPrefix+"*")
	return nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p := &model.Product{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresProductRepository) List(ctx context.Context, page, limit int) ([]model.Product, error) {
	key := productListKey(page, limit)
	if cached, ok := cache.GetAndRefreshJSON[[]model.Product](ctx, r.cache, key); ok {
		return *cached, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, products, nil)
	return products, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price_cents = $4, stock = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("product not found")
	}
	r.cache.DeletePattern(ctx, productListKeyPrefix+"*")
	return nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	r.cache.DeletePattern(ctx, productListKeyPrefix+"*")
	return nil
}
