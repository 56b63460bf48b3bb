package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `id, name, description, price, images, category, stock, created_at, updated_at`

	getProductByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	findProductsByIDsQuery = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	insertProductQuery = `
		INSERT INTO products (id, name, description, price, images, category, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO NOTHING
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// where builds the filter clause for q and its positional arguments.
func where(q Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.Search != "" {
		add("name ILIKE $%d", "%"+escapeLike(q.Search)+"%")
	}
	if q.Category != "" {
		add("category = $%d", q.Category)
	}
	if q.Min != nil {
		add("price >= $%d", *q.Min)
	}
	if q.Max != nil {
		add("price <= $%d", *q.Max)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderBy(sort string) string {
	switch sort {
	case SortPriceAsc:
		return " ORDER BY price ASC, id"
	case SortPriceDesc:
		return " ORDER BY price DESC, id"
	default:
		return " ORDER BY created_at DESC, id"
	}
}

func (r *PostgresRepository) List(ctx context.Context, q Query) ([]Product, int, error) {
	q = q.normalize()
	clause, args := where(q)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	n := len(args)
	listQuery := `SELECT ` + productColumns + ` FROM products` + clause + orderBy(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, q.PageSize, q.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0, q.PageSize)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, findProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Seed(ctx context.Context, products []Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, p := range products {
		images, err := json.Marshal(nonNil(p.Images))
		if err != nil {
			return err
		}
		created := p.CreatedAt
		if created.IsZero() {
			created = now.Add(time.Duration(i) * time.Millisecond)
		}
		if _, err := tx.ExecContext(ctx, insertProductQuery,
			p.ID, p.Name, p.Description, p.Price, images, p.Category, p.Stock, created); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p      Product
		images []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &images, &p.Category, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return Product{}, fmt.Errorf("decode images of %s: %w", p.ID, err)
		}
	}
	p.Images = nonNil(p.Images)
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
