package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresRepository reads and writes the cart jsonb column of users.
type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery  = `SELECT cart FROM users WHERE id = $1`
	saveCartQuery = `UPDATE users SET cart = $2, updated_at = now() WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) ([]Item, error) {
	var raw []byte
	if err := r.db.QueryRowContext(ctx, getCartQuery, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items := make([]Item, 0)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode cart of %s: %w", userID, err)
		}
	}
	return items, nil
}

func (r *PostgresRepository) Save(ctx context.Context, userID string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, saveCartQuery, userID, raw)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
