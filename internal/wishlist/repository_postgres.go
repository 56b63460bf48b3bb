package wishlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresRepository keeps wishlist entries as a jsonb array keyed by user.
type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	wishlistColumns = `id, user_id, products, created_at, updated_at`

	getWishlistQuery    = `SELECT ` + wishlistColumns + ` FROM wishlists WHERE user_id = $1`
	ensureWishlistQuery = `
		INSERT INTO wishlists (user_id, id, products, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`
	addProductQuery = `
		UPDATE wishlists
		SET products = products || $2::jsonb,
			updated_at = $3
		WHERE user_id = $1
			AND NOT (products @> $4::jsonb)
		RETURNING ` + wishlistColumns
	removeProductQuery = `
		UPDATE wishlists
		SET products = COALESCE(
				(SELECT jsonb_agg(t.e ORDER BY t.i)
				FROM jsonb_array_elements(products) WITH ORDINALITY AS t(e, i)
				WHERE t.e->>'product' <> $2),
				'[]'::jsonb),
			updated_at = $3
		WHERE user_id = $1
		RETURNING ` + wishlistColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ensure(ctx context.Context, w Wishlist) (Wishlist, error) {
	products, err := json.Marshal(Dedupe(w.Products))
	if err != nil {
		return Wishlist{}, err
	}
	if _, err := r.db.ExecContext(ctx, ensureWishlistQuery, w.UserID, w.ID, products, w.CreatedAt, w.UpdatedAt); err != nil {
		return Wishlist{}, fmt.Errorf("create wishlist: %w", err)
	}
	return r.get(ctx, w.UserID)
}

func (r *PostgresRepository) AddProduct(ctx context.Context, userID string, e Entry) (Wishlist, error) {
	appended, err := json.Marshal([]Entry{e})
	if err != nil {
		return Wishlist{}, err
	}
	probe, err := json.Marshal([]map[string]string{{"product": e.ProductID}})
	if err != nil {
		return Wishlist{}, err
	}
	w, err := scanWishlist(r.db.QueryRowContext(ctx, addProductQuery, userID, appended, e.AddedAt, probe))
	if errors.Is(err, sql.ErrNoRows) {
		// Either the product is already listed or there is no wishlist.
		return r.get(ctx, userID)
	}
	if err != nil {
		return Wishlist{}, fmt.Errorf("add to wishlist: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) RemoveProduct(ctx context.Context, userID, productID string, now time.Time) (Wishlist, error) {
	w, err := scanWishlist(r.db.QueryRowContext(ctx, removeProductQuery, userID, productID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return Wishlist{}, ErrNotFound
	}
	if err != nil {
		return Wishlist{}, fmt.Errorf("remove from wishlist: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) get(ctx context.Context, userID string) (Wishlist, error) {
	w, err := scanWishlist(r.db.QueryRowContext(ctx, getWishlistQuery, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Wishlist{}, ErrNotFound
	}
	if err != nil {
		return Wishlist{}, fmt.Errorf("load wishlist: %w", err)
	}
	return w, nil
}

func scanWishlist(row rowScanner) (Wishlist, error) {
	var (
		w   Wishlist
		raw []byte
	)
	if err := row.Scan(&w.ID, &w.UserID, &raw, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return Wishlist{}, err
	}
	var entries []Entry
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return Wishlist{}, fmt.Errorf("decode wishlist of %s: %w", w.UserID, err)
		}
	}
	w.Products = Dedupe(entries)
	return w, nil
}
