package reports

import (
	"context"
	"database/sql"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

/* Счётчики для дашборда */

func (r *Repo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *Repo) CountLowStock(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE quantity <= ?`, threshold).Scan(&n)
	return n, err
}

func (r *Repo) CountBrands(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brands`).Scan(&n)
	return n, err
}
