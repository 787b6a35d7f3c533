package inventory

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/estoque/internal/domain/errs"
	"github.com/Spok95/estoque/internal/infra/metrics"
)

const tsLayout = "2006-01-02 15:04:05"

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db, now: time.Now} }

// WithClock подменяет источник времени (нужен тестам).
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// Apply проводит движение: обновляет остаток товара и дописывает запись
// в журнал одной транзакцией. Возвращает новый остаток.
// Журнал append-only: движения никогда не правятся и не удаляются
// (кроме каскада при удалении товара).
func (r *Repo) Apply(ctx context.Context, productID, qty int64, kind MoveType, note string) (newQty int64, err error) {
	defer func() { metrics.Observe("movement_apply", err) }()

	if qty <= 0 {
		return 0, errs.ErrInvalidQuantity
	}
	if kind != MoveIn && kind != MoveOut {
		return 0, errs.ErrInvalidQuantity
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM products WHERE id = ?`, productID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, errs.ErrProductNotFound
		}
		return 0, err
	}

	switch kind {
	case MoveIn:
		newQty = current + qty
	case MoveOut:
		if qty > current {
			return 0, errs.ErrInsufficientStock
		}
		newQty = current - qty
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE products SET quantity = ? WHERE id = ?`, newQty, productID); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO movements (product_id, kind, quantity, created_at, note)
		VALUES (?,?,?,?,?)
	`, productID, string(kind), qty, r.now().Format(tsLayout), note); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newQty, nil
}

// ListByProduct — история движений товара, свежие сверху.
func (r *Repo) ListByProduct(ctx context.Context, productID int64) ([]Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, kind, quantity, created_at, COALESCE(note, '')
		FROM movements
		WHERE product_id = ?
		ORDER BY created_at DESC, id DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var (
			m  Movement
			ts string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Kind, &m.Qty, &ts, &m.Note); err != nil {
			return nil, err
		}
		if t, err := time.ParseInLocation(tsLayout, ts, time.Local); err == nil {
			m.CreatedAt = t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
