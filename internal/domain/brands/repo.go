package brands

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Spok95/estoque/internal/domain/errs"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Add(ctx context.Context, name string) (*Brand, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx, `INSERT INTO brands (name) VALUES (?)`, name)
	if err != nil {
		return nil, errs.MapUnique(err, errs.ErrDuplicateName)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Brand{ID: id, Name: name}, nil
}

func (r *Repo) Rename(ctx context.Context, id int64, name string) (*Brand, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx, `UPDATE brands SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, errs.MapUnique(err, errs.ErrDuplicateName)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errs.ErrBrandNotFound
	}
	return &Brand{ID: id, Name: name}, nil
}

// Delete не каскадирует: продукты бренда остаются, brand_id обнуляется
// политикой внешнего ключа (ON DELETE SET NULL).
func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil && errs.IsConstraint(err) {
		return errs.ErrIntegrityViolation
	}
	return err
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Brand, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM brands WHERE id = ?`, id)
	var b Brand
	if err := row.Scan(&b.ID, &b.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) List(ctx context.Context) ([]Brand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// HasProducts — подсказка для вызывающего перед удалением;
// сам Delete при этом не блокируется.
func (r *Repo) HasProducts(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE brand_id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
