package images

import (
	"context"
	"database/sql"

	"github.com/Spok95/estoque/internal/domain/errs"
)

type Image struct {
	ID        int64
	ProductID int64
	Path      string
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Attach(ctx context.Context, productID int64, absolutePath string) (*Image, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO product_images (product_id, image_path) VALUES (?, ?)`,
		productID, absolutePath)
	if err != nil {
		if errs.IsConstraint(err) {
			return nil, errs.ErrProductNotFound
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Image{ID: id, ProductID: productID, Path: absolutePath}, nil
}

func (r *Repo) ListByProduct(ctx context.Context, productID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT image_path FROM product_images WHERE product_id = ?`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DetachAll убирает только строки; файлы остаются на вызывающем —
// это сознательная асимметрия с удалением товара.
func (r *Repo) DetachAll(ctx context.Context, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM product_images WHERE product_id = ?`, productID)
	return err
}
