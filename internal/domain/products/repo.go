package products

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Spok95/estoque/internal/domain/errs"
	"github.com/Spok95/estoque/internal/infra/fsutil"
	"github.com/Spok95/estoque/internal/infra/metrics"
)

type Repo struct {
	db  *sql.DB
	fs  fsutil.FS
	log *slog.Logger
}

func NewRepo(db *sql.DB, fs fsutil.FS, log *slog.Logger) *Repo {
	return &Repo{db: db, fs: fs, log: log}
}

func (r *Repo) Add(ctx context.Context, p Product) (*Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, code, description, brand_id, quantity, location)
		VALUES (?, NULLIF(?, ''), ?, NULLIF(?, 0), ?, ?)
	`, p.Name, p.Code, p.Description, p.BrandID, p.Quantity, p.Location)
	if err != nil {
		return nil, errs.MapUnique(err, errs.ErrDuplicateCode)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// Update меняет карточку товара; количество трогает только журнал движений.
func (r *Repo) Update(ctx context.Context, p Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, code = NULLIF(?, ''), description = ?,
		    brand_id = NULLIF(?, 0), location = ?
		WHERE id = ?
	`, p.Name, p.Code, p.Description, p.BrandID, p.Location, p.ID)
	if err != nil {
		return errs.MapUnique(err, errs.ErrDuplicateCode)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrProductNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, COALESCE(p.code, ''), COALESCE(p.description, ''),
		       COALESCE(p.brand_id, 0), COALESCE(b.name, ''), p.quantity, COALESCE(p.location, '')
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE p.id = ?
	`, id)
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description,
		&p.BrandID, &p.Brand, &p.Quantity, &p.Location); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// List — поиск по части имени или кода без учёта регистра;
// пустой запрос вернёт весь каталог.
func (r *Repo) List(ctx context.Context, search string) ([]Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(p.code, ''), COALESCE(p.description, ''),
		       COALESCE(p.brand_id, 0), COALESCE(b.name, ''), p.quantity, COALESCE(p.location, '')
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE LOWER(p.name) LIKE ? OR LOWER(COALESCE(p.code, '')) LIKE ?
		ORDER BY p.name
	`, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Description,
			&p.BrandID, &p.Brand, &p.Quantity, &p.Location); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ListForPicker(ctx context.Context) ([]PickerItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(code, '')
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PickerItem
	for rows.Next() {
		var it PickerItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Code); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) HasPurchases(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchase_items WHERE product_id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete удаляет товар и все зависимые строки (позиции закупок, движения,
// картинки) одной транзакцией. Файлы картинок убираются уже после коммита:
// ошибки файловой системы логируются и базу не откатывают.
func (r *Repo) Delete(ctx context.Context, id int64) (err error) {
	defer func() { metrics.Observe("product_delete", err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var paths []string
	rows, err := tx.QueryContext(ctx,
		`SELECT image_path FROM product_images WHERE product_id = ?`, id)
	if err != nil {
		return err
	}
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			rows.Close()
			return err
		}
		paths = append(paths, p)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if _, err = tx.ExecContext(ctx, `DELETE FROM purchase_items WHERE product_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM movements WHERE product_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrProductNotFound
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	r.cleanupFiles(paths)
	return nil
}

// cleanupFiles — best effort: файл, затем опустевший родительский каталог.
func (r *Repo) cleanupFiles(paths []string) {
	for _, p := range paths {
		if err := r.fs.Remove(p); err != nil {
			r.log.Warn("image file not removed", "path", p, "err", err)
			continue
		}
		if err := r.fs.RemoveDirIfEmpty(filepath.Dir(p)); err != nil {
			r.log.Warn("image dir not removed", "dir", filepath.Dir(p), "err", err)
		}
	}
}
