package suppliers

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Spok95/estoque/internal/domain/errs"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Add(ctx context.Context, s Supplier) (*Supplier, error) {
	s.Name = strings.TrimSpace(s.Name)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO suppliers (name, contact, phone, email, address)
		VALUES (?,?,?,?,?)
	`, s.Name, s.Contact, s.Phone, s.Email, s.Address)
	if err != nil {
		return nil, errs.MapUnique(err, errs.ErrDuplicateName)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

func (r *Repo) Update(ctx context.Context, s Supplier) error {
	s.Name = strings.TrimSpace(s.Name)
	res, err := r.db.ExecContext(ctx, `
		UPDATE suppliers
		SET name = ?, contact = ?, phone = ?, email = ?, address = ?
		WHERE id = ?
	`, s.Name, s.Contact, s.Phone, s.Email, s.Address, s.ID)
	if err != nil {
		return errs.MapUnique(err, errs.ErrDuplicateName)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrSupplierNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Supplier, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, contact, phone, email, address
		FROM suppliers WHERE id = ?
	`, id)
	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Address); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List — поиск по части имени без учёта регистра; пустой фильтр вернёт всех.
func (r *Repo) List(ctx context.Context, filter string) ([]Supplier, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(filter)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, contact, phone, email, address
		FROM suppliers
		WHERE LOWER(name) LIKE ?
		ORDER BY name
	`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Address); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) HasPurchases(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchases WHERE supplier_id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete удаляет поставщика каскадом: позиции и счета каждой его закупки,
// сами закупки, затем поставщик — одной транзакцией. Любая ошибка
// откатывает всё, поставщик остаётся как был.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM purchase_items
		WHERE purchase_id IN (SELECT id FROM purchases WHERE supplier_id = ?)
	`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM payables
		WHERE purchase_id IN (SELECT id FROM purchases WHERE supplier_id = ?)
	`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM purchases WHERE supplier_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrSupplierNotFound
	}
	return tx.Commit()
}
