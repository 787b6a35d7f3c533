package purchases

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Spok95/estoque/internal/domain/errs"
	"github.com/Spok95/estoque/internal/infra/metrics"
	"github.com/shopspring/decimal"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func validate(in Input) error {
	if len(in.Items) == 0 {
		return errs.ErrNoItems
	}
	for _, it := range in.Items {
		if !it.Qty.IsPositive() {
			return errs.ErrInvalidQuantity
		}
		if !it.UnitPrice.IsPositive() {
			return errs.ErrInvalidPrice
		}
	}
	return nil
}

// totals: subtotal = Σ qty*price; total = max(0, subtotal - discount + freight),
// оба округляются до копеек.
func totals(in Input) (subtotal, total decimal.Decimal) {
	for _, it := range in.Items {
		subtotal = subtotal.Add(it.Qty.Mul(it.UnitPrice))
	}
	subtotal = subtotal.Round(2)
	total = subtotal.Sub(in.Discount).Add(in.Freight).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return subtotal, total
}

// Create заводит закупку целиком: шапка, позиции и счёт к оплате —
// одна транзакция, частичной закупки не бывает.
func (r *Repo) Create(ctx context.Context, in Input) (id int64, err error) {
	defer func() { metrics.Observe("purchase_create", err) }()

	if err = validate(in); err != nil {
		return 0, err
	}
	subtotal, total := totals(in)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO purchases
			(supplier_id, issue_date, delivery_date, delivery_term,
			 subtotal, discount, freight, total, note, payment_status)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`, in.SupplierID, in.IssueDate, in.DeliveryDate, in.DeliveryTerm,
		subtotal, in.Discount.Round(2), in.Freight.Round(2), total,
		in.Note, string(StatusPending))
	if err != nil {
		return 0, errs.MapUnique(err, errs.ErrIntegrityViolation)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = insertItems(ctx, tx, id, in.Items); err != nil {
		return 0, err
	}

	// Счёт к оплате: срок — дата поставки, сумма — итог закупки.
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO payables (purchase_id, due_date, amount, amount_paid, status)
		VALUES (?,?,?,?,?)
	`, id, in.DeliveryDate, total, decimal.Zero, string(StatusPending)); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, purchaseID int64, items []ItemInput) error {
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_price)
			VALUES (?,?,?,?)
		`, purchaseID, it.ProductID, it.Qty, it.UnitPrice); err != nil {
			if errs.IsConstraint(err) {
				return errs.ErrIntegrityViolation
			}
			return err
		}
	}
	return nil
}

// Update переписывает закупку: шапка обновляется, позиции заменяются
// целиком, счёт получает новые срок и сумму. Статус оплаты шапки
// сохраняется — редактирование закупки не сбрасывает прогресс оплаты.
func (r *Repo) Update(ctx context.Context, id int64, in Input) (err error) {
	defer func() { metrics.Observe("purchase_update", err) }()

	if err = validate(in); err != nil {
		return err
	}
	subtotal, total := totals(in)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT payment_status FROM purchases WHERE id = ?`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return errs.ErrPurchaseNotFound
		}
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE purchases
		SET supplier_id = ?, issue_date = ?, delivery_date = ?, delivery_term = ?,
		    subtotal = ?, discount = ?, freight = ?, total = ?, note = ?,
		    payment_status = ?
		WHERE id = ?
	`, in.SupplierID, in.IssueDate, in.DeliveryDate, in.DeliveryTerm,
		subtotal, in.Discount.Round(2), in.Freight.Round(2), total,
		in.Note, status, id); err != nil {
		if errs.IsConstraint(err) {
			return errs.ErrIntegrityViolation
		}
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM purchase_items WHERE purchase_id = ?`, id); err != nil {
		return err
	}
	if err = insertItems(ctx, tx, id, in.Items); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE payables SET due_date = ?, amount = ? WHERE purchase_id = ?
	`, in.DeliveryDate, total, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete убирает позиции, счёт и шапку одной транзакцией.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM purchase_items WHERE purchase_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM payables WHERE purchase_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrPurchaseNotFound
	}
	return tx.Commit()
}

func (r *Repo) GetDetails(ctx context.Context, id int64) (*Purchase, []Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.supplier_id, f.name, c.issue_date, c.delivery_date,
		       COALESCE(c.delivery_term, ''), c.subtotal, c.discount, c.freight,
		       c.total, COALESCE(c.note, ''), c.payment_status
		FROM purchases c
		JOIN suppliers f ON f.id = c.supplier_id
		WHERE c.id = ?
	`, id)
	var p Purchase
	if err := row.Scan(&p.ID, &p.SupplierID, &p.Supplier, &p.IssueDate, &p.DeliveryDate,
		&p.DeliveryTerm, &p.Subtotal, &p.Discount, &p.Freight,
		&p.Total, &p.Note, &p.PaymentStatus); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, errs.ErrPurchaseNotFound
		}
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ic.id, ic.purchase_id, ic.product_id, pr.name, ic.quantity, ic.unit_price
		FROM purchase_items ic
		JOIN products pr ON pr.id = ic.product_id
		WHERE ic.purchase_id = ?
		ORDER BY ic.id
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Product,
			&it.Qty, &it.UnitPrice); err != nil {
			return nil, nil, err
		}
		items = append(items, it)
	}
	return &p, items, rows.Err()
}

// List — закупки с именем поставщика; фильтр по части имени поставщика.
func (r *Repo) List(ctx context.Context, filter string) ([]Purchase, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(filter)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.supplier_id, f.name, c.issue_date, c.delivery_date,
		       COALESCE(c.delivery_term, ''), c.subtotal, c.discount, c.freight,
		       c.total, COALESCE(c.note, ''), c.payment_status
		FROM purchases c
		JOIN suppliers f ON f.id = c.supplier_id
		WHERE LOWER(f.name) LIKE ?
		ORDER BY c.issue_date DESC, c.id DESC
	`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.Supplier, &p.IssueDate, &p.DeliveryDate,
			&p.DeliveryTerm, &p.Subtotal, &p.Discount, &p.Freight,
			&p.Total, &p.Note, &p.PaymentStatus); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPayables — счета к оплате с именем поставщика через закупку.
func (r *Repo) ListPayables(ctx context.Context, filter string) ([]Payable, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(filter)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT cp.id, cp.purchase_id, f.name, cp.due_date, cp.amount, cp.amount_paid, cp.status
		FROM payables cp
		JOIN purchases c ON c.id = cp.purchase_id
		JOIN suppliers f ON f.id = c.supplier_id
		WHERE LOWER(f.name) LIKE ?
		ORDER BY cp.due_date, cp.id
	`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payable
	for rows.Next() {
		var cp Payable
		if err := rows.Scan(&cp.ID, &cp.PurchaseID, &cp.Supplier, &cp.DueDate,
			&cp.Amount, &cp.AmountPaid, &cp.Status); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// RecordPayment добавляет платёж к счёту. Оплата не может уйти выше суммы
// счёта: излишек срезается, статус становится paid. Явный статус вызывающего
// перекрывает вычисленный, если только полная оплата не вынудила paid.
// Статус шапки закупки обновляется той же транзакцией.
func (r *Repo) RecordPayment(ctx context.Context, payableID int64, payment decimal.Decimal, requested PaymentStatus) (pb *Payable, err error) {
	defer func() { metrics.Observe("payment_record", err) }()

	if payment.IsNegative() {
		return nil, errs.ErrInvalidAmount
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		purchaseID int64
		dueDate    string
		amount     decimal.Decimal
		paid       decimal.Decimal
	)
	err = tx.QueryRowContext(ctx, `
		SELECT purchase_id, due_date, amount, amount_paid
		FROM payables WHERE id = ?
	`, payableID).Scan(&purchaseID, &dueDate, &amount, &paid)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrPayableNotFound
		}
		return nil, err
	}

	updated := paid.Add(payment)
	var final PaymentStatus
	switch {
	case updated.GreaterThanOrEqual(amount):
		updated = amount
		final = StatusPaid
	case updated.IsPositive():
		final = StatusPartiallyPaid
	default:
		final = StatusPending
	}
	if requested != "" && requested != final && final != StatusPaid {
		final = requested
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE payables SET amount_paid = ?, status = ? WHERE id = ?
	`, updated, string(final), payableID); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `
		UPDATE purchases SET payment_status = ? WHERE id = ?
	`, string(final), purchaseID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Payable{
		ID:         payableID,
		PurchaseID: purchaseID,
		DueDate:    dueDate,
		Amount:     amount,
		AmountPaid: updated,
		Status:     final,
	}, nil
}
