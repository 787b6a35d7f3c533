package reports

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook собирает книгу с двумя листами: остатки и счета к оплате.
func (r *Repo) ExportWorkbook(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	stockSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(stockSheet, "stock"); err != nil {
		return nil, err
	}
	if err := r.fillStockSheet(ctx, f, "stock"); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("payables"); err != nil {
		return nil, err
	}
	if err := r.fillPayablesSheet(ctx, f, "payables"); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Repo) fillStockSheet(ctx context.Context, f *excelize.File, sheet string) error {
	header := []interface{}{
		"product_id",
		"product_name",
		"code",
		"brand",
		"quantity",
		"location",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(p.code, ''), COALESCE(b.name, ''),
		       p.quantity, COALESCE(p.location, '')
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		ORDER BY p.name
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	row := 2
	for rows.Next() {
		var (
			id       int64
			name     string
			code     string
			brand    string
			qty      int64
			location string
		)
		if err := rows.Scan(&id, &name, &code, &brand, &qty, &location); err != nil {
			return err
		}
		excelRow := []interface{}{id, name, code, brand, qty, location}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return err
		}
		row++
	}
	return rows.Err()
}

func (r *Repo) fillPayablesSheet(ctx context.Context, f *excelize.File, sheet string) error {
	header := []interface{}{
		"payable_id",
		"supplier",
		"due_date",
		"amount",
		"amount_paid",
		"status",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT cp.id, f.name, cp.due_date, cp.amount, cp.amount_paid, cp.status
		FROM payables cp
		JOIN purchases c ON c.id = cp.purchase_id
		JOIN suppliers f ON f.id = c.supplier_id
		ORDER BY cp.due_date, cp.id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	row := 2
	for rows.Next() {
		var (
			id       int64
			supplier string
			dueDate  string
			amount   string
			paid     string
			status   string
		)
		if err := rows.Scan(&id, &supplier, &dueDate, &amount, &paid, &status); err != nil {
			return err
		}
		excelRow := []interface{}{id, supplier, dueDate, amount, paid, status}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return err
		}
		row++
	}
	return rows.Err()
}
