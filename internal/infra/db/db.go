package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Spok95/estoque/internal/domain/errs"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Open открывает файл стора. Одно соединение на процесс:
// ядро однопользовательское, а PRAGMA действует на соединение.
func Open(path string) (*sql.DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return d, nil
}

var schema = []struct {
	name string
	ddl  string
}{
	{"brands", `
		CREATE TABLE IF NOT EXISTS brands (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			code        TEXT UNIQUE,
			description TEXT,
			brand_id    INTEGER REFERENCES brands(id) ON DELETE SET NULL,
			quantity    INTEGER NOT NULL DEFAULT 0,
			location    TEXT
		)`},
	{"movements", `
		CREATE TABLE IF NOT EXISTS movements (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id),
			kind       TEXT NOT NULL,
			quantity   INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			note       TEXT
		)`},
	{"product_images", `
		CREATE TABLE IF NOT EXISTS product_images (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id),
			image_path TEXT NOT NULL
		)`},
	{"suppliers", `
		CREATE TABLE IF NOT EXISTS suppliers (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT NOT NULL UNIQUE,
			contact TEXT,
			phone   TEXT,
			email   TEXT,
			address TEXT
		)`},
	{"purchases", `
		CREATE TABLE IF NOT EXISTS purchases (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			supplier_id    INTEGER NOT NULL REFERENCES suppliers(id),
			issue_date     TEXT NOT NULL,
			delivery_date  TEXT NOT NULL,
			delivery_term  TEXT,
			subtotal       TEXT NOT NULL,
			discount       TEXT NOT NULL DEFAULT '0',
			freight        TEXT NOT NULL DEFAULT '0',
			total          TEXT NOT NULL,
			note           TEXT,
			payment_status TEXT NOT NULL DEFAULT 'pending'
		)`},
	{"purchase_items", `
		CREATE TABLE IF NOT EXISTS purchase_items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			purchase_id INTEGER NOT NULL REFERENCES purchases(id),
			product_id  INTEGER NOT NULL REFERENCES products(id),
			quantity    TEXT NOT NULL,
			unit_price  TEXT NOT NULL
		)`},
	{"payables", `
		CREATE TABLE IF NOT EXISTS payables (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			purchase_id INTEGER NOT NULL REFERENCES purchases(id),
			due_date    TEXT NOT NULL,
			amount      TEXT NOT NULL,
			amount_paid TEXT NOT NULL DEFAULT '0',
			status      TEXT NOT NULL DEFAULT 'pending'
		)`},
}

// Стартовый список брендов; добавляются по принципу insert-if-absent.
var defaultBrands = []string{
	"Chevrolet", "Volkswagen", "Fiat", "Ford", "Hyundai",
	"Toyota", "Honda", "Renault", "Jeep", "Mercedes-Benz",
	"BMW", "Audi", "Nissan", "Kia", "Peugeot",
}

// Bootstrap приводит схему к рабочему виду: создаёт таблицы (идемпотентно),
// досоздаёт колонку payment_status у старых баз и сидирует бренды.
func Bootstrap(ctx context.Context, d *sql.DB, log *slog.Logger) error {
	for _, t := range schema {
		if _, err := d.ExecContext(ctx, t.ddl); err != nil {
			log.Error("create table failed", "table", t.name, "err", err)
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}

	if err := ensurePaymentStatus(ctx, d); err != nil {
		log.Error("payment_status column check failed", "err", err)
		return err
	}

	for _, name := range defaultBrands {
		if _, err := d.ExecContext(ctx,
			`INSERT OR IGNORE INTO brands (name) VALUES (?)`, name); err != nil {
			log.Error("seed brand failed", "brand", name, "err", err)
			return fmt.Errorf("seed brand %s: %w", name, err)
		}
	}
	return nil
}

// ensurePaymentStatus — единственное известное аддитивное изменение схемы:
// старые базы не имели payment_status у purchases.
func ensurePaymentStatus(ctx context.Context, d *sql.DB) error {
	rows, err := d.QueryContext(ctx, `PRAGMA table_info(purchases)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == "payment_status" {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if found {
		return nil
	}
	_, err = d.ExecContext(ctx,
		`ALTER TABLE purchases ADD COLUMN payment_status TEXT NOT NULL DEFAULT 'pending'`)
	return err
}
