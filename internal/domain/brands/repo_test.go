package brands_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Spok95/estoque/internal/domain/brands"
	"github.com/Spok95/estoque/internal/domain/errs"
	"github.com/Spok95/estoque/internal/infra/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "estoque.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := db.Bootstrap(context.Background(), d, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return d
}

func TestAddDuplicateName(t *testing.T) {
	ctx := context.Background()
	r := brands.NewRepo(newTestDB(t))

	if _, err := r.Add(ctx, "Scania"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := r.Add(ctx, "Scania"); !errors.Is(err, errs.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	n := 0
	for _, b := range list {
		if b.Name == "Scania" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one Scania, got %d", n)
	}
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	r := brands.NewRepo(newTestDB(t))

	b, err := r.Add(ctx, "Iveco")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Rename(ctx, b.ID, "Iveco Group"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	// Переименование в уже существующее имя — дубликат.
	if _, err := r.Rename(ctx, b.ID, "Fiat"); !errors.Is(err, errs.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := r.Rename(ctx, 99999, "Nobody"); !errors.Is(err, errs.ErrBrandNotFound) {
		t.Fatalf("expected ErrBrandNotFound, got %v", err)
	}
}

func TestDeleteDetachesProducts(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := brands.NewRepo(d)

	b, err := r.Add(ctx, "Detachable")
	if err != nil {
		t.Fatalf("add brand: %v", err)
	}
	if _, err := d.Exec(`
		INSERT INTO products (name, brand_id, quantity) VALUES ('Filtro', ?, 3)
	`, b.ID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	has, err := r.HasProducts(ctx, b.ID)
	if err != nil || !has {
		t.Fatalf("expected HasProducts=true, got %v %v", has, err)
	}

	// Удаление бренда не трогает товары: brand_id обнуляется политикой FK.
	if err := r.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var brandID sql.NullInt64
	if err := d.QueryRow(`SELECT brand_id FROM products WHERE name = 'Filtro'`).
		Scan(&brandID); err != nil {
		t.Fatalf("product should survive brand delete: %v", err)
	}
	if brandID.Valid {
		t.Fatalf("brand_id should be NULL after detach, got %d", brandID.Int64)
	}
}
