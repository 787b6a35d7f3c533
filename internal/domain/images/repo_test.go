package images_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Spok95/estoque/internal/domain/errs"
	"github.com/Spok95/estoque/internal/domain/images"
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

func seedProduct(t *testing.T, d *sql.DB) int64 {
	t.Helper()
	res, err := d.Exec(`INSERT INTO products (name) VALUES ('Parachoque')`)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestAttachAndList(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := images.NewRepo(d)
	productID := seedProduct(t, d)

	for _, p := range []string{"/fotos/a.jpg", "/fotos/b.jpg"} {
		if _, err := r.Attach(ctx, productID, p); err != nil {
			t.Fatalf("attach %s: %v", p, err)
		}
	}

	got, err := r.ListByProduct(ctx, productID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != "/fotos/a.jpg" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestAttachMissingProduct(t *testing.T) {
	r := images.NewRepo(newTestDB(t))
	if _, err := r.Attach(context.Background(), 999, "/fotos/x.jpg"); !errors.Is(err, errs.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// DetachAll убирает строки и НЕ трогает файлы — асимметрия с удалением
// товара здесь намеренная.
func TestDetachAllLeavesFiles(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := images.NewRepo(d)
	productID := seedProduct(t, d)

	path := filepath.Join(t.TempDir(), "foto.jpg")
	if err := os.WriteFile(path, []byte("jpg"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := r.Attach(ctx, productID, path); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := r.DetachAll(ctx, productID); err != nil {
		t.Fatalf("detach: %v", err)
	}

	got, err := r.ListByProduct(ctx, productID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("rows must be gone, got %v", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file must survive DetachAll: %v", err)
	}
}
