package inventory_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Spok95/estoque/internal/domain/errs"
	"github.com/Spok95/estoque/internal/domain/inventory"
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

func seedProduct(t *testing.T, d *sql.DB, qty int64) int64 {
	t.Helper()
	res, err := d.Exec(`INSERT INTO products (name, quantity) VALUES ('Oleo 5W30', ?)`, qty)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func quantityOf(t *testing.T, d *sql.DB, id int64) int64 {
	t.Helper()
	var q int64
	if err := d.QueryRow(`SELECT quantity FROM products WHERE id = ?`, id).Scan(&q); err != nil {
		t.Fatalf("read quantity: %v", err)
	}
	return q
}

func movementCount(t *testing.T, d *sql.DB, id int64) int64 {
	t.Helper()
	var n int64
	if err := d.QueryRow(`SELECT COUNT(*) FROM movements WHERE product_id = ?`, id).Scan(&n); err != nil {
		t.Fatalf("count movements: %v", err)
	}
	return n
}

// Инвариант: остаток = начальный + Σ приходов − Σ расходов.
func TestQuantityInvariant(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := inventory.NewRepo(d)
	id := seedProduct(t, d, 10)

	steps := []struct {
		qty  int64
		kind inventory.MoveType
	}{
		{5, inventory.MoveIn},
		{3, inventory.MoveOut},
		{2, inventory.MoveIn},
		{7, inventory.MoveOut},
	}
	var in, out int64
	for _, s := range steps {
		if _, err := r.Apply(ctx, id, s.qty, s.kind, ""); err != nil {
			t.Fatalf("apply %v %d: %v", s.kind, s.qty, err)
		}
		if s.kind == inventory.MoveIn {
			in += s.qty
		} else {
			out += s.qty
		}
	}

	want := 10 + in - out
	if got := quantityOf(t, d, id); got != want {
		t.Fatalf("quantity invariant broken: got %d, want %d", got, want)
	}
	if n := movementCount(t, d, id); n != int64(len(steps)) {
		t.Fatalf("expected %d movements, got %d", len(steps), n)
	}
}

func TestOutboundRejection(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := inventory.NewRepo(d)
	id := seedProduct(t, d, 4)

	_, err := r.Apply(ctx, id, 5, inventory.MoveOut, "")
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	// Ни остаток, ни журнал не изменились.
	if got := quantityOf(t, d, id); got != 4 {
		t.Fatalf("quantity must be unchanged, got %d", got)
	}
	if n := movementCount(t, d, id); n != 0 {
		t.Fatalf("movement log must be unchanged, got %d rows", n)
	}
}

func TestInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := inventory.NewRepo(d)
	id := seedProduct(t, d, 4)

	for _, qty := range []int64{0, -3} {
		if _, err := r.Apply(ctx, id, qty, inventory.MoveIn, ""); !errors.Is(err, errs.ErrInvalidQuantity) {
			t.Fatalf("qty=%d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if _, err := r.Apply(ctx, id, 1, inventory.MoveType("sideways"), ""); !errors.Is(err, errs.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for unknown kind, got %v", err)
	}
	if n := movementCount(t, d, id); n != 0 {
		t.Fatalf("no movements expected, got %d", n)
	}
}

func TestProductNotFound(t *testing.T) {
	r := inventory.NewRepo(newTestDB(t))
	if _, err := r.Apply(context.Background(), 999, 1, inventory.MoveIn, ""); !errors.Is(err, errs.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestApplyReturnsNewQuantity(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	r := inventory.NewRepo(d)
	id := seedProduct(t, d, 10)

	got, err := r.Apply(ctx, id, 5, inventory.MoveIn, "entrega")
	if err != nil || got != 15 {
		t.Fatalf("inbound: got %d, %v; want 15", got, err)
	}
	got, err = r.Apply(ctx, id, 6, inventory.MoveOut, "venda")
	if err != nil || got != 9 {
		t.Fatalf("outbound: got %d, %v; want 9", got, err)
	}
}

func TestListByProductNewestFirst(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	tick := 0
	r := inventory.NewRepo(d).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	id := seedProduct(t, d, 0)

	for i, note := range []string{"primeira", "segunda", "terceira"} {
		if _, err := r.Apply(ctx, id, int64(i+1), inventory.MoveIn, note); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	got, err := r.ListByProduct(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(got))
	}
	if got[0].Note != "terceira" || got[2].Note != "primeira" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if got[0].Kind != inventory.MoveIn || got[0].Qty != 3 {
		t.Fatalf("unexpected newest movement: %+v", got[0])
	}
}
