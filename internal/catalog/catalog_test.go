package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
)

func TestUnitIsArea(t *testing.T) {
	t.Parallel()
	cases := []struct {
		unit catalog.Unit
		want bool
	}{
		{catalog.UnitSquareMeter, true},
		{"м2", true},
		{"кв.м", true},
		{catalog.UnitPiece, false},
		{catalog.UnitLinearMeter, false},
		{catalog.UnitSet, false},
		{"", false},
	}
	for _, c := range cases {
		if got := c.unit.IsArea(); got != c.want {
			t.Errorf("Unit(%q).IsArea() = %v, want %v", c.unit, got, c.want)
		}
	}
}

func TestPriceItemValidate(t *testing.T) {
	t.Parallel()
	valid := catalog.PriceItem{
		Name:  "Монтаж натяжного потолка",
		Unit:  catalog.UnitSquareMeter,
		Price: decimal.NewFromInt(350),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid item: unexpected error %v", err)
	}

	empty := catalog.PriceItem{Price: decimal.NewFromInt(-1)}
	err := empty.Validate()
	if err == nil {
		t.Fatal("invalid item: expected error, got nil")
	}
}

func TestSynonymList(t *testing.T) {
	t.Parallel()
	item := catalog.PriceItem{Synonyms: "точечный светильник, светильник,, спот "}
	got := item.SynonymList()
	want := []string{"точечный светильник", "светильник", "спот"}
	if len(got) != len(want) {
		t.Fatalf("SynonymList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SynonymList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	none := catalog.PriceItem{}
	if got := none.SynonymList(); got != nil {
		t.Errorf("empty synonyms: got %v, want nil", got)
	}
}

func TestMemStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := catalog.NewMemStore()

	item := &catalog.PriceItem{
		CompanyID: 1,
		Name:      "Установка люстры",
		Unit:      catalog.UnitPiece,
		Price:     decimal.NewFromInt(1100),
		IsActive:  true,
	}
	if err := store.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.ID == 0 {
		t.Error("Create did not assign an ID")
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("Create did not set timestamps")
	}

	got, err := store.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != item.Name {
		t.Errorf("Get returned name %q, want %q", got.Name, item.Name)
	}

	got.Price = decimal.NewFromInt(1200)
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err := store.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if !updated.Price.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("price after update = %s, want 1200", updated.Price)
	}

	if err := store.Deactivate(ctx, item.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	active, err := store.ListActive(ctx, 1)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListActive after deactivation: got %d items, want 0", len(active))
	}
}

func TestMemStoreNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := catalog.NewMemStore()

	if _, err := store.Get(ctx, 42); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Get(42): got %v, want ErrNotFound", err)
	}
	if err := store.Deactivate(ctx, 42); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Deactivate(42): got %v, want ErrNotFound", err)
	}
	missing := &catalog.PriceItem{ID: 42, Name: "x", Unit: catalog.UnitPiece}
	if err := store.Update(ctx, missing); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Update(42): got %v, want ErrNotFound", err)
	}
}

func TestMemStoreListActiveFiltersCompany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := catalog.NewMemStore()

	for _, it := range []catalog.PriceItem{
		{CompanyID: 1, Name: "Багет", Unit: catalog.UnitLinearMeter, Price: decimal.NewFromInt(150), IsActive: true},
		{CompanyID: 1, Name: "Архив", Unit: catalog.UnitPiece, Price: decimal.NewFromInt(10), IsActive: false},
		{CompanyID: 2, Name: "Чужое", Unit: catalog.UnitPiece, Price: decimal.NewFromInt(10), IsActive: true},
	} {
		item := it
		if err := store.Create(ctx, &item); err != nil {
			t.Fatalf("Create(%s): %v", it.Name, err)
		}
	}

	active, err := store.ListActive(ctx, 1)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Багет" {
		t.Errorf("ListActive(1) = %v, want single item Багет", active)
	}
}
