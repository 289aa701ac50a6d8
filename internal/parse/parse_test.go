package parse_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
)

func entry(id int64, name string, unit catalog.Unit, price int64, synonyms string) catalog.PriceItem {
	return catalog.PriceItem{
		ID:       id,
		Name:     name,
		Unit:     unit,
		Price:    decimal.NewFromInt(price),
		Synonyms: synonyms,
		IsActive: true,
	}
}

func mustParse(t *testing.T, transcript string, items []catalog.PriceItem) *parse.Result {
	t.Helper()
	res, err := parse.Deterministic{}.Parse(context.Background(), transcript, items)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res
}

func TestRoomWithQuantifiedItem(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Монтаж точечного светильника", catalog.UnitPiece, 450, "точечный светильник, спот"),
	}
	res := mustParse(t, "Кухня 10 кв.м, 5 точечный светильник", cat)

	if len(res.Rooms) != 1 {
		t.Fatalf("got %d rooms, want 1", len(res.Rooms))
	}
	room := res.Rooms[0]
	if room.Name != "Кухня" || room.Area != 10 {
		t.Errorf("room = %q area %v, want Кухня area 10", room.Name, room.Area)
	}
	if len(room.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(room.Items))
	}
	item := room.Items[0]
	if item.Name != "Монтаж точечного светильника" {
		t.Errorf("item name = %q", item.Name)
	}
	if item.PriceItemID == nil || *item.PriceItemID != 1 {
		t.Errorf("item price_item_id = %v, want 1", item.PriceItemID)
	}
	if item.Quantity != 5 {
		t.Errorf("quantity = %v, want 5", item.Quantity)
	}
	if !item.Sum.Equal(decimal.NewFromInt(2250)) {
		t.Errorf("sum = %s, want 2250", item.Sum)
	}
	if res.TotalArea != 10 || !res.TotalSum.Equal(decimal.NewFromInt(2250)) {
		t.Errorf("totals = %v / %s, want 10 / 2250", res.TotalArea, res.TotalSum)
	}
}

func TestBareMentionCountsAsOne(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(7, "Установка люстры", catalog.UnitPiece, 1100, "люстра"),
	}
	res := mustParse(t, "и ещё люстра в центре", cat)

	if len(res.Rooms) != 1 || res.Rooms[0].Name != parse.DefaultRoomName {
		t.Fatalf("expected single default room, got %+v", res.Rooms)
	}
	items := res.Rooms[0].Items
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Quantity != 1 {
		t.Errorf("quantity = %v, want 1", items[0].Quantity)
	}
	if !items[0].Sum.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("sum = %s, want 1100", items[0].Sum)
	}
}

func TestEmptyTranscript(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Установка люстры", catalog.UnitPiece, 1100, ""),
	}
	res := mustParse(t, "", cat)

	if len(res.Rooms) != 1 {
		t.Fatalf("got %d rooms, want 1", len(res.Rooms))
	}
	room := res.Rooms[0]
	if room.Name != parse.DefaultRoomName || room.Area != 0 || len(room.Items) != 0 {
		t.Errorf("default room = %+v", room)
	}
	if res.TotalArea != 0 || !res.TotalSum.IsZero() {
		t.Errorf("totals = %v / %s, want zero", res.TotalArea, res.TotalSum)
	}
	if res.UnknownItems == nil || len(res.UnknownItems) != 0 {
		t.Errorf("unknown items = %v, want empty non-nil", res.UnknownItems)
	}
}

func TestLongestKeyWins(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Светильник", catalog.UnitPiece, 200, "светильник"),
		entry(2, "Монтаж точечного светильника", catalog.UnitPiece, 450, "точечный светильник"),
	}
	res := mustParse(t, "точечный светильник 3", cat)

	items := res.Rooms[0].Items
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}
	if *items[0].PriceItemID != 2 {
		t.Errorf("matched entry %d, want the longer phrase entry 2", *items[0].PriceItemID)
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %v, want 3", items[0].Quantity)
	}
}

func TestAreaUnitTakesRoomArea(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Монтаж натяжного потолка", catalog.UnitSquareMeter, 350, "натяжной потолок"),
	}
	res := mustParse(t, "Гостиная 12,5 квадратов, натяжной потолок 20", cat)

	room := res.Rooms[0]
	if room.Name != "Гостиная" || room.Area != 12.5 {
		t.Fatalf("room = %q area %v, want Гостиная area 12.5", room.Name, room.Area)
	}
	if len(room.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(room.Items))
	}
	item := room.Items[0]
	if item.Quantity != 12.5 {
		t.Errorf("quantity = %v, want the room area 12.5", item.Quantity)
	}
	want := decimal.NewFromInt(350).Mul(decimal.NewFromFloat(12.5)).Round(2)
	if !item.Sum.Equal(want) {
		t.Errorf("sum = %s, want %s", item.Sum, want)
	}
}

func TestRoomSpanBlocksItemMatch(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Отделка зала", catalog.UnitSet, 5000, "зал"),
	}
	res := mustParse(t, "зал 20", cat)

	if len(res.Rooms) != 1 || res.Rooms[0].Name != "Зал" {
		t.Fatalf("expected room Зал, got %+v", res.Rooms)
	}
	if len(res.Rooms[0].Items) != 0 {
		t.Errorf("room span was reused by an item match: %+v", res.Rooms[0].Items)
	}
}

func TestDuplicateRoomLastWins(t *testing.T) {
	t.Parallel()
	res := mustParse(t, "кухня 10, кухня 12", nil)

	if len(res.Rooms) != 1 {
		t.Fatalf("got %d rooms, want 1", len(res.Rooms))
	}
	if res.Rooms[0].Area != 12 {
		t.Errorf("area = %v, want the later mention's 12", res.Rooms[0].Area)
	}
	if res.TotalArea != 12 {
		t.Errorf("total area = %v, want 12", res.TotalArea)
	}
}

func TestShortSynonymIgnored(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Установка люстры", catalog.UnitPiece, 1100, "лю"),
	}
	res := mustParse(t, "лю 3", cat)

	if n := len(res.Rooms[0].Items); n != 0 {
		t.Errorf("two-rune synonym produced %d matches, want 0", n)
	}
}

func TestSeparatorGlyphBetweenCountAndKey(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Установка люстры", catalog.UnitPiece, 1100, "люстра"),
	}
	res := mustParse(t, "2 х люстра", cat)

	items := res.Rooms[0].Items
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("items = %+v, want one with quantity 2", items)
	}
}

func TestCommaDecimalQuantity(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Монтаж карниза", catalog.UnitLinearMeter, 150, "карниз"),
	}
	res := mustParse(t, "карниз 2,5", cat)

	items := res.Rooms[0].Items
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Quantity != 2.5 {
		t.Errorf("quantity = %v, want 2.5", items[0].Quantity)
	}
	if !items[0].Sum.Equal(decimal.NewFromFloat(375)) {
		t.Errorf("sum = %s, want 375", items[0].Sum)
	}
}

func TestKeyInsideWordDoesNotMatch(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Установка спота", catalog.UnitPiece, 450, "спот"),
	}
	res := mustParse(t, "мы спотыкались об инструмент", cat)

	if n := len(res.Rooms[0].Items); n != 0 {
		t.Errorf("key matched inside a longer word, items = %+v", res.Rooms[0].Items)
	}
}

func TestTotalsConsistency(t *testing.T) {
	t.Parallel()
	cat := []catalog.PriceItem{
		entry(1, "Монтаж натяжного потолка", catalog.UnitSquareMeter, 350, "натяжной потолок, потолок"),
		entry(2, "Монтаж точечного светильника", catalog.UnitPiece, 450, "точечный светильник, спот"),
		entry(3, "Установка люстры", catalog.UnitPiece, 1100, "люстра"),
	}
	res := mustParse(t, "Спальня 15 кв.м, натяжной потолок, 6 спот и люстра", cat)

	var grand decimal.Decimal
	for _, room := range res.Rooms {
		var sub decimal.Decimal
		for _, item := range room.Items {
			want := item.Price.Mul(decimal.NewFromFloat(item.Quantity)).Round(2)
			if !item.Sum.Equal(want) {
				t.Errorf("item %q sum = %s, want %s", item.Name, item.Sum, want)
			}
			sub = sub.Add(item.Sum)
		}
		if !room.Subtotal.Equal(sub) {
			t.Errorf("room %q subtotal = %s, want %s", room.Name, room.Subtotal, sub)
		}
		grand = grand.Add(room.Subtotal)
	}
	if !res.TotalSum.Equal(grand) {
		t.Errorf("total sum = %s, want %s", res.TotalSum, grand)
	}
}

func TestRecompute(t *testing.T) {
	t.Parallel()
	res := &parse.Result{
		Rooms: []parse.Room{{
			Name: "Кухня",
			Area: 9,
			Items: []parse.Item{{
				Name:     "Монтаж точечного светильника",
				Unit:     catalog.UnitPiece,
				Quantity: 4,
				Price:    decimal.NewFromInt(450),
				Sum:      decimal.NewFromInt(1), // stale on purpose
			}},
			Subtotal: decimal.NewFromInt(1),
		}},
		TotalSum: decimal.NewFromInt(1),
	}
	parse.Recompute(res)

	if !res.Rooms[0].Items[0].Sum.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("item sum = %s, want 1800", res.Rooms[0].Items[0].Sum)
	}
	if !res.Rooms[0].Subtotal.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("subtotal = %s, want 1800", res.Rooms[0].Subtotal)
	}
	if !res.TotalSum.Equal(decimal.NewFromInt(1800)) || res.TotalArea != 9 {
		t.Errorf("totals = %s / %v, want 1800 / 9", res.TotalSum, res.TotalArea)
	}
}
