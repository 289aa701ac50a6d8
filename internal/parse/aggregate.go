package parse

import "github.com/shopspring/decimal"

// aggregate assembles the final result. Every matched item lands in the first
// room; associating items with the nearest room mention is a known
// simplification this parser does not attempt. Items priced per area take the
// room's footprint as their quantity when the room has one, overriding any
// spoken number, and their sums are recomputed from that quantity.
func aggregate(rooms []Room, items []Item) *Result {
	if len(rooms) == 0 {
		rooms = []Room{{Name: DefaultRoomName}}
	}

	first := &rooms[0]
	for _, item := range items {
		if item.Unit.IsArea() && first.Area > 0 {
			item.Quantity = first.Area
			item.Sum = itemSum(item.Quantity, item.Price)
		}
		first.Items = append(first.Items, item)
	}

	result := &Result{
		Rooms:        rooms,
		UnknownItems: []UnknownMention{},
		TotalSum:     decimal.Zero,
	}
	for i := range result.Rooms {
		room := &result.Rooms[i]
		room.Subtotal = decimal.Zero
		for _, item := range room.Items {
			room.Subtotal = room.Subtotal.Add(item.Sum)
		}
		result.TotalArea += room.Area
		result.TotalSum = result.TotalSum.Add(room.Subtotal)
	}
	return result
}

// Recompute re-derives every sum, subtotal, and total of r in place from
// quantity and unit price. Consumers persisting a result call this instead of
// trusting totals computed elsewhere.
func Recompute(r *Result) {
	r.TotalArea = 0
	r.TotalSum = decimal.Zero
	for i := range r.Rooms {
		room := &r.Rooms[i]
		room.Subtotal = decimal.Zero
		for j := range room.Items {
			item := &room.Items[j]
			item.Sum = itemSum(item.Quantity, item.Price)
			room.Subtotal = room.Subtotal.Add(item.Sum)
		}
		r.TotalArea += room.Area
		r.TotalSum = r.TotalSum.Add(room.Subtotal)
	}
}
