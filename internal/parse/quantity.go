package parse

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
)

const numberPat = `(\d+(?:[.,]\d+)?)`

// matchItems runs the quantity matcher over the lowered transcript: for each
// key, longest first, try quantity-before-key, then key-before-quantity, then
// a bare mention worth quantity 1 if neither quantified form accepted
// anything for that key. All spans go through the shared registry, so item
// matches can never reuse text already claimed by a room or an earlier item.
func matchItems(lowered string, table []keyEntry, spans *SpanSet) []Item {
	var items []Item
	for _, entry := range table {
		quoted := regexp.QuoteMeta(entry.key)
		accepted := false

		// Quantity before key: "5 шт - точечный светильник". The optional
		// unit token and separator glyph sit between number and key.
		before := regexp.MustCompile(numberPat + `\s*(?:шт|пог\.?|м\.?|м2)?\s*[-xх*]?\s*` + quoted)
		for _, m := range before.FindAllStringSubmatchIndex(lowered, -1) {
			if !wordBoundaryAfter(lowered, m[1]) {
				continue
			}
			qty, ok := parseNumber(lowered[m[2]:m[3]])
			if !ok {
				continue
			}
			if !spans.Claim(m[0], m[1]) {
				continue
			}
			items = append(items, newItem(entry.item, qty))
			accepted = true
		}

		// Key before quantity: "точечный светильник: 5".
		after := regexp.MustCompile(quoted + `\s*[:\-]?\s*` + numberPat)
		keyLen := len(entry.key)
		for _, m := range after.FindAllStringSubmatchIndex(lowered, -1) {
			if !wordBoundaryBefore(lowered, m[0]) || !wordBoundaryAfter(lowered, m[0]+keyLen) {
				continue
			}
			qty, ok := parseNumber(lowered[m[2]:m[3]])
			if !ok {
				continue
			}
			if !spans.Claim(m[0], m[1]) {
				continue
			}
			items = append(items, newItem(entry.item, qty))
			accepted = true
		}

		// Bare mention: "и люстра" with no count at all.
		if accepted {
			continue
		}
		bare := regexp.MustCompile(quoted)
		for _, m := range bare.FindAllStringIndex(lowered, -1) {
			if !wordBoundaryBefore(lowered, m[0]) || !wordBoundaryAfter(lowered, m[1]) {
				continue
			}
			if !spans.Claim(m[0], m[1]) {
				continue
			}
			items = append(items, newItem(entry.item, 1))
		}
	}
	return items
}

func newItem(src catalog.PriceItem, quantity float64) Item {
	id := src.ID
	return Item{
		Name:        src.Name,
		PriceItemID: &id,
		Unit:        src.Unit,
		Quantity:    quantity,
		Price:       src.Price,
		Sum:         itemSum(quantity, src.Price),
	}
}

// The regexp package's \b only understands ASCII, so word boundaries around
// Cyrillic keys are checked by hand: the adjacent rune must not be a letter
// or a digit.

func wordBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func wordBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
