package parse

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
)

// keyEntry binds one searchable phrase to the catalog entry it resolves to.
type keyEntry struct {
	key  string
	item catalog.PriceItem
}

// buildKeyTable derives the matching vocabulary from the catalog: every
// lowercased canonical name, plus every comma-split synonym longer than two
// runes. Shorter synonyms are dropped as too ambiguous. Duplicate keys
// resolve to the last-registered entry. Keys are returned longest first so
// that a phrase is always tried before any shorter phrase it contains.
func buildKeyTable(items []catalog.PriceItem) []keyEntry {
	byKey := make(map[string]catalog.PriceItem)
	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name != "" {
			byKey[name] = item
		}
		for _, syn := range item.SynonymList() {
			key := strings.ToLower(syn)
			if utf8.RuneCountInString(key) > 2 {
				byKey[key] = item
			}
		}
	}

	table := make([]keyEntry, 0, len(byKey))
	for key, item := range byKey {
		table = append(table, keyEntry{key: key, item: item})
	}
	sort.Slice(table, func(i, j int) bool {
		li := utf8.RuneCountInString(table[i].key)
		lj := utf8.RuneCountInString(table[j].key)
		if li != lj {
			return li > lj
		}
		return table[i].key < table[j].key
	})
	return table
}
