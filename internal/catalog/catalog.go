// Package catalog defines the company price catalog: the named, priced
// service and material lines an estimate can reference, together with the
// synonym phrases used for speech-to-catalog matching.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a measurement unit code for a price item.
type Unit string

const (
	// UnitSquareMeter is an area-priced unit. For items carrying this unit the
	// room's footprint — not a spoken number — is the authoritative quantity.
	UnitSquareMeter Unit = "м²"

	// UnitPiece counts discrete items (spotlights, chandeliers).
	UnitPiece Unit = "шт"

	// UnitLinearMeter measures lengths (cornices, LED strips).
	UnitLinearMeter Unit = "пог.м"

	// UnitSet counts assembled kits.
	UnitSet Unit = "компл"
)

// IsArea reports whether the unit denotes an area measurement. Both the
// canonical "м²" spelling and the ASCII "м2" variant found in imported price
// lists are recognised.
func (u Unit) IsArea() bool {
	switch u {
	case UnitSquareMeter, "м2", "кв.м":
		return true
	}
	return false
}

// PriceItem is a single line of a company's price catalog.
type PriceItem struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	Name      string          `json:"name"`
	Unit      Unit            `json:"unit"`
	Price     decimal.Decimal `json:"price"`

	// Synonyms is a comma-separated list of alternate phrasings a measurer may
	// use for this item. May be empty.
	Synonyms string `json:"synonyms"`

	// IsActive controls whether the item participates in parsing and new
	// estimates. Deactivated items are kept for historic estimates.
	IsActive bool `json:"is_active"`

	// IsCustom marks items added by the company on top of the stock catalog.
	IsCustom bool `json:"is_custom"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the invariants every catalog entry must satisfy.
func (p *PriceItem) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("catalog: name must not be empty"))
	}
	if p.Unit == "" {
		errs = append(errs, errors.New("catalog: unit must not be empty"))
	}
	if p.Price.IsNegative() {
		errs = append(errs, fmt.Errorf("catalog: price %s must not be negative", p.Price))
	}
	return errors.Join(errs...)
}

// SynonymList splits the Synonyms field on commas, trims whitespace, and
// drops empty tokens. The returned phrases keep their original casing.
func (p *PriceItem) SynonymList() []string {
	if p.Synonyms == "" {
		return nil
	}
	parts := strings.Split(p.Synonyms, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
