// Package pricing computes line and order totals.
//
// All functions are pure and work on decimals so totals are exact and reproducible.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kendall-kelly/hantverk-dashboard/draft"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/utils"
)

// EffectiveUnitPrice returns the price a line item is charged at.
// A numeric override typed by the user always wins, even when it disagrees with the
// catalog. Otherwise the referenced material's price is used, and an unresolved
// material costs zero.
func EffectiveUnitPrice(item draft.LineItem, materials []models.Material) decimal.Decimal {
	if override, ok := utils.ParseNumber(item.UnitPrice); ok {
		return override
	}
	return CatalogPrice(item.MaterialID, materials)
}

// CatalogPrice returns the price of the material with the given id, or zero
func CatalogPrice(materialID string, materials []models.Material) decimal.Decimal {
	if materialID == "" {
		return decimal.Zero
	}
	if material, ok := models.FindMaterial(materials, materialID); ok {
		return decimal.NewFromFloat(material.Price)
	}
	return decimal.Zero
}

// LineTotal is quantity × effective unit price; a blank or malformed quantity counts as zero
func LineTotal(item draft.LineItem, materials []models.Material) decimal.Decimal {
	return Extend(utils.NumberOrZero(item.Quantity), EffectiveUnitPrice(item, materials))
}

// DraftTotal sums LineTotal over the draft's rows in row order
func DraftTotal(d draft.Draft, materials []models.Material) decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(LineTotal(item, materials))
	}
	return total
}

// Extend multiplies a quantity by a unit price
func Extend(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// FormatAmount renders an amount with exactly two decimals, e.g. "200.00"
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatFloat is FormatAmount for amounts that arrive as JSON numbers
func FormatFloat(amount float64) string {
	return FormatAmount(decimal.NewFromFloat(amount))
}
