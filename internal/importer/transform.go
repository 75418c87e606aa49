package importer

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"product-import-service/internal/models"
)

// ErrMissingSKU marks a row whose SKU cell is absent or blank. It is fatal
// to the whole import, unlike the per-field coercions below.
var ErrMissingSKU = errors.New("sku column is required")

// Recognized true values for the is_active column, compared case-insensitively.
var truthyValues = map[string]bool{
	"1":      true,
	"true":   true,
	"yes":    true,
	"active": true,
}

// TransformRow maps one raw CSV row to a product record. The row keys are
// the header names lowered by the reader, so lookups here stay
// case-insensitive without re-checking spellings. No I/O happens here.
func TransformRow(row map[string]string) (models.Product, error) {
	sku := strings.TrimSpace(row["sku"])
	if sku == "" {
		return models.Product{}, ErrMissingSKU
	}

	var product models.Product
	product.SetSKU(sku)
	product.Name = row["name"]
	product.Description = optionalString(row["description"])
	product.Price = safeDecimal(row["price"])
	product.IsActive = parseBool(firstNonEmpty(row["is_active"], row["active"], "true"))
	return product, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// safeDecimal parses a price into a 2-scale decimal. Empty, the literal
// "null", and anything unparseable all coerce to null rather than failing
// the row.
func safeDecimal(value string) decimal.NullDecimal {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d.Round(2), Valid: true}
}

func parseBool(value string) bool {
	return truthyValues[strings.ToLower(strings.TrimSpace(value))]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
