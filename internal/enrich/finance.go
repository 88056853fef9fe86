package enrich

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// priceBandWidth is the bucket width for unit-price banding.
const priceBandWidth = 10000

// bandPrinter formats band labels with thousands grouping.
var bandPrinter = message.NewPrinter(language.Korean)

// PriceBand buckets a unit price to the nearest 10,000-unit band and
// formats it as a labeled range, e.g. "30,000원대".
func PriceBand(unitPrice float64) string {
	band := int64(unitPrice/priceBandWidth) * priceBandWidth
	return bandPrinter.Sprintf("%d원대", band)
}

// margin returns gp/paid, defined as 0 whenever paid is not positive.
func margin(gp, paid float64) float64 {
	if paid > 0 {
		return gp / paid
	}
	return 0
}

// ratio returns num/denom with division by non-positive denominators
// defined as 0.
func ratio(num, denom float64) float64 {
	if denom > 0 {
		return num / denom
	}
	return 0
}
