package enrich

import (
	"regexp"
	"strings"

	"orderlens/pkg/contracts/domain"
)

// weightPattern matches a numeric value directly followed by the mass unit,
// e.g. "3kg" or "2.5kg", anywhere in a product name.
var weightPattern = regexp.MustCompile(`\d+\.?\d*kg`)

// gradePattern matches one of the fixed size-grade labels used in product
// names. The set is enumerated deliberately; free-form grade text stays
// unclassified.
var gradePattern = regexp.MustCompile(`(로얄과|소과|중대과|대과|특대과|가정용)`)

// WeightTag extracts the weight token from a product name, or the
// unclassified sentinel when no token matches.
func WeightTag(productName string) string {
	if match := weightPattern.FindString(productName); match != "" {
		return match
	}
	return domain.TagUnclassified
}

// GradeTag extracts the size-grade token from a product name, or the
// unclassified sentinel when no token matches.
func GradeTag(productName string) string {
	if match := gradePattern.FindString(productName); match != "" {
		return match
	}
	return domain.TagUnclassified
}

// Region returns the first whitespace-delimited token of an address (the
// province/city level), or the unclassified sentinel for an empty address.
func Region(address string) string {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return domain.TagUnclassified
	}
	return fields[0]
}
