package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

// FormatDecimal renders whole values as integers ("3") and anything with a
// fractional tenth as the raw decimal ("3.5").
func FormatDecimal(d decimal.Decimal) string {
	if d.Mul(ten).Mod(ten).IsZero() {
		return d.Truncate(0).String()
	}
	return d.String()
}

func sortBookAuthors(links []BookAuthor) {
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Idx < links[j].Idx
	})
}

// SortSeriesIndexes orders series memberships by raw position.
func SortSeriesIndexes(idx []SeriesIndex) {
	sort.SliceStable(idx, func(i, j int) bool {
		return idx[i].Idx.LessThan(idx[j].Idx)
	})
}
