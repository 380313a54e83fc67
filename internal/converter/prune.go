package converter

import (
	"sort"
	"strings"

	"github.com/nconklindev/smetacsv/internal/types"
)

// VATMarkers are header texts of the VAT amount columns dropped before conversion.
var VATMarkers = []string{"Сумма НДС (руб)", "Сумма с НДС (руб.)"}

// FindVATColumns returns, in ascending order, every column holding a cell
// exactly equal to a VAT marker. A marker only counts if it appears as a
// substring somewhere in the first RowDetectionLimit rows.
func FindVATColumns(t *types.Table) []int {
	drop := make(map[int]bool)

	for _, marker := range VATMarkers {
		if !markerInHead(t, marker) {
			continue
		}
		for c := 0; c < t.Width; c++ {
			for _, row := range t.Rows {
				if row[c].String() == marker {
					drop[c] = true
					break
				}
			}
		}
	}

	cols := make([]int, 0, len(drop))
	for c := range drop {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

func markerInHead(t *types.Table, marker string) bool {
	for i := 0; i < len(t.Rows) && i < RowDetectionLimit; i++ {
		for _, cell := range t.Rows[i] {
			if strings.Contains(cell.String(), marker) {
				return true
			}
		}
	}
	return false
}

// PruneColumns removes the VAT columns and returns their original indices.
func PruneColumns(t *types.Table) []int {
	cols := FindVATColumns(t)
	t.RemoveColumns(cols...)
	return cols
}
