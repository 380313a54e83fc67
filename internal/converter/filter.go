package converter

import "github.com/nconklindev/smetacsv/internal/types"

// IsDigits reports whether s is a non-empty run of ASCII decimal digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FilterRows keeps only the rows whose first cell is a digit string, such as
// line numbers of an estimate, and returns how many rows were dropped.
func FilterRows(t *types.Table) int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if len(row) > 0 && IsDigits(row[0].String()) {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	for i := len(kept); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = kept
	return dropped
}
