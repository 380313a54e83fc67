package converter

import (
	"fmt"
	"strings"

	"github.com/nconklindev/smetacsv/internal/types"
)

// MaxColumns is the column count the accounting import expects.
const MaxColumns = 8

type TrimMode int

const (
	// TrimPair removes the column at MaxColumns while the table is too wide,
	// at most twice.
	TrimPair TrimMode = iota
	// TrimLegacy reproduces the historical checks: remove index 8 when the
	// width exceeds 8, then again when it still exceeds 9. A table that is
	// 10 columns wide after enrichment keeps 9 columns in this mode.
	TrimLegacy
	// TrimStrict drops every column past MaxColumns.
	TrimStrict
)

var trimModeNames = map[TrimMode]string{
	TrimPair:   "pair",
	TrimLegacy: "legacy",
	TrimStrict: "strict",
}

func (m TrimMode) String() string {
	if name, ok := trimModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("TrimMode(%d)", int(m))
}

// ParseTrimMode accepts "pair", "legacy" or "strict". An empty string is TrimPair.
func ParseTrimMode(s string) (TrimMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TrimPair, nil
	}
	for mode, name := range trimModeNames {
		if name == s {
			return mode, nil
		}
	}
	return TrimPair, fmt.Errorf("unknown trim mode %q (want pair, legacy or strict)", s)
}

// TrimWidth drops trailing columns according to mode and returns how many
// columns were removed.
func TrimWidth(t *types.Table, mode TrimMode) int {
	before := t.Width

	switch mode {
	case TrimLegacy:
		if t.Width > MaxColumns {
			t.RemoveColumns(MaxColumns)
		}
		if t.Width > MaxColumns+1 {
			t.RemoveColumns(MaxColumns)
		}
	case TrimStrict:
		for t.Width > MaxColumns {
			t.RemoveColumns(MaxColumns)
		}
	default:
		for i := 0; i < 2 && t.Width > MaxColumns; i++ {
			t.RemoveColumns(MaxColumns)
		}
	}

	return before - t.Width
}
