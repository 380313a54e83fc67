package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"General", false},
		{"general", false},
		{"0.00", false},
		{"0.00E+00", false},
		{"#,##0.00 \"руб.\"", false},
		{"\"day \"0", false},
		{"[Red]0.00", false},
		{"[$-419]#,##0", false},
		{"_(* #,##0_)", false},
		{"0\\h", false},
		{"[$-419]DD.MM.YYYY", true},
		{"dd.mm.yyyy", true},
		{"yyyy-mm-dd;@", true},
		{"h:mm:ss", true},
		{"[h]:mm", true},
		{"\"с \"dd.mm", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDateFormatCode(tt.code))
		})
	}
}
