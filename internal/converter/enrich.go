package converter

import (
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// StageMarker prefixes the cell that anchors the project type column.
const StageMarker = "Этап"

// VATRate fills the constant VAT rate column.
const VATRate = "20%"

// Fixed insertion and date positions in the enriched table.
const (
	spacerPosition  = 1
	vatRatePosition = 7
	minDateWidth    = 6
)

var datePositions = [2]int{4, 5}

// ProjectTypes maps the line code in the first column to the kind of work.
var ProjectTypes = map[int]string{
	1:  "Проектная документация",
	2:  "Рабочая документация",
	3:  "Обмерные обследовательские работы",
	4:  "Инженерные изыскания",
	5:  "Основные проектные решения",
	6:  "Разработка документации по планировке территории",
	7:  "Исходно-разрешительная документация",
	8:  "Авторский надзор",
	9:  "Обоснование инвестиций, ТЭО",
	10: "Прочие работы/услуги",
}

// ProjectType returns the label for a digit-string code, or "" when the code
// is not a digit string or not in ProjectTypes.
func ProjectType(code string) string {
	if !IsDigits(code) {
		return ""
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return ""
	}
	return ProjectTypes[n]
}

// ColumnLayout records where each derived column ended up after enrichment.
// Stage is -1 when no stage marker was found.
type ColumnLayout struct {
	Stage       int
	ProjectType int
	Spacer      int
	VATRate     int
	Dates       [2]int
	HasDates    bool
}

// StageIndex returns the smallest column index, over all rows, of a cell
// starting with StageMarker.
func StageIndex(t *types.Table) (int, bool) {
	best, found := 0, false
	for _, row := range t.Rows {
		for i, cell := range row {
			if strings.HasPrefix(cell.String(), StageMarker) {
				if !found || i < best {
					best, found = i, true
				}
				break
			}
		}
	}
	return best, found
}

// Enrich inserts the derived columns and normalizes the date columns. The
// table ends up exactly three columns wider.
func Enrich(t *types.Table) ColumnLayout {
	layout := InsertColumns(t)
	NormalizeDates(t, layout)
	return layout
}

// InsertColumns adds the project type column right after the stage column,
// an empty spacer at position 1 and the VAT rate at position 7. A position
// past the current width appends the column.
func InsertColumns(t *types.Table) ColumnLayout {
	stage, found := StageIndex(t)

	derived := make([]types.Cell, t.Len())
	for i, row := range t.Rows {
		first := ""
		if len(row) > 0 {
			first = row[0].String()
		}
		derived[i] = types.TextCell(ProjectType(first))
	}

	layout := ColumnLayout{Stage: -1}
	if found {
		layout.Stage = stage
	}

	layout.ProjectType = t.InsertColumn(stage+1, derived)

	layout.Spacer = t.InsertColumn(spacerPosition, nil)
	layout.Stage = shiftedBy(layout.Stage, layout.Spacer)
	layout.ProjectType = shiftedBy(layout.ProjectType, layout.Spacer)

	vat := make([]types.Cell, t.Len())
	for i := range vat {
		vat[i] = types.TextCell(VATRate)
	}
	layout.VATRate = t.InsertColumn(vatRatePosition, vat)
	layout.Stage = shiftedBy(layout.Stage, layout.VATRate)
	layout.ProjectType = shiftedBy(layout.ProjectType, layout.VATRate)
	layout.Spacer = shiftedBy(layout.Spacer, layout.VATRate)

	layout.Dates = datePositions
	layout.HasDates = t.Width >= minDateWidth

	return layout
}

func shiftedBy(pos, inserted int) int {
	if pos >= inserted {
		return pos + 1
	}
	return pos
}

// NormalizeDates replaces the date columns with calendar dates. Values that
// cannot be read as a date become null cells.
func NormalizeDates(t *types.Table, layout ColumnLayout) {
	if !layout.HasDates {
		return
	}
	for _, row := range t.Rows {
		for _, idx := range layout.Dates {
			if idx < len(row) {
				row[idx] = ToDate(row[idx])
			}
		}
	}
}

var dayFirstLayouts = []string{
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2.1.2006",
	"02.01.06",
}

// ToDate coerces a cell to a date cell, or a null cell if it is not a date.
// Numbers are Excel serial dates.
func ToDate(c types.Cell) types.Cell {
	switch c.Kind {
	case types.Time, types.Date:
		return types.DateCell(c.At)
	case types.Number:
		if t, err := excelize.ExcelDateToTime(c.Num, false); err == nil {
			return types.DateCell(t)
		}
	case types.Text:
		if t, ok := ParseDate(c.Str); ok {
			return types.DateCell(t)
		}
	}
	return types.NullCell()
}

// ParseDate parses day-first Russian dates and falls back to dateparse for
// everything else.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
