package converter

import (
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/xuri/excelize/v2"
)

// builtinDateFormats are the built-in number format IDs that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 30: true, 36: true, 45: true, 46: true, 47: true, 50: true, 57: true, 58: true,
}

func readXLSXRows(filePath string) ([][]types.Cell, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	styles := &dateStyles{f: f, known: make(map[int]bool)}

	out := make([][]types.Cell, len(rows))
	for r, row := range rows {
		cells := make([]types.Cell, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			cells[c] = decodeXLSXCell(f, sheetName, cellName, raw, date1904, styles)
		}
		out[r] = cells
	}

	return out, nil
}

func decodeXLSXCell(f *excelize.File, sheet, cell, raw string, date1904 bool, styles *dateStyles) types.Cell {
	typ, _ := f.GetCellType(sheet, cell)

	switch typ {
	case excelize.CellTypeBool:
		return types.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return types.TimeCell(t)
			}
		}
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			break
		}
		if styles.isDate(sheet, cell) {
			if t, err := excelize.ExcelDateToTime(v, date1904); err == nil {
				return types.TimeCell(t)
			}
		}
		return types.NumberCell(v)
	}

	return types.TextCell(raw)
}

// dateStyles caches, per style index, whether the style's number format is a date.
type dateStyles struct {
	f     *excelize.File
	known map[int]bool
}

func (d *dateStyles) isDate(sheet, cell string) bool {
	idx, err := d.f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := d.known[idx]; ok {
		return v
	}

	isDate := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		isDate = builtinDateFormats[style.NumFmt]
		if !isDate && style.CustomNumFmt != nil {
			isDate = IsDateFormatCode(*style.CustomNumFmt)
		}
	}
	d.known[idx] = isDate
	return isDate
}

// IsDateFormatCode reports whether a custom number format code renders a
// date or time. Quoted literals, escapes and bracketed sections such as
// colors and locales are ignored.
func IsDateFormatCode(code string) bool {
	if strings.EqualFold(code, "general") {
		return false
	}

	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}

	return strings.ContainsAny(strings.ToLower(b.String()), "ydmhs")
}
