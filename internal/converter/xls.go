package converter

import (
	"fmt"
	"math"

	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/yamitzky/xlrd-go/xlrd"
)

func readXLSRows(filePath string) ([][]types.Cell, error) {
	book, err := xlrd.OpenWorkbook(filePath, &xlrd.OpenWorkbookOptions{FormattingInfo: true})
	if err != nil {
		return nil, err
	}

	sheet, err := book.SheetByIndex(0)
	if err != nil {
		return nil, err
	}

	rows := make([][]types.Cell, sheet.NRows)
	for r := 0; r < sheet.NRows; r++ {
		row := make([]types.Cell, sheet.NCols)
		for c := 0; c < sheet.NCols; c++ {
			row[c] = decodeXLSCell(book, sheet, r, c)
		}
		rows[r] = row
	}
	return rows, nil
}

func decodeXLSCell(book *xlrd.Book, sheet *xlrd.Sheet, r, c int) types.Cell {
	value := sheet.RawCellValue(r, c)

	switch sheet.RawCellType(r, c) {
	case xlrd.XL_CELL_EMPTY, xlrd.XL_CELL_BLANK:
		return types.Cell{}
	case xlrd.XL_CELL_NUMBER:
		v, ok := xlsFloat(value)
		if !ok {
			break
		}
		if isXLSDateCell(book, sheet.RawCellXFIndex(r, c)) && !math.IsNaN(v) && !math.IsInf(v, 0) {
			if t, err := xlrd.XldateAsDatetime(v, book.Datemode); err == nil {
				return types.TimeCell(t)
			}
		}
		return types.NumberCell(v)
	case xlrd.XL_CELL_BOOLEAN:
		switch b := value.(type) {
		case bool:
			return types.BoolCell(b)
		case int:
			return types.BoolCell(b != 0)
		}
	case xlrd.XL_CELL_ERROR:
		switch code := value.(type) {
		case byte:
			if text, ok := xlrd.ErrorTextFromCode[code]; ok {
				return types.TextCell(text)
			}
		case int:
			if text, ok := xlrd.ErrorTextFromCode[byte(code)]; ok {
				return types.TextCell(text)
			}
		}
		return types.TextCell("#ERROR")
	}

	switch v := value.(type) {
	case nil:
		return types.Cell{}
	case string:
		return types.TextCell(v)
	default:
		return types.TextCell(fmt.Sprint(v))
	}
}

func xlsFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func isXLSDateCell(book *xlrd.Book, xfIndex int) bool {
	if xfIndex < 0 || xfIndex >= len(book.XFList) {
		return false
	}
	formatKey := book.XFList[xfIndex].FormatKey
	if builtinDateFormats[formatKey] {
		return true
	}
	if book.FormatMap == nil {
		return false
	}
	format := book.FormatMap[formatKey]
	if format == nil || format.FormatString == "" {
		return false
	}
	return xlrd.IsDateFormatString(book, format.FormatString)
}
