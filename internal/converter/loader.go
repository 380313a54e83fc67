package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/smetacsv/internal/types"
)

var supportedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".xlsb", ".xls"}

// SupportedExtensions lists every extension Load can read. The file picker
// uses the same list.
func SupportedExtensions() []string {
	return append([]string(nil), supportedExtensions...)
}

// Load reads the first worksheet of a spreadsheet into a table. Every sheet
// row becomes a table row; nothing is consumed as a header.
func Load(filePath string) (*types.Table, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: filePath}
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, &FileNotFoundError{Path: filePath}
	}

	ext := strings.ToLower(filepath.Ext(filePath))

	var rows [][]types.Cell
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = readXLSXRows(filePath)
	case ".xlsb":
		rows, err = readXLSBRows(filePath)
	case ".xls":
		rows, err = readXLSRows(filePath)
	default:
		return nil, &UnsupportedFormatError{Path: filePath, Ext: ext}
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать %s: %w", filepath.Base(filePath), err)
	}

	rows = trimTrailingEmptyRows(rows)
	if len(rows) == 0 {
		return nil, &EmptyDataError{Path: filePath}
	}

	return types.NewTable(rows), nil
}

func trimTrailingEmptyRows(rows [][]types.Cell) [][]types.Cell {
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isEmptyRow(row []types.Cell) bool {
	for _, c := range row {
		if c.Kind != types.Empty {
			return false
		}
	}
	return true
}
