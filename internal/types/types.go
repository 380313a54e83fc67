package types

import (
	"math"
	"strconv"
	"time"
)

type CellKind int

const (
	Empty CellKind = iota
	Text
	Number
	Bool
	Time
	Date
	Null
)

// Cell is a single spreadsheet value as read from the source file.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Flag bool
	At   time.Time
}

func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Str: s}
}

func NumberCell(v float64) Cell { return Cell{Kind: Number, Num: v} }
func BoolCell(v bool) Cell      { return Cell{Kind: Bool, Flag: v} }
func TimeCell(t time.Time) Cell { return Cell{Kind: Time, At: t} }
func NullCell() Cell            { return Cell{Kind: Null} }

func DateCell(t time.Time) Cell {
	return Cell{Kind: Date, At: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// String returns the text form used by marker scans, digit checks and the CSV writer.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Str
	case Number:
		if math.Abs(c.Num) < 1e15 && c.Num == math.Trunc(c.Num) {
			return strconv.FormatInt(int64(c.Num), 10)
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Bool:
		if c.Flag {
			return "True"
		}
		return "False"
	case Time:
		return c.At.Format("2006-01-02 15:04:05")
	case Date:
		return c.At.Format("2006-01-02")
	}
	return ""
}

// Table is a rectangular grid of cells. Width is tracked separately so an
// empty table still knows its column count.
type Table struct {
	Width int
	Rows  [][]Cell
}

// NewTable builds a table from ragged rows, padding short rows with empty cells.
func NewTable(rows [][]Cell) *Table {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	t := &Table{Width: width, Rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		padded := make([]Cell, width)
		copy(padded, row)
		t.Rows[i] = padded
	}
	return t
}

// TableFromStrings is a convenience for building text tables.
func TableFromStrings(rows [][]string) *Table {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, s := range row {
			cells[i][j] = TextCell(s)
		}
	}
	return NewTable(cells)
}

func (t *Table) Len() int { return len(t.Rows) }

// InsertColumn inserts a column before position at. Positions past the end
// are clamped, so the column is appended. Missing values are empty cells.
func (t *Table) InsertColumn(at int, values []Cell) int {
	if at < 0 {
		at = 0
	}
	if at > t.Width {
		at = t.Width
	}
	for i, row := range t.Rows {
		var v Cell
		if i < len(values) {
			v = values[i]
		}
		row = append(row, Cell{})
		copy(row[at+1:], row[at:])
		row[at] = v
		t.Rows[i] = row
	}
	t.Width++
	return at
}

// RemoveColumns drops the given column indices. Duplicates and indices out of
// range are ignored.
func (t *Table) RemoveColumns(indices ...int) {
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < t.Width {
			drop[idx] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	for i, row := range t.Rows {
		kept := row[:0]
		for j, c := range row {
			if !drop[j] {
				kept = append(kept, c)
			}
		}
		t.Rows[i] = kept
	}
	t.Width -= len(drop)
}

// Strings renders every cell with Cell.String.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.String()
		}
	}
	return out
}

type ConversionResult struct {
	InputFile      string
	OutputFile     string
	DroppedColumns []int
	RowsRead       int
	RowsProcessed  int
	Columns        int
}
