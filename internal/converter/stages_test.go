package converter

import (
	"fmt"
	"testing"
	"time"

	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneColumns(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		dropped  []int
		expected [][]string
	}{
		{
			name: "Drops both VAT columns",
			rows: [][]string{
				{"№", "Сумма НДС (руб)", "Цена", "Сумма с НДС (руб.)"},
				{"1", "20", "100", "120"},
			},
			dropped:  []int{1, 3},
			expected: [][]string{{"№", "Цена"}, {"1", "100"}},
		},
		{
			name: "Exact match anywhere removes the column",
			rows: [][]string{
				{"Итого: Сумма НДС (руб)", "a", "b"},
				{"1", "x", "y"},
				{"2", "z", "Сумма НДС (руб)"},
			},
			dropped:  []int{2},
			expected: [][]string{{"Итого: Сумма НДС (руб)", "a"}, {"1", "x"}, {"2", "z"}},
		},
		{
			name: "Substring only is a no-op",
			rows: [][]string{
				{"Итого: Сумма НДС (руб)", "a"},
			},
			dropped:  []int{},
			expected: [][]string{{"Итого: Сумма НДС (руб)", "a"}},
		},
		{
			name:     "Marker past the scan window is ignored",
			rows:     append(make11Rows(), []string{"Сумма НДС (руб)", "v"}),
			dropped:  []int{},
			expected: append(make11Rows(), []string{"Сумма НДС (руб)", "v"}),
		},
		{
			name:     "No markers",
			rows:     [][]string{{"1", "2"}},
			dropped:  []int{},
			expected: [][]string{{"1", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := types.TableFromStrings(tt.rows)
			got := PruneColumns(table)
			assert.Equal(t, tt.dropped, got)
			assert.Equal(t, tt.expected, table.Strings())
			assert.Equal(t, len(tt.expected[0]), table.Width)
		})
	}
}

func make11Rows() [][]string {
	rows := make([][]string, 11)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i), "x"}
	}
	return rows
}

func TestFilterRows(t *testing.T) {
	table := types.NewTable([][]types.Cell{
		{types.TextCell("1"), types.TextCell("a")},
		{types.TextCell("abc"), types.TextCell("b")},
		{types.NumberCell(2), types.TextCell("c")},
		{types.TextCell(""), types.TextCell("d")},
		{types.NumberCell(2.5), types.TextCell("e")},
		{types.TextCell("-3"), types.TextCell("f")},
		{types.TextCell("1.0"), types.TextCell("g")},
		{types.TextCell("007"), types.TextCell("h")},
		{types.BoolCell(true), types.TextCell("i")},
	})

	dropped := FilterRows(table)

	assert.Equal(t, 6, dropped)
	assert.Equal(t, [][]string{{"1", "a"}, {"2", "c"}, {"007", "h"}}, table.Strings())
	for _, row := range table.Rows {
		assert.True(t, IsDigits(row[0].String()))
	}
}

func TestFilterRows_AllDropped(t *testing.T) {
	table := types.TableFromStrings([][]string{{"Итого", "1"}})
	FilterRows(table)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 2, table.Width)
}

func TestProjectType(t *testing.T) {
	for code, label := range ProjectTypes {
		assert.Equal(t, label, ProjectType(fmt.Sprint(code)))
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Zero", "0", ""},
		{"Eleven", "11", ""},
		{"Leading zero", "03", "Обмерные обследовательские работы"},
		{"Not digits", "1a", ""},
		{"Empty", "", ""},
		{"Overflow", "99999999999999999999999", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectType(tt.input))
		})
	}
}

func TestStageIndex(t *testing.T) {
	tests := []struct {
		name  string
		rows  [][]string
		index int
		found bool
	}{
		{"First match per row, minimum across rows", [][]string{
			{"1", "x", "y", "Этап 1", "Этап 2"},
			{"2", "Этап 3", "y", "z", "w"},
		}, 1, true},
		{"Prefix only", [][]string{{"1", "1 Этап", "Этапы"}}, 2, true},
		{"No marker defaults to zero", [][]string{{"1", "x"}}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, found := StageIndex(types.TableFromStrings(tt.rows))
			assert.Equal(t, tt.index, idx)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestInsertColumns_StageScenario(t *testing.T) {
	table := types.TableFromStrings([][]string{
		{"1", "a", "b", "Этап 1", "c", "d"},
		{"abc", "a", "b", "c", "d", "e"},
		{"2", "a", "b", "c", "d", "e"},
		{"", "a", "b", "c", "d", "e"},
	})
	FilterRows(table)
	require.Equal(t, 2, table.Len())

	stage, found := StageIndex(table)
	require.True(t, found)
	require.Equal(t, 3, stage)

	layout := InsertColumns(table)

	assert.Equal(t, 9, table.Width)
	// The derived column went in at stage+1 = 4, then shifted right by the spacer.
	assert.Equal(t, 4, layout.Stage)
	assert.Equal(t, 5, layout.ProjectType)
	assert.Equal(t, 1, layout.Spacer)
	assert.Equal(t, 7, layout.VATRate)
	assert.True(t, layout.HasDates)

	assert.Equal(t, []string{"1", "", "a", "b", "Этап 1", "Проектная документация", "c", "20%", "d"}, table.Strings()[0])
	assert.Equal(t, []string{"2", "", "a", "b", "c", "Рабочая документация", "d", "20%", "e"}, table.Strings()[1])
}

func TestEnrich_AddsThreeColumns(t *testing.T) {
	for width := 1; width <= 12; width++ {
		t.Run(fmt.Sprintf("Width %d", width), func(t *testing.T) {
			row := make([]string, width)
			row[0] = "4"
			table := types.TableFromStrings([][]string{row, row})
			table.Rows[1][0] = types.TextCell("5")

			layout := Enrich(table)

			assert.Equal(t, width+3, table.Width)
			for _, r := range table.Rows {
				assert.Len(t, r, width+3)
				if !layout.HasDates || (layout.VATRate != layout.Dates[0] && layout.VATRate != layout.Dates[1]) {
					assert.Equal(t, VATRate, r[layout.VATRate].String())
				}
			}
			assert.Equal(t, -1, layout.Stage)
		})
	}
}

func TestEnrich_NarrowTableAppendsVATRate(t *testing.T) {
	table := types.TableFromStrings([][]string{{"1", "x"}})

	layout := Enrich(table)

	assert.Equal(t, 5, table.Width)
	assert.Equal(t, 4, layout.VATRate)
	assert.False(t, layout.HasDates)
	assert.Equal(t, [][]string{{"1", "", "Проектная документация", "x", "20%"}}, table.Strings())
}

func TestEnrich_EmptyTable(t *testing.T) {
	table := &types.Table{Width: 4}
	Enrich(table)
	assert.Equal(t, 7, table.Width)
	assert.Equal(t, 0, table.Len())
}

func TestToDate(t *testing.T) {
	tests := []struct {
		name string
		cell types.Cell
		want string
		null bool
	}{
		{"Time keeps calendar date", types.TimeCell(time.Date(2024, 2, 3, 17, 45, 0, 0, time.UTC)), "2024-02-03", false},
		{"Day-first text", types.TextCell("05.04.2024"), "2024-04-05", false},
		{"Day-first with time", types.TextCell("05.04.2024 10:11:12"), "2024-04-05", false},
		{"ISO text", types.TextCell("2024-04-05"), "2024-04-05", false},
		{"Excel serial", types.NumberCell(45292), "2024-01-01", false},
		{"Unparseable text", types.TextCell("не дата"), "", true},
		{"Empty", types.Cell{}, "", true},
		{"Bool", types.BoolCell(true), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDate(tt.cell)
			if tt.null {
				assert.Equal(t, types.Null, got.Kind)
			} else {
				assert.Equal(t, types.Date, got.Kind)
			}
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTrimWidth(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		mode    TrimMode
		want    int
		removed int
	}{
		{"Pair at max", 8, TrimPair, 8, 0},
		{"Pair one over", 9, TrimPair, 8, 1},
		{"Pair two over", 10, TrimPair, 8, 2},
		{"Pair three over keeps nine", 11, TrimPair, 9, 2},
		{"Pair caps at two removals", 12, TrimPair, 10, 2},
		{"Legacy one over", 9, TrimLegacy, 8, 1},
		{"Legacy two over keeps nine", 10, TrimLegacy, 9, 1},
		{"Legacy three over", 11, TrimLegacy, 9, 2},
		{"Strict", 14, TrimStrict, 8, 6},
		{"Narrow table untouched", 5, TrimStrict, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, tt.width)
			for i := range row {
				row[i] = fmt.Sprint(i)
			}
			table := types.TableFromStrings([][]string{row})

			removed := TrimWidth(table, tt.mode)

			assert.Equal(t, tt.want, table.Width)
			assert.Equal(t, tt.removed, removed)
			for i, cell := range table.Rows[0][:min(tt.want, 8)] {
				assert.Equal(t, fmt.Sprint(i), cell.String())
			}
		})
	}
}

func TestTrimWidth_NeverWiderThanMaxForEnrichedWidths(t *testing.T) {
	for width := MaxColumns; width <= MaxColumns+2; width++ {
		for _, mode := range []TrimMode{TrimPair, TrimStrict} {
			table := types.TableFromStrings([][]string{make([]string, width)})
			TrimWidth(table, mode)
			assert.LessOrEqual(t, table.Width, MaxColumns, "width %d mode %s", width, mode)
		}
	}
}

// A source with nine retained columns is twelve wide after enrichment, more
// than two past MaxColumns. Only strict mode gets it down to MaxColumns.
func TestTransform_WideSourceByMode(t *testing.T) {
	tests := []struct {
		mode TrimMode
		want int
	}{
		{TrimPair, 10},
		{TrimLegacy, 10},
		{TrimStrict, MaxColumns},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			table := types.TableFromStrings([][]string{
				{"1", "Этап 1", "01.02.2024", "03.04.2024", "c4", "c5", "c6", "c7", "c8"},
			})
			opts, _ := quietOptions()
			opts.TrimMode = tt.mode

			rep := Transform(table, opts)

			assert.Equal(t, tt.want, table.Width)
			assert.Equal(t, 12-tt.want, rep.TrimmedColumns)
		})
	}
}

func TestParseTrimMode(t *testing.T) {
	tests := []struct {
		input   string
		want    TrimMode
		wantErr bool
	}{
		{"", TrimPair, false},
		{"pair", TrimPair, false},
		{"Legacy", TrimLegacy, false},
		{" strict ", TrimStrict, false},
		{"all", TrimPair, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTrimMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.String(), trimModeNames[got])
		})
	}
}
