package ui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/smetacsv/internal/converter"

	tea "github.com/charmbracelet/bubbletea"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testModel(t *testing.T) (Model, string) {
	t.Helper()

	dir := t.TempDir()
	logger, _ := logtest.NewNullLogger()
	opts := converter.DefaultOptions()
	opts.Logger = logger

	return InitialModel(Settings{StartDir: dir, Options: opts}), dir
}

func writeSchedule(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"№", "Наименование", "Начало", "Окончание", "Стоимость", "Сумма НДС (руб)"},
		{1, "Этап 1. Обследование", "15.01.2024", "20.02.2024", 1000, 200},
		{2, "Этап 2. Рабочая документация", "01.03.2024", "", 500, 100},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestInitialModel(t *testing.T) {
	m, dir := testModel(t)

	assert.Equal(t, stateMenu, m.state)
	assert.Equal(t, converter.SupportedExtensions(), m.filepicker.AllowedTypes)
	assert.Equal(t, dir, m.filepicker.CurrentDirectory)
	assert.Equal(t, dir, m.dirpicker.CurrentDirectory)
	assert.True(t, m.dirpicker.DirAllowed)
	assert.False(t, m.dirpicker.FileAllowed)
	assert.Contains(t, m.View(), "Конвертер Excel в CSV")
}

func TestInitialModel_OutputDir(t *testing.T) {
	out := t.TempDir()
	m := InitialModel(Settings{StartDir: t.TempDir(), OutputDir: out, Options: converter.DefaultOptions()})
	assert.Equal(t, out, m.dirpicker.CurrentDirectory)
}

func TestMenuNavigation(t *testing.T) {
	m, _ := testModel(t)

	m, _ = update(t, m, key("up"))
	assert.Equal(t, 0, m.cursor)

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	assert.Equal(t, len(menuItems)-1, m.cursor)

	m, _ = update(t, m, key("enter"))
	assert.Equal(t, stateFilePicker, m.state)
	assert.Equal(t, actionPreview, m.action)
	assert.Contains(t, m.View(), "Выберите файл Excel")

	m, _ = update(t, m, key("q"))
	assert.Equal(t, stateMenu, m.state)
}

func TestQuitKeys(t *testing.T) {
	m, _ := testModel(t)

	_, cmd := update(t, m, key("q"))
	assert.True(t, isQuit(cmd))

	m.state = stateWorking
	_, cmd = update(t, m, key("ctrl+c"))
	assert.True(t, isQuit(cmd))
}

func TestWorkingIgnoresKeys(t *testing.T) {
	m, _ := testModel(t)
	m.state = stateWorking

	m, cmd := update(t, m, key("q"))
	assert.Equal(t, stateWorking, m.state)
	assert.Nil(t, cmd)
}

func TestConversionComplete(t *testing.T) {
	m, dir := testModel(t)
	input := filepath.Join(dir, "plan.xlsx")
	writeSchedule(t, input)

	m.selectedFile = input
	m.state = stateDirPicker
	m, cmd := update(t, m, key("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, stateWorking, m.state)
	assert.Contains(t, m.View(), "plan.xlsx")

	msg := runConvert(input, dir, m.opts)()
	done, ok := msg.(conversionCompleteMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	m, _ = update(t, m, msg)
	assert.Equal(t, stateComplete, m.state)
	assert.Equal(t, filepath.Join(dir, "plan.csv"), m.result.OutputFile)
	assert.Contains(t, m.View(), "Файл успешно конвертирован в:")
	assert.FileExists(t, m.result.OutputFile)

	m, cmd = update(t, m, key("enter"))
	assert.Equal(t, stateMenu, m.state)
	assert.False(t, isQuit(cmd))
}

func TestConversionError(t *testing.T) {
	m, dir := testModel(t)

	msg := runConvert(filepath.Join(dir, "missing.xlsx"), dir, m.opts)()
	m, _ = update(t, m, msg)

	assert.Equal(t, stateError, m.state)
	var notFound *converter.FileNotFoundError
	assert.True(t, errors.As(m.err, &notFound))
	assert.Contains(t, m.View(), "Ошибка")

	_, cmd := update(t, m, key("q"))
	assert.True(t, isQuit(cmd))
}

func TestPreviewLoaded(t *testing.T) {
	m, dir := testModel(t)
	input := filepath.Join(dir, "plan.xlsx")
	writeSchedule(t, input)
	m.selectedFile = input
	m.action = actionPreview
	m.state = stateWorking

	m, _ = update(t, m, runPreview(input, m.opts)())
	require.Equal(t, statePreview, m.state)

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "20%", rows[0][len(rows[0])-1])
	for _, col := range m.table.Columns() {
		assert.Empty(t, col.Title)
		assert.LessOrEqual(t, col.Width, maxColumnWidth)
	}
	assert.Contains(t, m.View(), "Предварительный просмотр")

	m, _ = update(t, m, key("esc"))
	assert.Equal(t, stateMenu, m.state)
}

func TestPreviewTableFlattensNewlines(t *testing.T) {
	m, dir := testModel(t)
	input := filepath.Join(dir, "multi.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{1, "Этап 1.\nОбследование"}))
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	m, _ = update(t, m, runPreview(input, m.opts)())
	require.Equal(t, statePreview, m.state)

	for _, cell := range m.table.Rows()[0] {
		assert.NotContains(t, cell, "\n")
	}
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", truncatePath("short", 10))
	assert.Equal(t, "...ef", truncatePath("abcdef", 5))

	long := string(os.PathSeparator) + "очень/длинный/путь/к/файлу.csv"
	got := truncatePath(long, 12)
	assert.Len(t, []rune(got), 12)
}
