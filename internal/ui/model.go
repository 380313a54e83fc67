package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/smetacsv/internal/converter"
	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

type state int

const (
	stateMenu state = iota
	stateFilePicker
	stateDirPicker
	stateWorking
	statePreview
	stateComplete
	stateError
)

type action int

const (
	actionConvert action = iota
	actionPreview
)

var menuItems = []struct {
	action action
	label  string
}{
	{actionConvert, "Выбрать файл и конвертировать в CSV"},
	{actionPreview, "Предварительный просмотр"},
}

const (
	maxColumnWidth = 32
	minColumnWidth = 3
)

// Settings configures a new Model.
type Settings struct {
	StartDir  string
	OutputDir string
	Options   converter.Options
}

type Model struct {
	state        state
	action       action
	cursor       int
	filepicker   filepicker.Model
	dirpicker    filepicker.Model
	spinner      spinner.Model
	table        table.Model
	selectedFile string
	opts         converter.Options
	log          logrus.FieldLogger
	result       *types.ConversionResult
	report       *converter.Report
	notice       string
	err          error
	width        int
	height       int
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	err    error
}

type previewLoadedMsg struct {
	table  *types.Table
	report *converter.Report
	err    error
}

func newPicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accentColor)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(softColor)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(softColor)
	fp.Styles.File = lipgloss.NewStyle().Foreground(textColor)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(mutedColor)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(mutedColor)

	return fp
}

func InitialModel(s Settings) Model {
	fp := newPicker(s.StartDir)
	fp.AllowedTypes = converter.SupportedExtensions()

	outDir := s.OutputDir
	if outDir == "" {
		outDir = s.StartDir
	}
	dp := newPicker(outDir)
	dp.DirAllowed = true
	dp.FileAllowed = false

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle))

	log := s.Options.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return Model{
		state:      stateMenu,
		filepicker: fp,
		dirpicker:  dp,
		spinner:    sp,
		table:      table.New(),
		opts:       s.Options,
		log:        log,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.filepicker.Init(), m.dirpicker.Init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, subtitle and help lines
		height := msg.Height - 12
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		m.dirpicker.SetHeight(height)
		m.table.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case conversionCompleteMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case previewLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.report = msg.report
		m.table = newPreviewTable(msg.table, m.height)
		m.state = statePreview
		return m, nil

	case spinner.TickMsg:
		if m.state != stateWorking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Directory listings and other picker messages carry the picker's id,
	// so both pickers can see them.
	var fpCmd, dpCmd tea.Cmd
	m.filepicker, fpCmd = m.filepicker.Update(msg)
	m.dirpicker, dpCmd = m.dirpicker.Update(msg)
	return m, tea.Batch(fpCmd, dpCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.action = menuItems[m.cursor].action
			m.notice = ""
			m.state = stateFilePicker
		}
		return m, nil

	case stateFilePicker:
		if msg.String() == "q" {
			m.state = stateMenu
			return m, nil
		}

		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.notice = ""
			if m.action == actionPreview {
				return m.startWork(runPreview(path, m.opts))
			}
			m.state = stateDirPicker
			return m, cmd
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.notice = fmt.Sprintf("Неподдерживаемый формат файла: %s", filepath.Base(path))
		}
		return m, cmd

	case stateDirPicker:
		switch msg.String() {
		case "q":
			m.state = stateMenu
			return m, nil
		case "s":
			return m.startWork(runConvert(m.selectedFile, m.dirpicker.CurrentDirectory, m.opts))
		}

		var cmd tea.Cmd
		m.dirpicker, cmd = m.dirpicker.Update(msg)

		if didSelect, dir := m.dirpicker.DidSelectFile(msg); didSelect {
			return m.startWork(runConvert(m.selectedFile, dir, m.opts))
		}
		return m, cmd

	case stateWorking:
		// One action at a time.
		return m, nil

	case statePreview:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "backspace":
			m.state = stateMenu
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case stateComplete, stateError:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		m.err = nil
		m.state = stateMenu
		return m, nil
	}

	return m, nil
}

func (m Model) startWork(cmd tea.Cmd) (Model, tea.Cmd) {
	m.state = stateWorking
	m.log.WithFields(logrus.Fields{"file": m.selectedFile, "preview": m.action == actionPreview}).Info("action started")
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m Model) fail(err error) Model {
	m.log.WithError(err).WithField("file", m.selectedFile).Error("action failed")
	m.err = err
	m.state = stateError
	return m
}

func runConvert(inputFile, outputDir string, opts converter.Options) tea.Cmd {
	return func() tea.Msg {
		result, err := converter.Convert(inputFile, outputDir, opts)
		return conversionCompleteMsg{result: result, err: err}
	}
}

func runPreview(inputFile string, opts converter.Options) tea.Cmd {
	return func() tea.Msg {
		t, rep, err := converter.Preview(inputFile, opts)
		return previewLoadedMsg{table: t, report: rep, err: err}
	}
}

// newPreviewTable renders t read-only with blank column titles.
func newPreviewTable(t *types.Table, termHeight int) table.Model {
	cells := t.Strings()

	columns := make([]table.Column, t.Width)
	for c := range columns {
		width := minColumnWidth
		for _, row := range cells {
			if w := lipgloss.Width(row[c]); w > width {
				width = w
			}
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		columns[c] = table.Column{Title: "", Width: width}
	}

	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		r := make(table.Row, len(row))
		for j, cell := range row {
			r[j] = strings.ReplaceAll(cell, "\n", " ")
		}
		rows[i] = r
	}

	height := termHeight - 12
	if height < 5 {
		height = 10
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(accentColor).
		Bold(false)
	tbl.SetStyles(styles)

	return tbl
}

func (m Model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateFilePicker:
		return m.viewFilePicker()
	case stateDirPicker:
		return m.viewDirPicker()
	case stateWorking:
		return m.viewWorking()
	case statePreview:
		return m.viewPreview()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Конвертер Excel в CSV"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Windows-1251, разделитель «;», без заголовка"))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		cursor := " "
		line := item.label
		if m.cursor == i {
			cursor = ">"
			line = SelectedStyle.Render(fmt.Sprintf("%s %s", cursor, line))
		} else {
			line = UnselectedStyle.Render(fmt.Sprintf("%s %s", cursor, line))
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: выбор • enter: открыть • q: выход"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Выберите файл Excel"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Excel файлы: " + strings.Join(converter.SupportedExtensions(), ", ")))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	if m.notice != "" {
		s.WriteString(ErrorStyle.Render(m.notice))
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render("enter: выбрать • ←/→: папки • q: в меню • ctrl+c: выход"))

	return s.String()
}

func (m Model) viewDirPicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Выберите директорию для сохранения CSV"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Файл: %s • текущая папка: %s",
		filepath.Base(m.selectedFile), m.dirpicker.CurrentDirectory)))
	s.WriteString("\n\n")
	s.WriteString(m.dirpicker.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: сохранить в выбранную папку • s: сохранить в текущую • ←/→: папки • q: в меню"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	verb := "Конвертация"
	if m.action == actionPreview {
		verb = "Загрузка"
	}

	s.WriteString(TitleStyle.Render(verb + "..."))
	s.WriteString("\n\n")
	s.WriteString(m.spinner.View())
	s.WriteString(" ")
	s.WriteString(filepath.Base(m.selectedFile))

	return BoxStyle.Render(s.String())
}

func (m Model) viewPreview() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Предварительный просмотр"))
	s.WriteString("\n")

	sub := filepath.Base(m.selectedFile)
	if m.report != nil {
		sub = fmt.Sprintf("%s • строк: %d из %d • столбцов: %d",
			sub, m.report.RowsKept, m.report.RowsRead, len(m.table.Columns()))
	}
	s.WriteString(SubtitleStyle.Render(sub))
	s.WriteString("\n")
	s.WriteString(m.table.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓/pgup/pgdn: прокрутка • esc: в меню • q: выход"))

	return s.String()
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Успех"))
	s.WriteString("\n\n")

	// Truncate paths if they're too long
	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	s.WriteString(fmt.Sprintf("Исходный файл: %s\n", truncatePath(m.result.InputFile, maxPathLen)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Файл успешно конвертирован в: %s",
		truncatePath(m.result.OutputFile, maxPathLen))))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Строк записано: %d из %d\n", m.result.RowsProcessed, m.result.RowsRead))
	s.WriteString(fmt.Sprintf("Столбцов: %d\n", m.result.Columns))
	if len(m.result.DroppedColumns) > 0 {
		s.WriteString(fmt.Sprintf("Удалены столбцы НДС: %d\n", len(m.result.DroppedColumns)))
	}
	s.WriteString(HelpStyle.Render("любая клавиша: в меню • q: выход"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Ошибка"))
	s.WriteString("\n\n")
	if m.err != nil {
		s.WriteString(m.err.Error())
	}
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("любая клавиша: в меню • q: выход"))

	return ErrorBoxStyle.Render(s.String())
}

func truncatePath(p string, max int) string {
	r := []rune(p)
	if len(r) <= max {
		return p
	}
	return "..." + string(r[len(r)-max+3:])
}
