package cli

import (
	"fmt"
	"path/filepath"

	"github.com/nconklindev/smetacsv/internal/converter"
	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	previewBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	previewCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newPreviewCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Print the converted table without writing a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.cliLogger(cmd)
			t, rep, err := converter.Preview(args[0], a.options(logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: строк %d из %d, столбцов %d\n",
				filepath.Base(args[0]), rep.RowsKept, rep.RowsRead, t.Width)
			if t.Len() > 0 {
				fmt.Fprintln(out, renderTable(t, limit))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "rows", "n", 0, "show at most this many rows (0 shows all)")

	return cmd
}

func renderTable(t *types.Table, limit int) string {
	rows := t.Strings()
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(previewBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			return previewCellStyle
		}).
		Rows(rows...).
		String()
}
