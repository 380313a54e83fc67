package cli

import (
	"fmt"

	"github.com/nconklindev/smetacsv/internal/converter"

	"github.com/spf13/cobra"
)

func newConvertCommand(a *app) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a workbook to CSV",
		Long: "Convert the first sheet of a workbook and write <name>.csv into the output directory.\n" +
			"Without --output the CSV lands next to the input file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				outputDir = a.cfg.OutputDir
			}

			logger := a.cliLogger(cmd)
			result, err := converter.Convert(args[0], outputDir, a.options(logger))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Файл успешно конвертирован в: %s\n", result.OutputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the CSV file")

	return cmd
}
