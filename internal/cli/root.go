// Package cli wires the cobra commands: the interactive UI on the root
// command plus convert and preview for scripted use.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/nconklindev/smetacsv/internal/config"
	"github.com/nconklindev/smetacsv/internal/converter"
	"github.com/nconklindev/smetacsv/internal/logging"
	"github.com/nconklindev/smetacsv/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type rootFlags struct {
	trim     string
	logLevel string
}

type app struct {
	flags rootFlags
	cfg   *config.Config
}

// loadConfig reads the environment and applies flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("trim") {
		cfg.TrimMode = a.flags.trim
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// cliLogger logs to stderr so stdout stays clean for command output.
func (a *app) cliLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logging.Setup(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
	a.logConfig(logger)
	return logger
}

func (a *app) logConfig(logger logrus.FieldLogger) {
	logger.WithFields(logrus.Fields{
		"env_file":   a.cfg.EnvFile,
		"trim":       a.cfg.TrimMode,
		"crlf":       a.cfg.CRLF,
		"output_dir": a.cfg.OutputDir,
	}).Debug("config loaded")
}

func (a *app) options(logger logrus.FieldLogger) converter.Options {
	return a.cfg.Options(logger)
}

func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "smetacsv",
		Short: "Convert estimate spreadsheets to CSV for accounting import",
		Long: "smetacsv converts the first sheet of an Excel workbook (.xlsx, .xlsm, .xltx, .xltm, .xlsb, .xls)\n" +
			"into a semicolon-delimited Windows-1251 CSV file without a header row.\n\n" +
			"Run without arguments to open the interactive interface.",
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", info.Version, info.Commit, info.Date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUI()
		},
	}
	cmd.SetVersionTemplate("smetacsv {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.flags.trim, "trim", "pair", "width trim mode: pair, legacy or strict")
	cmd.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	cmd.AddCommand(newConvertCommand(a))
	cmd.AddCommand(newPreviewCommand(a))

	return cmd
}

func (a *app) runUI() error {
	// The UI owns the terminal, so logs go to a file or nowhere.
	out, err := logging.OpenFile(a.cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer out.Close()

	logger := logging.Setup(a.cfg.LogLevel, a.cfg.LogFormat, out)
	a.logConfig(logger)
	logger.WithField("start_dir", a.cfg.StartDir).Info("starting interactive mode")

	model := ui.InitialModel(ui.Settings{
		StartDir:  a.cfg.StartDir,
		OutputDir: a.cfg.OutputDir,
		Options:   a.options(logger),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// Execute runs the root command with os.Args and returns the exit code.
func Execute(info BuildInfo) int {
	return run(NewRootCommand(info), os.Stderr)
}

func run(cmd *cobra.Command, errOut io.Writer) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(errOut, "Ошибка: %v\n", err)
		return 1
	}
	return 0
}
