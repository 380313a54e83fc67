package converter

import (
	"path/filepath"
	"strings"

	"github.com/nconklindev/smetacsv/internal/types"

	"github.com/sirupsen/logrus"
)

// RowDetectionLimit is how many leading rows are scanned for VAT markers.
const RowDetectionLimit = 10

type Options struct {
	TrimMode TrimMode
	CRLF     bool
	Logger   logrus.FieldLogger
}

func DefaultOptions() Options {
	return Options{TrimMode: TrimPair, CRLF: true}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// Report describes what Transform did to a table.
type Report struct {
	RowsRead       int
	RowsKept       int
	DroppedColumns []int
	TrimmedColumns int
	Layout         ColumnLayout
}

// Transform runs the column pruner, row filter, enricher and width trimmer
// on t in place.
func Transform(t *types.Table, opts Options) *Report {
	log := opts.logger()
	rep := &Report{RowsRead: t.Len()}

	rep.DroppedColumns = PruneColumns(t)
	log.WithField("columns", rep.DroppedColumns).Debug("dropped VAT columns")

	dropped := FilterRows(t)
	rep.RowsKept = t.Len()
	log.WithFields(logrus.Fields{"kept": rep.RowsKept, "dropped": dropped}).Debug("filtered rows")

	rep.Layout = Enrich(t)
	log.WithFields(logrus.Fields{
		"stage":        rep.Layout.Stage,
		"project_type": rep.Layout.ProjectType,
		"spacer":       rep.Layout.Spacer,
		"vat_rate":     rep.Layout.VATRate,
		"dates":        rep.Layout.HasDates,
		"width":        t.Width,
	}).Debug("enriched columns")

	rep.TrimmedColumns = TrimWidth(t, opts.TrimMode)
	log.WithFields(logrus.Fields{"mode": opts.TrimMode, "removed": rep.TrimmedColumns, "width": t.Width}).
		Debug("trimmed width")

	return rep
}

// Preview loads a file and returns the transformed table without writing it.
func Preview(inputFile string, opts Options) (*types.Table, *Report, error) {
	t, err := Load(inputFile)
	if err != nil {
		return nil, nil, err
	}
	rep := Transform(t, opts)
	opts.logger().WithFields(logrus.Fields{"file": inputFile, "rows": t.Len(), "columns": t.Width}).
		Info("preview ready")
	return t, rep, nil
}

// OutputPath returns <outputDir>/<input base name>.csv. An empty outputDir
// means the input file's directory.
func OutputPath(inputFile, outputDir string) string {
	if outputDir == "" {
		outputDir = filepath.Dir(inputFile)
	}
	base := filepath.Base(inputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".csv")
}

// Convert loads inputFile, transforms it and writes the CSV into outputDir.
func Convert(inputFile, outputDir string, opts Options) (*types.ConversionResult, error) {
	t, rep, err := Preview(inputFile, opts)
	if err != nil {
		return nil, err
	}

	outputFile := OutputPath(inputFile, outputDir)
	if err := WriteCSV(t, outputFile, opts.CRLF); err != nil {
		return nil, err
	}

	opts.logger().WithFields(logrus.Fields{"input": inputFile, "output": outputFile, "rows": t.Len()}).
		Info("converted")

	return &types.ConversionResult{
		InputFile:      inputFile,
		OutputFile:     outputFile,
		DroppedColumns: rep.DroppedColumns,
		RowsRead:       rep.RowsRead,
		RowsProcessed:  rep.RowsKept,
		Columns:        t.Width,
	}, nil
}
