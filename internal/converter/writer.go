package converter

import (
	"encoding/csv"
	"os"

	"github.com/nconklindev/smetacsv/internal/types"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Delimiter separates fields in the output file.
const Delimiter = ';'

// CheckEncoding returns an EncodingError for the first cell that has no
// Windows-1251 representation.
func CheckEncoding(t *types.Table) error {
	enc := charmap.Windows1251.NewEncoder()
	for r, row := range t.Rows {
		for c, cell := range row {
			s := cell.String()
			if _, err := enc.String(s); err != nil {
				return &EncodingError{Row: r, Column: c, Value: s, Err: err}
			}
		}
	}
	return nil
}

// WriteCSV writes the table as Windows-1251, semicolon separated, with no
// header row. The file is not created when a cell cannot be encoded.
func WriteCSV(t *types.Table, outputFile string, crlf bool) (err error) {
	if err := CheckEncoding(t); err != nil {
		return err
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outFile.Close(); err == nil {
			err = cerr
		}
	}()

	encoded := transform.NewWriter(outFile, charmap.Windows1251.NewEncoder())

	writer := csv.NewWriter(encoded)
	writer.Comma = Delimiter
	writer.UseCRLF = crlf

	if err := writer.WriteAll(t.Strings()); err != nil {
		return err
	}
	return encoded.Close()
}
