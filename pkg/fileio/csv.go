package fileio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xaionaro-go/nsaphutils/pkg/frame"
)

// CSVOptions holds options for reading and writing CSV.
type CSVOptions struct {
	Delimiter rune // Field delimiter (default: ',')
	Comment   rune // Lines starting with it are skipped (default: none)
	SkipRows  int  // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
	}
}

// ReadCSV reads a table with a header row.
func ReadCSV(r io.Reader, opts CSVOptions) (*frame.Frame, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.Comment = opts.Comment
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("unable to skip row %d: %w", i, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no header row")
		}
		return nil, fmt.Errorf("unable to read the header row: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read the records: %w", err)
	}

	return frame.New(header, records)
}

// WriteCSV writes f with a header row.
func WriteCSV(w io.Writer, f *frame.Frame, opts CSVOptions) error {
	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	if err := writer.Write(f.Header); err != nil {
		return fmt.Errorf("unable to write the header: %w", err)
	}
	if err := writer.WriteAll(f.Records); err != nil {
		return fmt.Errorf("unable to write the records: %w", err)
	}
	return nil
}
