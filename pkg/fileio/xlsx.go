package fileio

import (
	"fmt"
	"io"

	"github.com/xaionaro-go/nsaphutils/pkg/frame"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet used when none is specified.
const DefaultSheet = "Sheet1"

// ReadXLSX reads a table from the sheet of a workbook; the first row is
// the header. An empty sheet name means the first sheet.
func ReadXLSX(r io.Reader, sheet string) (_ret *frame.Frame, _err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open the workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && _err == nil {
			_err = fmt.Errorf("unable to close the workbook: %w", err)
		}
	}()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet '%s': %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet '%s' has no header row", sheet)
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// trailing empty cells are not returned by excelize
		record := make([]string, len(header))
		copy(record, row)
		records = append(records, record)
	}
	return frame.New(header, records)
}

// WriteXLSX writes f into a new workbook with a single sheet.
func WriteXLSX(w io.Writer, sheet string, fr *frame.Frame) (_err error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil && _err == nil {
			_err = fmt.Errorf("unable to close the workbook: %w", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("unable to name the sheet '%s': %w", sheet, err)
	}

	writeRow := func(rowIdx int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
		if err != nil {
			return err
		}
		row := make([]any, len(cells))
		for idx, v := range cells {
			row[idx] = v
		}
		return f.SetSheetRow(sheet, cell, &row)
	}

	if err := writeRow(0, fr.Header); err != nil {
		return fmt.Errorf("unable to write the header: %w", err)
	}
	for idx, record := range fr.Records {
		if err := writeRow(idx+1, record); err != nil {
			return fmt.Errorf("unable to write record %d: %w", idx, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write the workbook: %w", err)
	}
	return nil
}
