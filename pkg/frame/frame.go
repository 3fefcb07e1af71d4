// Package frame implements a minimal in-memory table of string cells
// and interpolation of its numeric columns grouped by an identifier
// column.
package frame

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var ErrColumnNotFound = errors.New("column not found")

// MissingCellValues are the cell values treated as a missing value.
var MissingCellValues = []string{"", "NA", "NaN", "nan", "null", "NULL"}

// MissingCell is what a missing value is written as.
const MissingCell = "NA"

func IsMissingCell(s string) bool {
	for _, v := range MissingCellValues {
		if s == v {
			return true
		}
	}
	return false
}

// Frame is a table: Records[row][column], every record is as wide as Header.
type Frame struct {
	Header  []string
	Records [][]string
}

// New creates a Frame and checks that every record is as wide as the header.
func New(header []string, records [][]string) (*Frame, error) {
	for rowIdx, record := range records {
		if len(record) != len(header) {
			return nil, fmt.Errorf("record %d has %d cells, but the header has %d columns", rowIdx, len(record), len(header))
		}
	}
	return &Frame{
		Header:  header,
		Records: records,
	}, nil
}

func (f *Frame) Len() int {
	return len(f.Records)
}

func (f *Frame) ColumnIndex(name string) (int, error) {
	for idx, column := range f.Header {
		if column == name {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("%w: '%s'", ErrColumnNotFound, name)
}

// Column returns a copy of the cells of the column.
func (f *Frame) Column(name string) ([]string, error) {
	colIdx, err := f.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(f.Records))
	for rowIdx, record := range f.Records {
		result[rowIdx] = record[colIdx]
	}
	return result, nil
}

// Float64Column parses the column; missing cells become NaN.
func (f *Frame) Float64Column(name string) ([]float64, error) {
	colIdx, err := f.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(f.Records))
	for rowIdx, record := range f.Records {
		cell := record[colIdx]
		if IsMissingCell(cell) {
			result[rowIdx] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse the value '%s' of column '%s' at row %d: %w", cell, name, rowIdx, err)
		}
		result[rowIdx] = v
	}
	return result, nil
}

// SetFloat64Column overwrites the column; NaN is written as MissingCell.
func (f *Frame) SetFloat64Column(name string, values []float64) error {
	colIdx, err := f.ColumnIndex(name)
	if err != nil {
		return err
	}
	if len(values) != len(f.Records) {
		return fmt.Errorf("expected %d values for column '%s', received %d", len(f.Records), name, len(values))
	}
	for rowIdx, v := range values {
		f.Records[rowIdx][colIdx] = FormatFloat64(v)
	}
	return nil
}

func FormatFloat64(v float64) string {
	if math.IsNaN(v) {
		return MissingCell
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SortStable sorts the records by the given columns, the first column
// being the most significant. Two cells that both parse as numbers are
// compared numerically, otherwise lexicographically.
func (f *Frame) SortStable(columns ...string) error {
	colIdxs := make([]int, 0, len(columns))
	for _, column := range columns {
		colIdx, err := f.ColumnIndex(column)
		if err != nil {
			return err
		}
		colIdxs = append(colIdxs, colIdx)
	}

	sort.SliceStable(f.Records, func(i, j int) bool {
		for _, colIdx := range colIdxs {
			if c := compareCells(f.Records[i][colIdx], f.Records[j][colIdx]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return nil
}

func compareCells(a, b string) int {
	if a == b {
		return 0
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	if a < b {
		return -1
	}
	return 1
}

// Group is a set of rows sharing the same key.
type Group struct {
	Key  string
	Rows []int
}

// GroupBy splits the rows by the value of column. Groups are ordered by
// the first appearance of their key and keep the row order inside.
// An empty column name puts every row into a single group.
func (f *Frame) GroupBy(column string) ([]Group, error) {
	if column == "" {
		rows := make([]int, len(f.Records))
		for idx := range rows {
			rows[idx] = idx
		}
		return []Group{{Rows: rows}}, nil
	}

	colIdx, err := f.ColumnIndex(column)
	if err != nil {
		return nil, err
	}

	var groups []Group
	groupIdx := map[string]int{}
	for rowIdx, record := range f.Records {
		key := record[colIdx]
		idx, ok := groupIdx[key]
		if !ok {
			idx = len(groups)
			groupIdx[key] = idx
			groups = append(groups, Group{Key: key})
		}
		groups[idx].Rows = append(groups[idx].Rows, rowIdx)
	}
	return groups, nil
}

// Filter keeps only the records for which keep returns true.
func (f *Frame) Filter(keep func(record []string) bool) {
	result := f.Records[:0]
	for _, record := range f.Records {
		if keep(record) {
			result = append(result, record)
		}
	}
	clear(f.Records[len(result):])
	f.Records = result
}
