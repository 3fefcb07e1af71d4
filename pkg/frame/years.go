package frame

import (
	"strconv"
)

// FilterYears keeps only the rows whose column holds one of years.
// The column may contain plain years or dates starting with the year,
// like "2001-05-31". Rows with a cell that is not a year are dropped.
func (f *Frame) FilterYears(column string, years []int) error {
	colIdx, err := f.ColumnIndex(column)
	if err != nil {
		return err
	}

	set := make(map[int]struct{}, len(years))
	for _, y := range years {
		set[y] = struct{}{}
	}

	f.Filter(func(record []string) bool {
		y, ok := cellYear(record[colIdx])
		if !ok {
			return false
		}
		_, ok = set[y]
		return ok
	})
	return nil
}

func cellYear(cell string) (int, bool) {
	if len(cell) > 4 {
		cell = cell[:4]
	}
	y, err := strconv.Atoi(cell)
	if err != nil {
		return 0, false
	}
	return y, true
}
