package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseYears parses a list of years and inclusive ranges separated by
// spaces or commas, e.g. "1992:1995 1998". The result is sorted and
// has no duplicates.
func ParseYears(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no years in '%s'", s)
	}

	set := map[int]struct{}{}
	for _, field := range fields {
		from, to, isRange := strings.Cut(field, ":")
		y1, err := strconv.Atoi(from)
		if err != nil {
			return nil, fmt.Errorf("invalid year '%s': %w", from, err)
		}
		y2 := y1
		if isRange {
			y2, err = strconv.Atoi(to)
			if err != nil {
				return nil, fmt.Errorf("invalid year '%s': %w", to, err)
			}
			if y2 < y1 {
				return nil, fmt.Errorf("invalid range '%s': %d > %d", field, y1, y2)
			}
		}
		for y := y1; y <= y2; y++ {
			set[y] = struct{}{}
		}
	}

	result := make([]int, 0, len(set))
	for y := range set {
		result = append(result, y)
	}
	sort.Ints(result)
	return result, nil
}
