package transform

import (
	"strconv"
	"strings"
)

// intValue parses "12" and spreadsheet floats such as "12.0".
func intValue(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}
