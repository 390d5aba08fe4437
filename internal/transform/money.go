package transform

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyChars = regexp.MustCompile(`[$€£¥,\s]`)
	nonNumeric    = regexp.MustCompile(`[^\d.\-]`)
)

// Money strips currency symbols and thousands separators from a price cell.
// Empty, zero and unparseable prices come back as "".
func Money(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	s = currencyChars.ReplaceAllString(s, "")
	s = nonNumeric.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 {
		return ""
	}
	return s
}
