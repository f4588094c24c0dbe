package sheets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/i18n-sheets/errors"
)

var cellRef = regexp.MustCompile(`^([A-Za-z]*)([0-9]*)$`)

// a1Range is a parsed A1 range. Indexes are zero-based; end indexes are
// exclusive and 0 means unbounded.
type a1Range struct {
	Sheet    string
	StartRow int64
	StartCol int64
	EndRow   int64
	EndCol   int64
}

// parseA1 parses "A1:D1000", "A:D", "Sheet1!A1:D", "'My Sheet'!B2:F" or a bare
// sheet name. A reference without "!" or ":" is always a sheet name.
func parseA1(s string) (a1Range, error) {
	var r a1Range
	s = strings.TrimSpace(s)
	if s == "" {
		return r, errors.New("empty range")
	}

	cells := s
	if i := strings.LastIndex(s, "!"); i >= 0 {
		r.Sheet = unquoteSheet(s[:i])
		cells = s[i+1:]
	} else if !strings.Contains(s, ":") {
		r.Sheet = unquoteSheet(s)
		return r, nil
	}

	start, end, hasEnd := strings.Cut(cells, ":")

	col, row, err := parseCell(start)
	if err != nil {
		return r, errors.Wrapf(err, "range %q", s)
	}
	if col > 0 {
		r.StartCol = col - 1
	}
	if row > 0 {
		r.StartRow = row - 1
	}

	if hasEnd {
		col, row, err := parseCell(end)
		if err != nil {
			return r, errors.Wrapf(err, "range %q", s)
		}
		r.EndCol = col
		r.EndRow = row
		if (r.EndCol > 0 && r.EndCol <= r.StartCol) || (r.EndRow > 0 && r.EndRow <= r.StartRow) {
			return r, errors.Newf("range %q ends before it starts", s)
		}
	}

	return r, nil
}

// parseCell returns the one-based column and row of a reference like "D12".
// Either part may be missing, in which case it is 0.
func parseCell(ref string) (col, row int64, err error) {
	m := cellRef.FindStringSubmatch(ref)
	if m == nil || ref == "" {
		return 0, 0, errors.Newf("invalid cell reference %q", ref)
	}
	for _, c := range strings.ToUpper(m[1]) {
		col = col*26 + int64(c-'A'+1)
	}
	if m[2] != "" {
		row, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil || row == 0 {
			return 0, 0, errors.Newf("invalid row in cell reference %q", ref)
		}
	}
	return col, row, nil
}

func unquoteSheet(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

// columnName converts a zero-based column index into its letters (0 -> A, 26 -> AA).
func columnName(index int) string {
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// DefaultRange covers all rows of the columns a table with the given locale count uses.
func DefaultRange(locales int) string {
	return "A:" + columnName(locales+1)
}
