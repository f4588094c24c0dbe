// Package table converts between per-locale flattened translation maps and
// the row layout stored in a spreadsheet:
//
//	Domain   | Key         | ko     | en
//	account  | login.title | 로그인 | Login
//
// Locale columns are matched to the configured locale list by position; the
// header text is written for people and never read back.
package table

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/teranos/i18n-sheets/keypath"
)

// Header cell labels for the first two columns.
const (
	DomainHeader = "Domain"
	KeyHeader    = "Key"
)

// Row is one table line: domain, key, then one cell per configured locale.
type Row []string

// Table is the full row sequence a store holds, header first.
type Table []Row

// LocaleMaps holds one domain's flattened translations keyed by locale.
type LocaleMaps map[string]keypath.Map

// Grouped is decoded table content: domain -> locale -> flattened map.
type Grouped map[string]LocaleMaps

// TableStore persists a Table. Replace swaps the whole content.
type TableStore interface {
	Fetch(ctx context.Context) (Table, error)
	Replace(ctx context.Context, t Table) error
}

// Header synthesizes the header row for the given locale order.
func Header(locales []string) Row {
	row := make(Row, 0, len(locales)+2)
	row = append(row, DomainHeader, KeyHeader)
	return append(row, locales...)
}

// Width is the number of cells in every row for the given locale count.
func Width(locales []string) int {
	return len(locales) + 2
}

// Keys returns the union of keys across all locales, sorted.
func (m LocaleMaps) Keys() []string {
	var keys []string
	for _, flat := range m {
		keys = append(keys, lo.Keys(flat)...)
	}
	keys = lo.Uniq(keys)
	sort.Strings(keys)
	return keys
}

// EncodeDomain emits one row per key present in any locale of byLocale.
// Rows are sorted by key; a locale without the key gets an empty cell.
func EncodeDomain(domain string, locales []string, byLocale LocaleMaps) []Row {
	keys := byLocale.Keys()
	rows := make([]Row, 0, len(keys))

	for _, key := range keys {
		row := make(Row, 0, Width(locales))
		row = append(row, domain, key)
		for _, locale := range locales {
			row = append(row, byLocale[locale][key])
		}
		rows = append(rows, row)
	}
	return rows
}

// DomainMaps pairs a domain with its per-locale maps, keeping domain order.
type DomainMaps struct {
	Domain   string
	ByLocale LocaleMaps
}

// Build encodes every domain in order and prepends the header row.
func Build(locales []string, domains []DomainMaps) Table {
	t := Table{Header(locales)}
	for _, d := range domains {
		t = append(t, EncodeDomain(d.Domain, locales, d.ByLocale)...)
	}
	return t
}

// Decode groups the data rows of t by domain and locale.
//
// Row 0 is the header and is skipped. Cell i after the key belongs to
// locales[i]; cells past the end of a short row read as empty. Empty cells
// produce no entry and leave any earlier value for that key in place. Rows
// without a domain or key are ignored. When a (domain, key) pair repeats, the
// last non-empty cell per locale wins.
//
// Every domain in the result has a (possibly empty) map for each configured
// locale.
func Decode(t Table, locales []string) Grouped {
	out := make(Grouped)
	if len(t) == 0 {
		return out
	}

	for _, row := range t[1:] {
		domain, key := cell(row, 0), cell(row, 1)
		if domain == "" || key == "" {
			continue
		}

		byLocale, ok := out[domain]
		if !ok {
			byLocale = make(LocaleMaps, len(locales))
			for _, locale := range locales {
				byLocale[locale] = make(keypath.Map)
			}
			out[domain] = byLocale
		}

		for i, locale := range locales {
			if value := cell(row, i+2); value != "" {
				byLocale[locale][key] = value
			}
		}
	}

	return out
}

// Domains returns the decoded domain names, sorted.
func (g Grouped) Domains() []string {
	domains := lo.Keys(g)
	sort.Strings(domains)
	return domains
}

// DataRows returns the number of rows after the header.
func (t Table) DataRows() int {
	if len(t) == 0 {
		return 0
	}
	return len(t) - 1
}

func cell(row Row, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
