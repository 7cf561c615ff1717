package models

import (
	"sort"
	"strings"
)

// CompanyFilter selects the business entity a rollup runs for. A company is
// either a single account name or several accounts reported as one.
type CompanyFilter struct {
	names []string
}

// SingleCompany returns a filter for one account name.
func SingleCompany(name string) CompanyFilter {
	return ManyCompanies(name)
}

// ManyCompanies returns a filter over several account names. Names are
// trimmed, de-duplicated and sorted so equal sets produce equal keys.
func ManyCompanies(names ...string) CompanyFilter {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return CompanyFilter{names: out}
}

// ParseCompanyFilter accepts "a" or "a,b,c".
func ParseCompanyFilter(s string) CompanyFilter {
	return ManyCompanies(strings.Split(s, ",")...)
}

// Names returns the resolved account names.
func (c CompanyFilter) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// IsEmpty reports whether no account name was given.
func (c CompanyFilter) IsEmpty() bool {
	return len(c.names) == 0
}

// IsMany reports whether the filter spans more than one account.
func (c CompanyFilter) IsMany() bool {
	return len(c.names) > 1
}

// Key is the stable storage key for the filter.
func (c CompanyFilter) Key() string {
	return strings.Join(c.names, ",")
}

// String returns the display label.
func (c CompanyFilter) String() string {
	return strings.Join(c.names, " + ")
}
