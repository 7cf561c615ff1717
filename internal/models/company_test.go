package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCompanyFilter(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		names   []string
		key     string
		label   string
		isMany  bool
		isEmpty bool
	}{
		{"single", "acme", []string{"acme"}, "acme", "acme", false, false},
		{"sorted and trimmed", " store-b , store-a ", []string{"store-a", "store-b"}, "store-a,store-b", "store-a + store-b", true, false},
		{"duplicates collapse", "acme,acme", []string{"acme"}, "acme", "acme", false, false},
		{"empty", " , ", []string{}, "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseCompanyFilter(tt.in)
			assert.Equal(t, tt.names, f.Names())
			assert.Equal(t, tt.key, f.Key())
			assert.Equal(t, tt.label, f.String())
			assert.Equal(t, tt.isMany, f.IsMany())
			assert.Equal(t, tt.isEmpty, f.IsEmpty())
		})
	}
}

func TestCompanyFilter_NamesIsCopy(t *testing.T) {
	f := ManyCompanies("a", "b")
	names := f.Names()
	names[0] = "z"
	assert.Equal(t, []string{"a", "b"}, f.Names())
}

func TestSnapshotID(t *testing.T) {
	assert.Equal(t, "snapshot:store-a,store-b:2025-03", SnapshotID(ManyCompanies("store-b", "store-a").Key(), "2025-03"))
}
