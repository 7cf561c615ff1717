package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestNormalizer() *NameNormalizer {
	return NewNameNormalizer([]string{"[SET]"}, []string{"(not set)"})
}

func TestNameNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"protected bracket kept, option stripped", "[SET] 가디건_블랙", "[SET] 가디건"},
		{"plain bracket stripped", "[브랜드] 가디건_M", "가디건"},
		{"stacked brackets stop at protected", "[브랜드][SET] 가디건", "[SET] 가디건"},
		{"bracket with nothing after is kept", "[브랜드]", "[브랜드]"},
		{"placeholder", "(not set)", ""},
		{"placeholder with spaces", "  (not set) ", ""},
		{"blank", "   ", ""},
		{"stacked options", "가디건_블랙_M", "가디건"},
		{"numeric colour code", "가디건_01블랙", "가디건"},
		{"option before bracket", "가디건_블랙 (신상)", "가디건 (신상)"},
		{"year is not an option", "니트_2023", "니트_2023"},
		{"long latin run is not an option", "코트_verylongoptionname", "코트_verylongoptionname"},
		{"long hangul run is not an option", "코트_아주긴옵션이름입니다", "코트_아주긴옵션이름입니다"},
		{"full width folded", "ＡＢＣ  니트", "ABC 니트"},
		{"whitespace collapsed", "  오버핏   셔츠  ", "오버핏 셔츠"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNameNormalizer_Idempotent(t *testing.T) {
	n := newTestNormalizer()
	inputs := []string{
		"[SET] 가디건_블랙",
		"[브랜드] 가디건_M",
		"[A][B][C] 셔츠_XL_블랙",
		"가디건_블랙_M",
		"_블랙",
		"[SET]",
		"[브랜드][SET] 니트_01",
		"원피스_롱 [한정]",
		"ＳＥＴ 가디건_ｍ",
		"(not set)",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNameNormalizer_BracketRuleAlone(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, "[SET] 가디건_블랙", n.stripBracketPrefix("[SET] 가디건_블랙"))
	assert.Equal(t, "가디건_블랙", n.stripBracketPrefix("[브랜드] 가디건_블랙"))
	assert.Equal(t, "[set] 가디건", n.stripBracketPrefix("[set] 가디건"))
	assert.Equal(t, "[브랜드 가디건", n.stripBracketPrefix("[브랜드 가디건"))
}

func TestNameNormalizer_OptionRuleAlone(t *testing.T) {
	assert.Equal(t, "[SET] 가디건", stripOptionSuffix("[SET] 가디건_블랙"))
	assert.Equal(t, "가디건_블랙", stripOptionSuffix("가디건_블랙_M"))
	assert.Equal(t, "셔츠 [한정]", stripOptionSuffix("셔츠_L [한정]"))
	assert.Equal(t, "셔츠", stripOptionSuffix("셔츠"))
}
