package normalizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/sentinel-embed/internal/pkg/normalizer"
)

func TestNormalize_Default(t *testing.T) {
	cases := map[string]string{
		"Hello,   World!":        "hello world",
		"  \tTabs\nand  lines  ": "tabs and lines",
		"":                       "",
		"100% Sure?":             "100 sure",
		"C++ & Go":               "c go",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizer.Normalize(in), in)
	}
}

func TestNormalize_ReplaceSymbols(t *testing.T) {
	n := normalizer.New(normalizer.Options{
		Lowercase:      true,
		ReplaceSymbols: true,
		StripSymbols:   true,
		CollapseSpaces: true,
	})
	assert.Equal(t, "diskon 50 persen dan gratis", n.Normalize("Diskon 50% & gratis"))
	assert.Equal(t, "a plus b sama dengan c", n.Normalize("a+b=c"))
	assert.Equal(t, "harga 10 dolar pagar 1", n.Normalize("harga 10$ #1"))
}

func TestSymbolTable_Order(t *testing.T) {
	// 前一条的替换结果含有后一条的符号时，会被后一条再次替换
	table := normalizer.SymbolTable{
		{Pattern: "&", Replacement: " and+ "},
		{Pattern: "+", Replacement: " plus "},
	}
	assert.Equal(t, "a  and plus   b", table.Apply("a & b"))

	// 反序时只执行一遍，不会回头再扫描
	reversed := normalizer.SymbolTable{table[1], table[0]}
	assert.Equal(t, "a  and+  b", reversed.Apply("a & b"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello,   World!",
		"Diskon 50% & gratis @toko #promo = $10 + ongkir",
		"The children were running quickly through the studies",
		"   ",
		"ÜNÏCÖDÉ text — with dashes",
	}
	presets := []normalizer.Options{
		normalizer.DefaultOptions(),
		{Lowercase: true, ReplaceSymbols: true, StripSymbols: true, CollapseSpaces: true},
		{Lowercase: true, StripSymbols: true, CollapseSpaces: true, RemoveStopwords: true},
		{Lowercase: true, StripSymbols: true, CollapseSpaces: true, RemoveStopwords: true, Lemmatize: true},
	}
	for _, opts := range presets {
		n := normalizer.New(opts)
		for _, in := range inputs {
			once := n.Normalize(in)
			assert.Equal(t, once, n.Normalize(once), "input %q", in)
		}
	}
}

func TestNormalize_WordSteps(t *testing.T) {
	n := normalizer.New(normalizer.Options{
		Lowercase:       true,
		StripSymbols:    true,
		CollapseSpaces:  true,
		RemoveStopwords: true,
	})
	assert.Equal(t, "quick brown fox", n.Normalize("The quick brown fox"))

	lem := normalizer.New(normalizer.Options{Lowercase: true, CollapseSpaces: true, Lemmatize: true})
	assert.Equal(t, "child be run study class", lem.Normalize("children were running studies classes"))

	stem := normalizer.New(normalizer.Options{Lowercase: true, CollapseSpaces: true, Stem: true})
	assert.Equal(t, "run jump", stem.Normalize("running jumps"))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, normalizer.IsStopword("the", "english"))
	assert.True(t, normalizer.IsStopword("The", "ENGLISH"))
	assert.False(t, normalizer.IsStopword("embedding", "english"))
	assert.True(t, normalizer.IsStopword("yang", "indonesian"))
	assert.False(t, normalizer.IsStopword("the", "klingon"))
	assert.True(t, normalizer.SupportedLanguage("spanish"))
	assert.False(t, normalizer.SupportedLanguage("klingon"))
}

func TestStem_UnsupportedLanguage(t *testing.T) {
	assert.Equal(t, []string{"makanan"}, normalizer.Stem([]string{"makanan"}, "indonesian"))
}
