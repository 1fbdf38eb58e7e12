package normalizer

import "strings"

// SymbolReplacement 一条符号替换规则。
type SymbolReplacement struct {
	Pattern     string `json:"pattern" mapstructure:"pattern"`
	Replacement string `json:"replacement" mapstructure:"replacement"`
}

// SymbolTable 有序符号替换表。替换顺序是可观察的行为：若某条替换结果中含有
// 后续规则的符号，该符号会被后续规则再次替换，但整张表只执行一遍。
type SymbolTable []SymbolReplacement

// DefaultSymbols 默认替换表。
var DefaultSymbols = SymbolTable{
	{Pattern: "%", Replacement: " persen "},
	{Pattern: "&", Replacement: " dan "},
	{Pattern: "@", Replacement: " at "},
	{Pattern: "+", Replacement: " plus "},
	{Pattern: "=", Replacement: " sama dengan "},
	{Pattern: "#", Replacement: " pagar "},
	{Pattern: "$", Replacement: " dolar "},
}

// Apply 按表顺序对文本执行一遍子串替换。
func (t SymbolTable) Apply(text string) string {
	for _, r := range t {
		if r.Pattern == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Pattern, r.Replacement)
	}
	return text
}
