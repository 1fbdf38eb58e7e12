// Package normalizer 提供文本规范化：小写化、符号替换、符号剔除、空白折叠，
// 以及可选的停用词移除、词形还原与词干提取。
//
// 所有步骤均为字符串上的纯函数，可通过 Options 独立开关。
package normalizer

import (
	"strings"
	"unicode"
)

// DefaultLanguage 默认语言。
const DefaultLanguage = "english"

// Options 规范化选项，每一步都可以独立开关。
type Options struct {
	// Lowercase 转为小写。
	Lowercase bool
	// ReplaceSymbols 按 Symbols 表把符号替换为单词。
	ReplaceSymbols bool
	// StripSymbols 移除 [a-z0-9] 与空白以外的所有字符。
	StripSymbols bool
	// CollapseSpaces 折叠连续空白并去除首尾空白。
	CollapseSpaces bool
	// RemoveStopwords 移除停用词。
	RemoveStopwords bool
	// Lemmatize 词形还原。
	Lemmatize bool
	// Stem 词干提取。
	Stem bool
	// Language 词级步骤使用的语言，为空时使用 DefaultLanguage。
	Language string
	// Symbols 有序符号替换表，为空时使用 DefaultSymbols。
	Symbols SymbolTable
}

// DefaultOptions 返回默认选项：小写、剔除符号、折叠空白。
func DefaultOptions() Options {
	return Options{
		Lowercase:      true,
		StripSymbols:   true,
		CollapseSpaces: true,
		Language:       DefaultLanguage,
	}
}

// Normalizer 按固定选项规范化文本，可被多个 goroutine 并发使用。
type Normalizer struct {
	opts Options
}

// New 创建规范化器。
func New(opts Options) *Normalizer {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	opts.Language = strings.ToLower(opts.Language)
	if len(opts.Symbols) == 0 {
		opts.Symbols = DefaultSymbols
	}
	return &Normalizer{opts: opts}
}

// Options 返回规范化器的选项。
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize 依次执行：小写 -> 符号替换 -> 符号剔除 -> 空白折叠 ->
// 词形还原 -> 停用词移除 -> 词干提取。
//
// 词形还原先于停用词移除，还原出的 be/have 之类也会被移除，
// 除词干提取外的组合对同一输入重复执行结果不变。
//
// 词级步骤按空白切分单词并以单个空格重新拼接。
func (n *Normalizer) Normalize(text string) string {
	o := n.opts
	if o.Lowercase {
		text = strings.ToLower(text)
	}
	if o.ReplaceSymbols {
		text = o.Symbols.Apply(text)
	}
	if o.StripSymbols {
		text = StripSymbols(text)
	}
	if o.CollapseSpaces {
		text = CollapseSpaces(text)
	}

	if !o.RemoveStopwords && !o.Lemmatize && !o.Stem {
		return text
	}

	words := strings.Fields(text)
	if o.Lemmatize {
		words = Lemmatize(words, o.Language)
	}
	if o.RemoveStopwords {
		words = RemoveStopwords(words, o.Language)
	}
	if o.Stem {
		words = Stem(words, o.Language)
	}
	return strings.Join(words, " ")
}

// Normalize 使用默认选项规范化文本。
func Normalize(text string) string {
	return New(DefaultOptions()).Normalize(text)
}

// StripSymbols 移除 [a-z0-9] 与空白以外的所有字符。大写字母同样会被移除，
// 因此通常先执行小写化。
func StripSymbols(text string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

// CollapseSpaces 把连续空白折叠为单个空格并去除首尾空白。
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
