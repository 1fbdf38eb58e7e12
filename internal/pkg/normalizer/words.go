package normalizer

import (
	"strings"

	"github.com/kljensen/snowball"
	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/french"
	"github.com/kljensen/snowball/hungarian"
	"github.com/kljensen/snowball/norwegian"
	"github.com/kljensen/snowball/russian"
	"github.com/kljensen/snowball/spanish"
	"github.com/kljensen/snowball/swedish"
)

// Languages 支持的语言。indonesian 仅支持停用词，不做词干提取。
var Languages = []string{
	"english", "spanish", "french", "russian", "swedish", "norwegian", "hungarian", "indonesian",
}

var stopwordFuncs = map[string]func(string) bool{
	"english":   english.IsStopWord,
	"spanish":   spanish.IsStopWord,
	"french":    french.IsStopWord,
	"russian":   russian.IsStopWord,
	"swedish":   swedish.IsStopWord,
	"norwegian": norwegian.IsStopWord,
	"hungarian": hungarian.IsStopWord,
	"indonesian": func(w string) bool {
		_, ok := indonesianStopwords[w]
		return ok
	},
}

var indonesianStopwords = toSet(
	"yang", "dan", "di", "ke", "dari", "ini", "itu", "untuk", "dengan", "pada",
	"adalah", "atau", "juga", "tidak", "akan", "dalam", "oleh", "sebagai", "ada",
	"karena", "saya", "kami", "kita", "mereka", "anda", "ia", "dia", "sudah", "telah",
	"bisa", "dapat", "lebih", "para", "tersebut", "serta", "bahwa", "jika", "saat",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// SupportedLanguage 判断语言是否受支持。
func SupportedLanguage(lang string) bool {
	_, ok := stopwordFuncs[strings.ToLower(lang)]
	return ok
}

// IsStopword 判断单词在指定语言下是否为停用词，未知语言始终返回 false。
func IsStopword(word, lang string) bool {
	fn, ok := stopwordFuncs[strings.ToLower(lang)]
	if !ok {
		return false
	}
	return fn(strings.ToLower(word))
}

// RemoveStopwords 移除停用词，返回新切片。
func RemoveStopwords(words []string, lang string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if IsStopword(w, lang) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Stem 使用 snowball 词干提取。不支持的语言原样返回。
func Stem(words []string, lang string) []string {
	lang = strings.ToLower(lang)
	out := make([]string, 0, len(words))
	for _, w := range words {
		s, err := snowball.Stem(w, lang, true)
		if err != nil || s == "" {
			out = append(out, w)
			continue
		}
		out = append(out, s)
	}
	return out
}
