package normalizer

import "strings"

// 不规则词形表，值必须是原形且不能再出现在键中。
var irregularLemmas = map[string]string{
	"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be",
	"has": "have", "had": "have", "having": "have",
	"does": "do", "did": "do", "done": "do",
	"went": "go", "gone": "go", "goes": "go",
	"ran": "run", "running": "run",
	"made": "make", "making": "make",
	"took": "take", "taken": "take",
	"saw": "see", "seen": "see",
	"came": "come", "got": "get", "gotten": "get",
	"gave": "give", "given": "give",
	"knew": "know", "known": "know",
	"thought": "think", "told": "tell", "said": "say",
	"found": "find", "left": "leave", "felt": "feel",
	"kept": "keep", "began": "begin", "begun": "begin",
	"wrote": "write", "written": "write",
	"children": "child", "men": "man", "women": "woman", "people": "person",
	"mice": "mouse", "geese": "goose", "feet": "foot", "teeth": "tooth",
	"better": "good", "best": "good", "worse": "bad", "worst": "bad",
	"data": "datum", "criteria": "criterion", "analyses": "analysis",
}

// Lemmatize 词形还原：先查不规则词形表，再应用保守的复数规则。
// 仅对 english 生效，其他语言原样返回。
func Lemmatize(words []string, lang string) []string {
	if strings.ToLower(lang) != "english" {
		return append([]string(nil), words...)
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, lemma(w))
	}
	return out
}

func lemma(w string) string {
	if l, ok := irregularLemmas[w]; ok {
		return l
	}
	r := pluralRule(w)
	if l, ok := irregularLemmas[r]; ok {
		return l
	}
	return r
}

func pluralRule(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	}
	return w
}
