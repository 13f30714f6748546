package service

import (
	"strings"
	"unicode"

	"github.com/Karm-Dave/StoryGen/internal/model"
)

// Шаблонные префиксы, которые модели любят добавлять к заголовку.
// Каждый проверяется один раз, по порядку, без учета регистра.
var titlePrefixes = []string{
	"here are",
	"here is",
	"these are",
	"this is",
	"some",
	"a few",
	"a",
	"title:",
	"suggested title:",
}

const maxTitleWords = 5

// CleanTitle приводит сырой ответ модели к финальному заголовку:
// убирает кавычки и шаблонные префиксы, приводит каждое слово к Title Case,
// обрезает до пяти слов. Пустой результат заменяется заглушкой.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.NewReplacer(`"`, "", `'`, "").Replace(title)

	for _, prefix := range titlePrefixes {
		title = stripPrefixFold(title, prefix)
	}

	words := strings.Fields(title)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	for i, word := range words {
		words[i] = titleCaseWord(word)
	}

	title = strings.Join(words, " ")
	if title == "" {
		return model.DefaultTitle
	}
	return title
}

// stripPrefixFold срезает префикс без учета регистра, но только на границе
// слова: "a" снимается с "a title", но не с "alone".
func stripPrefixFold(s, prefix string) string {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s
	}
	rest := s[len(prefix):]
	if rest != "" && !strings.HasPrefix(rest, " ") && !strings.HasPrefix(rest, "\t") {
		return s
	}
	return strings.TrimSpace(rest)
}

// titleCaseWord делает первую руну заглавной, остальные строчными.
func titleCaseWord(word string) string {
	runes := []rune(word)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}
