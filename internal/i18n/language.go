package i18n

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported site language.
type Language string

const (
	Korean  Language = "ko"
	English Language = "en"
)

// DefaultLanguage is used when nothing else selects one.
const DefaultLanguage = Korean

// ErrUnsupportedLanguage is returned when a language code is not ko or en.
var ErrUnsupportedLanguage = errors.New("i18n: unsupported language")

// ParseLanguage accepts "ko"/"en" in any case, with optional region ("en-US").
func ParseLanguage(code string) (Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	switch Language(code) {
	case Korean:
		return Korean, nil
	case English:
		return English, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == Korean || l == English
}

// Toggle returns the other language.
func (l Language) Toggle() Language {
	if l == English {
		return Korean
	}
	return English
}

func (l Language) String() string {
	return string(l)
}

var (
	supportedTags = []language.Tag{language.Korean, language.English}
	matcher       = language.NewMatcher(supportedTags)
)

// Negotiate picks the best supported language for an Accept-Language header.
func Negotiate(acceptLanguage string, fallback Language) Language {
	if !fallback.Valid() {
		fallback = DefaultLanguage
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if supportedTags[idx] == language.English {
		return English
	}
	return Korean
}
