package i18n

import "sync"

// Localizer holds the active language of one page session. SetLanguage is the
// only way to change it; subscribers run after every change so consumers can
// re-render with fresh strings.
type Localizer struct {
	catalog *Catalog

	mu          sync.RWMutex
	lang        Language
	subscribers []func(Language)
}

// NewLocalizer creates a localizer starting at lang. A nil catalog selects
// DefaultCatalog; an invalid lang selects DefaultLanguage.
func NewLocalizer(catalog *Catalog, lang Language) *Localizer {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	if !lang.Valid() {
		lang = DefaultLanguage
	}
	return &Localizer{catalog: catalog, lang: lang}
}

// Language returns the active language.
func (l *Localizer) Language() Language {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

// SetLanguage switches the active language. Setting the current language is a
// no-op and does not notify subscribers.
func (l *Localizer) SetLanguage(lang Language) error {
	if !lang.Valid() {
		return ErrUnsupportedLanguage
	}
	l.mu.Lock()
	if l.lang == lang {
		l.mu.Unlock()
		return nil
	}
	l.lang = lang
	subs := make([]func(Language), len(l.subscribers))
	copy(subs, l.subscribers)
	l.mu.Unlock()

	for _, fn := range subs {
		fn(lang)
	}
	return nil
}

// Toggle flips between Korean and English and returns the new language.
func (l *Localizer) Toggle() Language {
	next := l.Language().Toggle()
	_ = l.SetLanguage(next)
	return next
}

// Text looks key up in the active language.
func (l *Localizer) Text(key Key) string {
	return l.catalog.Text(l.Language(), key)
}

// TextIn looks key up in an explicit language.
func (l *Localizer) TextIn(lang Language, key Key) string {
	return l.catalog.Text(lang, key)
}

// Strings returns a snapshot of the active language's table.
func (l *Localizer) Strings() map[Key]string {
	return l.catalog.Table(l.Language())
}

// Subscribe registers fn to run after each language change.
func (l *Localizer) Subscribe(fn func(Language)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.mu.Unlock()
}
