// Package language holds the catalog of target languages a run may select
// and the spreadsheet column names derived from them.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

const (
	promptColumnPrefix      = "Prompt - English to "
	translationColumnPrefix = "Translation - "
)

// DefaultCodes is the catalog used when no catalog is configured.
var DefaultCodes = []string{"it", "de", "fr"}

// Language is one selectable target language
type Language struct {
	Name string
	Tag  language.Tag
}

// PromptColumn returns the input column holding the English prompt for this language
func (l Language) PromptColumn() string {
	return PromptColumn(l.Name)
}

// TranslationColumn returns the output column receiving the translation
func (l Language) TranslationColumn() string {
	return TranslationColumn(l.Name)
}

func (l Language) String() string {
	return l.Name
}

// PromptColumn returns "Prompt - English to {name}"
func PromptColumn(name string) string {
	return promptColumnPrefix + name
}

// TranslationColumn returns "Translation - {name}"
func TranslationColumn(name string) string {
	return translationColumnPrefix + name
}

// Catalog is the ordered set of languages offered for selection
type Catalog struct {
	langs []Language
}

// DefaultCatalog returns Italian, German and French
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCodes)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog builds a catalog from entries that are either BCP-47 codes
// ("it", "pt-BR") or display names ("Italian"). Codes are turned into their
// English display name.
func NewCatalog(entries []string) (*Catalog, error) {
	c := &Catalog{}
	seen := make(map[string]bool)

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		lang := resolve(entry)
		key := strings.ToLower(lang.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.langs = append(c.langs, lang)
	}

	if len(c.langs) == 0 {
		return nil, fmt.Errorf("language catalog is empty")
	}
	return c, nil
}

func resolve(entry string) Language {
	if looksLikeCode(entry) {
		if tag, err := language.Parse(entry); err == nil {
			if name := display.English.Languages().Name(tag); name != "" {
				return Language{Name: name, Tag: tag}
			}
			return Language{Name: entry, Tag: tag}
		}
	}
	return Language{Name: entry, Tag: language.Und}
}

// looksLikeCode keeps short names such as "Ewe" from being read as a tag.
func looksLikeCode(entry string) bool {
	if strings.Contains(entry, "-") || strings.Contains(entry, "_") {
		return true
	}
	return len(entry) <= 3 && strings.ToLower(entry) == entry
}

// Languages returns a copy of the catalog entries in order
func (c *Catalog) Languages() []Language {
	out := make([]Language, len(c.langs))
	copy(out, c.langs)
	return out
}

// Names returns the display names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.langs))
	for i, l := range c.langs {
		names[i] = l.Name
	}
	return names
}

// Lookup finds a language by display name or code, case-insensitively
func (c *Catalog) Lookup(name string) (Language, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, l := range c.langs {
		if strings.ToLower(l.Name) == needle {
			return l, true
		}
		if l.Tag != language.Und && strings.ToLower(l.Tag.String()) == needle {
			return l, true
		}
	}
	return Language{}, false
}

// Select resolves a user selection against the catalog. Order follows the
// selection, duplicates collapse onto their first occurrence and unknown
// names are a format error.
func (c *Catalog) Select(names []string) ([]Language, error) {
	var selected []Language
	seen := make(map[string]bool)

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		lang, ok := c.Lookup(name)
		if !ok {
			return nil, apperrors.Format(fmt.Errorf("language %q is not in the catalog (available: %s)",
				name, strings.Join(c.Names(), ", ")))
		}
		if seen[lang.Name] {
			continue
		}
		seen[lang.Name] = true
		selected = append(selected, lang)
	}

	return selected, nil
}
