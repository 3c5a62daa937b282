package notify

import (
	"embed"
	"log"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var localeFS embed.FS

var localeFiles = []string{"locales/active.en.toml", "locales/active.fr.toml"}

// Translator resolves message IDs to localised titles.
type Translator struct {
	localizer *i18n.Localizer
}

// NewTranslator builds a Translator for locale, falling back to English for
// unknown locales and missing keys.
func NewTranslator(locale string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Printf("i18n: failed to load %s: %v", file, err)
		}
	}

	languages := []string{}
	if tag, err := language.Parse(locale); err == nil {
		languages = append(languages, tag.String())
	}
	languages = append(languages, language.English.String())

	return &Translator{localizer: i18n.NewLocalizer(bundle, languages...)}
}

// T returns the text for id, or id itself when no locale defines it.
func (t *Translator) T(id string) string {
	if id == "" {
		return ""
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		log.Printf("i18n: localize failed (key=%s): %v", id, err)
		return id
	}
	return msg
}
