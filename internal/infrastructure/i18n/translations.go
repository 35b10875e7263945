package i18n

import (
	"embed"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"hangout/internal/domain"
	"hangout/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var _ output.T = (*Translator)(nil)

// Translator renders messages from the embedded bundles. Localizers are built
// once per requested locale.
type Translator struct {
	bundle     *i18n.Bundle
	fallback   language.Tag
	localizers sync.Map // locale -> *i18n.Localizer
	logger     *slog.Logger
}

// NewTranslator loads every embedded active.*.toml file. An unparsable
// defaultLocale falls back to English.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		fallback = language.English
	}
	bundle := i18n.NewBundle(fallback)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, _ := fs.Glob(localeFS, "active.*.toml")
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Error("i18n message file rejected", "event", "i18n_load_failed", "file", file, "error", err.Error())
		}
	}
	return &Translator{bundle: bundle, fallback: fallback, logger: logger}
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	if l, ok := t.localizers.Load(locale); ok {
		return l.(*i18n.Localizer)
	}
	l, _ := t.localizers.LoadOrStore(locale, i18n.NewLocalizer(t.bundle, locale, t.fallback.String()))
	return l.(*i18n.Localizer)
}

// T renders key in locale, then in the default locale, and finally returns
// the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		t.logger.Warn("i18n localize failed", "event", "i18n_missing", "key", key, "locale", locale, "error", err.Error())
		return key
	}
	return msg
}

// Error renders a user-facing message for err. Coded domain errors use the
// "error.<code>" key; anything else renders "error.internal".
func (t *Translator) Error(locale string, err error) string {
	code := domain.Code(err)
	if code == "" {
		code = "internal"
	}
	return t.T(locale, "error."+code, nil)
}
