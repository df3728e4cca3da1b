// Package i18n is the portal's localization provider. Two locales are
// supported, Spanish (the default) and Catalan, and every user-facing string
// the service produces is looked up here by key.
package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

type Locale string

const (
	ES Locale = "es"
	CA Locale = "ca"
)

// Default is used when nothing in the request selects a supported locale.
const Default = ES

var (
	supported = []Locale{ES, CA}
	matcher   = language.NewMatcher([]language.Tag{language.Spanish, language.Catalan})
)

// Supported lists the locales in matcher order.
func Supported() []Locale {
	return append([]Locale(nil), supported...)
}

// Parse returns the locale named by s ("es", "ca-ES", "CA"), or fallback when
// s does not name a supported one.
func Parse(s string, fallback Locale) Locale {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	base, conf := tag.Base()
	if conf == language.No {
		return fallback
	}
	for _, l := range supported {
		if base.String() == string(l) {
			return l
		}
	}
	return fallback
}

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string, fallback Locale) Locale {
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
	return supported[idx]
}

// T translates key into loc. Missing keys fall back to the default locale and
// then to the key itself.
func T(loc Locale, key string) string {
	if s, ok := catalogs[loc][key]; ok {
		return s
	}
	if s, ok := catalogs[Default][key]; ok {
		return s
	}
	return key
}

type ctxKey struct{}

func WithLocale(ctx context.Context, loc Locale) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// FromContext returns the request locale, or Default when none was set.
func FromContext(ctx context.Context) Locale {
	if loc, ok := ctx.Value(ctxKey{}).(Locale); ok {
		return loc
	}
	return Default
}
