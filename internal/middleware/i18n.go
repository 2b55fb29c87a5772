package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// Supported message locales. The first entry is the default.
var supportedLocales = []language.Tag{language.Turkish, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

// I18N resolves the response locale from X-Locale, then Accept-Language, falling back to Turkish.
func I18N(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := detectLocale(r)
		w.Header().Set("Content-Language", locale)
		ctx := context.WithValue(r.Context(), LocaleKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func detectLocale(r *http.Request) string {
	candidates := make([]language.Tag, 0, 4)
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			candidates = append(candidates, tag)
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil {
		candidates = append(candidates, tags...)
	}
	if len(candidates) == 0 {
		return baseOf(supportedLocales[0])
	}
	_, idx, confidence := localeMatcher.Match(candidates...)
	if confidence == language.No {
		return baseOf(supportedLocales[0])
	}
	return baseOf(supportedLocales[idx])
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// LocaleFromContext returns the resolved locale ("tr" or "en").
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return baseOf(supportedLocales[0])
}
