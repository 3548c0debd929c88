package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeKey string

// LocaleKey carries the negotiated UI locale through the request context.
const LocaleKey localeKey = "locale"

var supportedLocales = language.NewMatcher([]language.Tag{
	language.English, // default
	language.Hindi,
})

// Locale negotiates the response language for user-facing error copy from
// the Accept-Language header. Falls back to English.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		locale := "en"
		if err == nil && len(tags) > 0 {
			tag, _, _ := supportedLocales.Match(tags...)
			if base, conf := tag.Base(); conf != language.No && base.String() == "hi" {
				locale = "hi"
			}
		}
		ctx := context.WithValue(r.Context(), LocaleKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}
