package http

import (
	"net/http"

	"github.com/pitabwire/util"

	"github.com/pitabwire/polyglot/localization"
	"github.com/pitabwire/polyglot/validation"
)

// LanguageHTTPMiddleware is an HTTP middleware that resolves the request language and
// attaches it, together with backend, to the request context. Without resolvers the
// "lang" query parameter and the Accept-Language header are consulted.
func LanguageHTTPMiddleware(backend localization.Backend, next http.Handler, resolvers ...localization.Resolver) http.Handler {
	if len(resolvers) == 0 {
		resolvers = localization.DefaultResolvers()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := localization.Accepted(backend, localization.ResolveLanguages(r, resolvers...))

		ctx := localization.Attach(r.Context(), l, backend)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

// FromRequest locates the localization context attached to r.
func FromRequest(r *http.Request) (*localization.Context, error) {
	return localization.Locate(localization.NewHTTPEnvelope(r.Context(), nil))
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler adapts h, writing returned errors as JSON with validation details
// translated into the request language.
func ErrorHandler(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		util.Log(r.Context()).WithError(err).WithField("path", r.URL.Path).Debug("request failed")
		validation.WriteHTTPError(w, r, err)
	})
}
