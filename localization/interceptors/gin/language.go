package gin

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pitabwire/polyglot/localization"
	"github.com/pitabwire/polyglot/validation"
)

var (
	languageKey = fmt.Sprint(localization.LanguageKey())
	backendKey  = fmt.Sprint(localization.BackendKey())
)

// keys exposes the gin context keys as a localization.Carrier.
type keys struct {
	c *gin.Context
}

func (k keys) Value(key any) any {
	name, ok := key.(fmt.Stringer)
	if !ok {
		return nil
	}
	v, _ := k.c.Get(name.String())
	return v
}

// LanguageMiddleware resolves the request language and stores it with backend on the gin context.
func LanguageMiddleware(backend localization.Backend, resolvers ...localization.Resolver) gin.HandlerFunc {
	if len(resolvers) == 0 {
		resolvers = localization.DefaultResolvers()
	}

	return func(c *gin.Context) {
		l := localization.Accepted(backend, localization.ResolveLanguages(c.Request, resolvers...))
		c.Set(languageKey, l)
		c.Set(backendKey, backend)
		c.Next()
	}
}

// Envelope describes c for the locator: gin keys first level, the wrapped
// *http.Request context as the raw handle.
func Envelope(c *gin.Context) localization.Envelope {
	var raw localization.Carrier
	if c.Request != nil {
		raw = c.Request.Context()
	}
	return localization.NewHTTPEnvelope(keys{c: c}, raw)
}

// FromContext locates the localization context of c.
func FromContext(c *gin.Context) (*localization.Context, error) {
	return localization.Locate(Envelope(c))
}

// ValidationErrors renders the last error of the chain as JSON, translating validation details.
func ValidationErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		err := validation.TranslateError(c.Request.Context(), Envelope(c), last.Err)
		body := validation.NewHTTPErrorBody(err)
		c.JSON(body.StatusCode, body)
	}
}
