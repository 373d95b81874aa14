package fiber

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/pitabwire/util"

	"github.com/pitabwire/polyglot/localization"
	"github.com/pitabwire/polyglot/validation"
)

// locals exposes fiber locals as a localization.Carrier.
type locals struct {
	c *fiber.Ctx
}

func (l locals) Value(key any) any {
	return l.c.Locals(key)
}

// LanguageMiddleware resolves the request language and stores it with backend in the fiber locals.
func LanguageMiddleware(backend localization.Backend, resolvers ...localization.Resolver) fiber.Handler {
	if len(resolvers) == 0 {
		resolvers = localization.DefaultResolvers()
	}

	return func(c *fiber.Ctx) error {
		req, err := adaptor.ConvertRequest(c, false)
		if err != nil {
			return err
		}

		l := localization.Accepted(backend, localization.ResolveLanguages(req, resolvers...))
		c.Locals(localization.LanguageKey(), l)
		c.Locals(localization.BackendKey(), backend)
		return c.Next()
	}
}

// Envelope describes c for the locator: fiber locals first level, the user context as the raw handle.
func Envelope(c *fiber.Ctx) localization.Envelope {
	return localization.NewHTTPEnvelope(locals{c: c}, c.UserContext())
}

// FromContext locates the localization context of c.
func FromContext(c *fiber.Ctx) (*localization.Context, error) {
	return localization.Locate(Envelope(c))
}

// ErrorHandler is a fiber.ErrorHandler writing errors as JSON with validation details
// translated into the request language.
func ErrorHandler(c *fiber.Ctx, err error) error {
	err = validation.TranslateError(c.UserContext(), Envelope(c), err)
	body := validation.NewHTTPErrorBody(err)

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		body.StatusCode = fiberErr.Code
		body.Message = fiberErr.Message
	}

	util.Log(c.UserContext()).WithError(err).WithField("path", c.Path()).Debug("request failed")
	return c.Status(body.StatusCode).JSON(body)
}
