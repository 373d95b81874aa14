package localization

import "context"

// Context binds the language resolved for one invocation to a translation backend.
type Context struct {
	language string
	backend  Backend
}

// NewContext creates a Context. It is immutable once built.
func NewContext(language string, backend Backend) *Context {
	return &Context{language: language, backend: backend}
}

func (c *Context) Language() string {
	return c.language
}

func (c *Context) Backend() Backend {
	return c.backend
}

// Translate resolves key in the bound language unless opts carry another one.
func (c *Context) Translate(ctx context.Context, key string, opts ...Option) (string, error) {
	return c.backend.Translate(ctx, key, c.options(opts))
}

// T is shorthand for Translate.
func (c *Context) T(ctx context.Context, key string, opts ...Option) (string, error) {
	return c.Translate(ctx, key, opts...)
}

// Validate validates value through the backend with messages in the bound language.
func (c *Context) Validate(ctx context.Context, value any, opts ...Option) ([]*ErrorNode, error) {
	return c.backend.Validate(ctx, value, c.options(opts))
}

func (c *Context) options(opts []Option) TranslateOptions {
	return NewTranslateOptions(opts...).withDefaults(TranslateOptions{Language: c.language})
}
