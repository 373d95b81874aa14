package localization

import "context"

// Translator resolves a single translation key.
type Translator interface {
	Translate(ctx context.Context, key string, opts TranslateOptions) (string, error)
}

// Backend is the translation and validation service bound to a Context.
// Errors returned by a Backend are propagated to callers unchanged.
type Backend interface {
	Translator
	Validate(ctx context.Context, value any, opts TranslateOptions) ([]*ErrorNode, error)
}

// Validator produces a raw error tree whose constraint messages are encoded messages.
// A nil slice means value is valid.
type Validator interface {
	Validate(ctx context.Context, value any) ([]*ValidationError, error)
}

// Negotiator picks the best supported language out of a list of candidates.
type Negotiator interface {
	Negotiate(candidates ...string) string
}
