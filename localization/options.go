package localization

import "maps"

// TranslateOptions carries the per call translation settings handed to a Backend.
// Zero values are treated as absent.
type TranslateOptions struct {
	Language       string
	Args           map[string]any
	PluralCount    int
	DefaultMessage string
}

// Option mutates a TranslateOptions.
type Option func(*TranslateOptions)

// WithLanguage overrides the language bound to a Context.
func WithLanguage(lang string) Option {
	return func(o *TranslateOptions) {
		o.Language = lang
	}
}

// WithArgs sets the template arguments of a translation.
func WithArgs(args map[string]any) Option {
	return func(o *TranslateOptions) {
		o.Args = args
	}
}

// WithPluralCount sets the count used to select a plural form.
func WithPluralCount(count int) Option {
	return func(o *TranslateOptions) {
		o.PluralCount = count
	}
}

// WithDefaultMessage sets the text returned when the key has no translation.
func WithDefaultMessage(msg string) Option {
	return func(o *TranslateOptions) {
		o.DefaultMessage = msg
	}
}

// NewTranslateOptions applies opts on top of an empty TranslateOptions.
func NewTranslateOptions(opts ...Option) TranslateOptions {
	var o TranslateOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// withDefaults returns o with every absent field taken from defaults.
func (o TranslateOptions) withDefaults(defaults TranslateOptions) TranslateOptions {
	if o.Language == "" {
		o.Language = defaults.Language
	}
	if o.Args == nil && defaults.Args != nil {
		o.Args = maps.Clone(defaults.Args)
	}
	if o.PluralCount == 0 {
		o.PluralCount = defaults.PluralCount
	}
	if o.DefaultMessage == "" {
		o.DefaultMessage = defaults.DefaultMessage
	}
	return o
}
