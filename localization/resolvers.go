package localization

import (
	"fmt"
	"net/http"
	"strings"
)

// Resolver reads candidate languages off an http request, most preferred first.
type Resolver interface {
	Resolve(r *http.Request) []string
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) []string

func (f ResolverFunc) Resolve(r *http.Request) []string {
	return f(r)
}

// ResolverDescriptor names a resolver to activate from configuration.
type ResolverDescriptor struct {
	Use any
}

// QueryResolver reads languages from the first matching query parameter.
func QueryResolver(keys ...string) Resolver {
	if len(keys) == 0 {
		keys = []string{MetadataKeyLanguage}
	}
	return ResolverFunc(func(r *http.Request) []string {
		query := r.URL.Query()
		for _, key := range keys {
			if v := query.Get(key); v != "" {
				return []string{v}
			}
		}
		return nil
	})
}

// HeaderResolver reads languages from the first matching request header.
func HeaderResolver(keys ...string) Resolver {
	return ResolverFunc(func(r *http.Request) []string {
		for _, key := range keys {
			if v := r.Header.Get(key); v != "" {
				return parseAcceptLanguage(v)
			}
		}
		return nil
	})
}

// CookieResolver reads languages from the first matching cookie.
func CookieResolver(names ...string) Resolver {
	if len(names) == 0 {
		names = []string{MetadataKeyLanguage}
	}
	return ResolverFunc(func(r *http.Request) []string {
		for _, name := range names {
			c, err := r.Cookie(name)
			if err == nil && c.Value != "" {
				return []string{c.Value}
			}
		}
		return nil
	})
}

// AcceptLanguageResolver reads the Accept-Language header ordered by quality.
func AcceptLanguageResolver() Resolver {
	return ResolverFunc(func(r *http.Request) []string {
		return ExtractLanguageFromHTTPHeader(r.Header)
	})
}

// DefaultResolvers mirrors ExtractLanguageFromHTTPRequest: query first, then Accept-Language.
func DefaultResolvers() []Resolver {
	return []Resolver{QueryResolver(), AcceptLanguageResolver()}
}

// BuildResolvers turns configuration items into resolvers. Items that
// ShouldResolve rejects are skipped.
func BuildResolvers(items ...any) ([]Resolver, error) {
	resolvers := make([]Resolver, 0, len(items))
	for i, item := range items {
		if !ShouldResolve(item) {
			continue
		}

		if d, ok := item.(*ResolverDescriptor); ok {
			item = *d
		}

		var use any
		switch v := item.(type) {
		case ResolverDescriptor:
			use = v.Use
		case map[string]any:
			use = v["use"]
		default:
			use = item
		}

		r, err := asResolver(use)
		if err != nil {
			return nil, fmt.Errorf("resolver %d: %w", i, err)
		}
		resolvers = append(resolvers, r)
	}
	return resolvers, nil
}

func asResolver(v any) (Resolver, error) {
	switch r := v.(type) {
	case Resolver:
		return r, nil
	case func(*http.Request) []string:
		return ResolverFunc(r), nil
	case func() Resolver:
		return r(), nil
	default:
		return nil, fmt.Errorf("%T can not be used as a language resolver", v)
	}
}

// ResolveLanguages runs resolvers in order and returns the combined candidates without duplicates.
func ResolveLanguages(r *http.Request, resolvers ...Resolver) []string {
	seen := map[string]struct{}{}
	var languages []string
	for _, resolver := range resolvers {
		for _, lang := range resolver.Resolve(r) {
			lang = strings.TrimSpace(lang)
			if lang == "" {
				continue
			}
			if _, ok := seen[lang]; ok {
				continue
			}
			seen[lang] = struct{}{}
			languages = append(languages, lang)
		}
	}
	return languages
}
