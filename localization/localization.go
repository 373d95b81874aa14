package localization

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"
)

type contextKey string

func (c contextKey) String() string {
	return "polyglot/localization/" + string(c)
}

const (
	ctxKeyLanguage = contextKey("languageKey")
	ctxKeyBackend  = contextKey("backendKey")

	// MetadataKeyLanguage is the map/metadata key used to propagate languages.
	MetadataKeyLanguage = "lang"

	headerAcceptLanguage = "Accept-Language"
)

// LanguageKey is the key under which the accepted language list is attached to a Carrier.
func LanguageKey() any { return ctxKeyLanguage }

// BackendKey is the key under which the translation backend is attached to a Carrier.
func BackendKey() any { return ctxKeyBackend }

// ToContext adds language to the current supplied context.
func ToContext(ctx context.Context, lang []string) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, lang)
}

// FromContext extracts language from the supplied context if any exist.
func FromContext(ctx context.Context) []string {
	languages, ok := ctx.Value(ctxKeyLanguage).([]string)
	if !ok {
		return nil
	}

	return languages
}

// BackendToContext adds a translation backend to the supplied context.
func BackendToContext(ctx context.Context, backend Backend) context.Context {
	return context.WithValue(ctx, ctxKeyBackend, backend)
}

// BackendFromContext extracts the translation backend from the supplied context if any.
func BackendFromContext(ctx context.Context) Backend {
	backend, ok := ctx.Value(ctxKeyBackend).(Backend)
	if !ok {
		return nil
	}
	return backend
}

// Attach stores both the accepted languages and the backend on ctx.
func Attach(ctx context.Context, lang []string, backend Backend) context.Context {
	return BackendToContext(ToContext(ctx, lang), backend)
}

func ToMap(m map[string]string, lang []string) map[string]string {
	m[MetadataKeyLanguage] = strings.Join(lang, ",")
	return m
}

func FromMap(m map[string]string) []string {
	lang, ok := m[MetadataKeyLanguage]
	if !ok {
		return nil
	}
	return strings.Split(lang, ",")
}

// ExtractLanguageFromHTTPRequest returns the "lang" query value followed by the Accept-Language entries.
func ExtractLanguageFromHTTPRequest(req *http.Request) []string {
	var languages []string
	if lang := req.URL.Query().Get(MetadataKeyLanguage); lang != "" {
		languages = append(languages, lang)
	}

	return append(languages, ExtractLanguageFromHTTPHeader(req.Header)...)
}

// ExtractLanguageFromHTTPHeader orders the Accept-Language entries by quality.
func ExtractLanguageFromHTTPHeader(header http.Header) []string {
	return parseAcceptLanguage(header.Get(headerAcceptLanguage))
}

func ExtractLanguageFromGrpcRequest(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return []string{}
	}

	header, ok := md["accept-language"]
	if !ok || len(header) == 0 {
		header, ok = md[MetadataKeyLanguage]
		if !ok || len(header) == 0 {
			return []string{}
		}
	}

	return parseAcceptLanguage(header[0])
}

func parseAcceptLanguage(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}

	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		// Keep the raw entries when the header is not well formed.
		var raw []string
		for _, part := range strings.Split(value, ",") {
			part, _, _ = strings.Cut(part, ";")
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
		return raw
	}

	languages := make([]string, 0, len(tags))
	for _, tag := range tags {
		languages = append(languages, tag.String())
	}
	return languages
}

// Accepted orders candidates for attachment, the language the backend negotiates comes first.
func Accepted(backend Backend, candidates []string) []string {
	n, ok := backend.(Negotiator)
	if !ok {
		return candidates
	}

	chosen := n.Negotiate(candidates...)
	languages := make([]string, 0, len(candidates)+1)
	languages = append(languages, chosen)
	for _, c := range candidates {
		if c != chosen {
			languages = append(languages, c)
		}
	}
	return languages
}
