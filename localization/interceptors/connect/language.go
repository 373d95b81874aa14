package connect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/pitabwire/polyglot/localization"
)

// LanguageInterceptor implements connect.Interceptor for ensuring language is available in the context.
type LanguageInterceptor struct {
	backend localization.Backend
}

// NewLanguageInterceptor creates a language interceptor attaching backend to every call.
func NewLanguageInterceptor(backend localization.Backend) (*LanguageInterceptor, error) {
	if backend == nil {
		return nil, errors.New("a translation backend is required")
	}
	return &LanguageInterceptor{backend: backend}, nil
}

func (l *LanguageInterceptor) attach(ctx context.Context, header http.Header) context.Context {
	candidates := localization.ExtractLanguageFromHTTPHeader(header)
	return localization.Attach(ctx, localization.Accepted(l.backend, candidates), l.backend)
}

// WrapUnary attaches the language of unary requests.
func (l *LanguageInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx = l.attach(ctx, req.Header())

		return next(ctx, req)
	}
}

// WrapStreamingClient is a pass-through, languages are resolved server side.
func (l *LanguageInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler attaches the language of streaming requests.
func (l *LanguageInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return next(l.attach(ctx, conn.RequestHeader()), conn)
	}
}
