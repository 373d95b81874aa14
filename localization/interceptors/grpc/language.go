package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/pitabwire/polyglot/localization"
	"github.com/pitabwire/polyglot/validation"
)

// LanguageUnaryInterceptor Simple grpc interceptor to extract the language supplied via
// metadata and attach it with backend to the call context.
func LanguageUnaryInterceptor(backend localization.Backend) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := localization.Accepted(backend, localization.ExtractLanguageFromGrpcRequest(ctx))
		ctx = localization.Attach(ctx, l, backend)

		return handler(ctx, req)
	}
}

// LanguageStreamInterceptor is the streaming counterpart of LanguageUnaryInterceptor.
func LanguageStreamInterceptor(backend localization.Backend) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		l := localization.Accepted(backend, localization.ExtractLanguageFromGrpcRequest(ctx))
		ctx = localization.Attach(ctx, l, backend)

		// Wrap the original stream with ctx this ensures the handlers always receives a stream from which it can get the correct context.
		return handler(srv, &serverStreamWrapper{ctx, ss})
	}
}

// ValidationUnaryInterceptor translates ValidationException errors returned by handlers
// into InvalidArgument statuses localized for the caller.
func ValidationUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			env := localization.NewRPCEnvelope(localization.RPCFromContext(ctx))
			return resp, validation.ToGrpcError(validation.TranslateError(ctx, env, err))
		}
		return resp, nil
	}
}

// ValidationStreamInterceptor is the streaming counterpart of ValidationUnaryInterceptor.
func ValidationStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if err != nil {
			return validation.ToGrpcError(validation.TranslateError(ss.Context(), localization.NewRPCEnvelope(ss), err))
		}
		return nil
	}
}

// serverStreamWrapper simple wrapper method that stores the language for the server stream context.
type serverStreamWrapper struct {
	ctx context.Context
	grpc.ServerStream
}

// Context returns the wrapper's context.
func (s *serverStreamWrapper) Context() context.Context {
	return s.ctx
}
