package connect

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/protovalidate"
	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"

	"github.com/pitabwire/polyglot/localization"
	"github.com/pitabwire/polyglot/validation"
)

// An Option configures a [ValidationInterceptor].
type Option interface {
	apply(*ValidationInterceptor)
}

// WithValidator configures the [ValidationInterceptor] to use a customized
// [protovalidate.Validator]. By default, [protovalidate.GlobalValidator] is used.
func WithValidator(validator protovalidate.Validator) Option {
	return optionFunc(func(i *ValidationInterceptor) {
		i.validator = validator
	})
}

// WithKeyPrefix sets the prefix prepended to protovalidate rule ids to build translation keys.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(i *ValidationInterceptor) {
		i.keyPrefix = prefix
	})
}

// WithoutErrorDetails configures the [ValidationInterceptor] to elide the
// localized error tree from validation errors.
func WithoutErrorDetails() Option {
	return optionFunc(func(i *ValidationInterceptor) {
		i.noErrorDetails = true
	})
}

// ValidationInterceptor is a [connect.Interceptor] that checks request messages
// against their protovalidate rules. Violations, and ValidationException errors
// returned by handlers, are reported with [connect.CodeInvalidArgument] and
// constraint messages translated into the caller's language.
//
// It reads the localization context attached by [LanguageInterceptor], which
// must run before it.
type ValidationInterceptor struct {
	validator      protovalidate.Validator
	keyPrefix      string
	noErrorDetails bool
}

// NewValidationInterceptor builds a ValidationInterceptor.
func NewValidationInterceptor(opts ...Option) *ValidationInterceptor {
	var interceptor ValidationInterceptor
	for _, opt := range opts {
		opt.apply(&interceptor)
	}

	if interceptor.validator == nil {
		interceptor.validator = protovalidate.GlobalValidator
	}
	if interceptor.keyPrefix == "" {
		interceptor.keyPrefix = validation.DefaultKeyPrefix
	}

	return &interceptor
}

// WrapUnary implements connect.Interceptor.
func (i *ValidationInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if err := i.validate(req.Any()); err != nil {
			return nil, i.toConnectError(ctx, err)
		}

		response, err := next(ctx, req)
		if err != nil {
			return response, i.toConnectError(ctx, err)
		}
		return response, nil
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *ValidationInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *ValidationInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		err := next(ctx, &streamingHandlerInterceptor{
			StreamingHandlerConn: conn,
			interceptor:          i,
			ctx:                  ctx,
		})
		if err != nil {
			return i.toConnectError(ctx, err)
		}
		return nil
	}
}

func (i *ValidationInterceptor) validate(msg any) error {
	if msg == nil {
		return nil
	}

	protoMsg, ok := msg.(proto.Message)
	if !ok {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expected proto.Message, got %T", msg))
	}

	err := i.validator.Validate(protoMsg)
	if err == nil {
		return nil
	}

	if raw, isViolation := validation.FromProtoValidate(err, i.keyPrefix); isViolation {
		return localization.ValidationErrorFactory(raw)
	}
	return connect.NewError(connect.CodeInvalidArgument, err)
}

func (i *ValidationInterceptor) toConnectError(ctx context.Context, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	env := localization.NewRPCEnvelope(localization.RPCFromContext(ctx))
	err = validation.TranslateError(ctx, env, err)

	var exc *localization.ValidationException
	if i.noErrorDetails && errors.As(err, &exc) {
		return connect.NewError(connect.CodeInvalidArgument, exc)
	}
	return validation.ToConnectError(err)
}

type streamingHandlerInterceptor struct {
	connect.StreamingHandlerConn

	interceptor *ValidationInterceptor
	ctx         context.Context
}

func (s *streamingHandlerInterceptor) Receive(msg any) error {
	if err := s.StreamingHandlerConn.Receive(msg); err != nil {
		return err
	}
	if err := s.interceptor.validate(msg); err != nil {
		return s.interceptor.toConnectError(s.ctx, err)
	}
	return nil
}

type optionFunc func(*ValidationInterceptor)

func (f optionFunc) apply(i *ValidationInterceptor) { f(i) }
