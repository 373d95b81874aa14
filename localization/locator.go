package localization

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Kind names the transport protocol an Envelope was built for.
type Kind string

const (
	KindHTTP    Kind = "http"
	KindGraphQL Kind = "graphql"
	KindRPC     Kind = "rpc"

	graphQLContextPosition = 2
)

var (
	// ErrUnsupportedKind is returned when an envelope's kind has no extraction rule.
	ErrUnsupportedKind = errors.New("unsupported invocation kind")

	// ErrContextUnavailable is returned when the language or backend could not be found on an envelope.
	ErrContextUnavailable = errors.New("localization context unavailable")
)

// Carrier is any surface values can be attached to and read back from,
// context.Context and *gin.Context both qualify.
type Carrier interface {
	Value(key any) any
}

// RPCContext exposes the context of an rpc invocation, grpc.ServerStream satisfies it.
type RPCContext interface {
	Context() context.Context
}

type rpcContext struct {
	ctx context.Context
}

func (r rpcContext) Context() context.Context { return r.ctx }

// RPCFromContext wraps the context of a unary rpc call.
func RPCFromContext(ctx context.Context) RPCContext {
	return rpcContext{ctx: ctx}
}

// Envelope is the transport specific data a Context is located from.
// It is built by the transport integration through one of the New*Envelope constructors.
type Envelope struct {
	kind Kind

	request Carrier
	raw     Carrier
	args    []any
	rpc     RPCContext
}

// NewHTTPEnvelope describes a request/response invocation. raw is the lower level
// request handle an adapter wraps, it may be nil.
func NewHTTPEnvelope(request, raw Carrier) Envelope {
	return Envelope{kind: KindHTTP, request: request, raw: raw}
}

// NewGraphQLEnvelope describes a resolver invocation, the third argument is the resolver context.
func NewGraphQLEnvelope(args ...any) Envelope {
	return Envelope{kind: KindGraphQL, args: args}
}

// NewRPCEnvelope describes an rpc invocation.
func NewRPCEnvelope(rpc RPCContext) Envelope {
	return Envelope{kind: KindRPC, rpc: rpc}
}

// NewEnvelope describes an invocation of a kind the transport layer has no dedicated constructor for.
func NewEnvelope(kind Kind) Envelope {
	return Envelope{kind: kind}
}

func (e Envelope) Kind() Kind {
	return e.kind
}

// Locate extracts the language and backend carried by env.
func Locate(env Envelope) (*Context, error) {
	switch env.kind {
	case KindHTTP:
		return locateHTTP(env.request, env.raw)
	case KindGraphQL:
		return locateGraphQL(env.args)
	case KindRPC:
		if env.rpc == nil {
			return nil, fmt.Errorf("%w: rpc envelope has no context", ErrContextUnavailable)
		}
		return locateFromCarrier(env.rpc.Context())
	default:
		return nil, fmt.Errorf("%w: can't resolve localization context for kind %q", ErrUnsupportedKind, env.kind)
	}
}

// LocateFromContext locates a Context attached to a plain context.Context.
func LocateFromContext(ctx context.Context) (*Context, error) {
	return Locate(NewRPCEnvelope(RPCFromContext(ctx)))
}

func locateHTTP(request, raw Carrier) (*Context, error) {
	lang := firstLanguage(valueOf(raw, ctxKeyLanguage))
	if lang == "" {
		lang = firstLanguage(valueOf(request, ctxKeyLanguage))
	}

	backend, _ := valueOf(raw, ctxKeyBackend).(Backend)
	if backend == nil {
		backend, _ = valueOf(request, ctxKeyBackend).(Backend)
	}

	return build(lang, backend)
}

func locateGraphQL(args []any) (*Context, error) {
	if len(args) <= graphQLContextPosition {
		return nil, fmt.Errorf("%w: graphql envelope has %d arguments", ErrContextUnavailable, len(args))
	}

	carrier, ok := args[graphQLContextPosition].(Carrier)
	if !ok {
		return nil, fmt.Errorf("%w: graphql resolver context is %T", ErrContextUnavailable, args[graphQLContextPosition])
	}

	return locateFromCarrier(carrier)
}

func locateFromCarrier(c Carrier) (*Context, error) {
	backend, _ := valueOf(c, ctxKeyBackend).(Backend)
	return build(firstLanguage(valueOf(c, ctxKeyLanguage)), backend)
}

func build(lang string, backend Backend) (*Context, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: no translation backend attached", ErrContextUnavailable)
	}
	if lang == "" {
		return nil, fmt.Errorf("%w: no language attached", ErrContextUnavailable)
	}
	return NewContext(lang, backend), nil
}

func valueOf(c Carrier, key contextKey) any {
	if c == nil {
		return nil
	}
	if v := reflect.ValueOf(c); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return c.Value(key)
}

func firstLanguage(v any) string {
	switch l := v.(type) {
	case string:
		return l
	case []string:
		for _, lang := range l {
			if lang != "" {
				return lang
			}
		}
	}
	return ""
}

// ShouldResolve reports whether item is a resolver to activate: either it is
// directly invocable or it carries a truthy use field.
func ShouldResolve(item any) bool {
	if item == nil {
		return false
	}

	switch v := item.(type) {
	case Resolver:
		return !isNil(v)
	case ResolverDescriptor:
		return truthy(v.Use)
	case *ResolverDescriptor:
		return v != nil && truthy(v.Use)
	case map[string]any:
		return truthy(v["use"])
	}

	return reflect.ValueOf(item).Kind() == reflect.Func && !isNil(item)
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Chan:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
