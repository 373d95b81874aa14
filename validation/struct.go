package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pitabwire/polyglot/localization"
)

// DefaultKeyPrefix prefixes every validation tag to build its translation key.
const DefaultKeyPrefix = "validation."

// StructValidator validates structs with go-playground/validator and reports
// failures as raw error trees carrying encoded messages.
type StructValidator struct {
	validate  *validator.Validate
	keyPrefix string
}

// An Option configures a StructValidator.
type Option func(*StructValidator)

// WithKeyPrefix overrides the translation key prefix, DefaultKeyPrefix by default.
func WithKeyPrefix(prefix string) Option {
	return func(v *StructValidator) {
		v.keyPrefix = prefix
	}
}

// WithValidate uses an already configured validator instance.
func WithValidate(validate *validator.Validate) Option {
	return func(v *StructValidator) {
		v.validate = validate
	}
}

// NewStructValidator builds a StructValidator reporting json field names.
func NewStructValidator(opts ...Option) *StructValidator {
	v := &StructValidator{keyPrefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(v)
	}

	if v.validate == nil {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.RegisterTagNameFunc(jsonFieldName)
	}

	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

// Engine exposes the underlying validator to register custom rules.
func (v *StructValidator) Engine() *validator.Validate {
	return v.validate
}

// Validate implements localization.Validator.
func (v *StructValidator) Validate(ctx context.Context, value any) ([]*localization.ValidationError, error) {
	err := v.validate.StructCtx(ctx, value)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return FromFieldErrors(fieldErrs, v.keyPrefix)
	}

	return nil, err
}

// FromFieldErrors arranges flat field errors into a tree following their namespaces.
func FromFieldErrors(fieldErrs validator.ValidationErrors, keyPrefix string) ([]*localization.ValidationError, error) {
	var b treeBuilder
	for _, fe := range fieldErrs {
		msg, err := localization.EncodeMessage(keyPrefix+fe.Tag(), localization.ConstraintArguments{
			Value:       encodable(fe.Value()),
			Constraints: params(fe.Param()),
		}, nil)
		if err != nil {
			return nil, err
		}

		path := splitNamespace(fe.Namespace())
		if len(path) == 0 {
			path = []string{fe.Field()}
		}

		leaf := b.node(path)
		leaf.Value = fe.Value()
		leaf.Constraints[fe.Tag()] = msg
	}
	return b.roots, nil
}

// encodable replaces non-finite floats, which json cannot marshal, with their text.
func encodable(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
		return v
	}
	if finite(rv.Float()) {
		return v
	}
	return fmt.Sprint(v)
}

func params(param string) []any {
	if param == "" {
		return nil
	}
	return []any{param}
}

// splitNamespace turns "User.items[0].name" into [items 0 name], dropping the root type.
func splitNamespace(ns string) []string {
	segments := strings.Split(ns, ".")
	if len(segments) <= 1 {
		return nil
	}

	var path []string
	for _, segment := range segments[1:] {
		for segment != "" {
			open := strings.IndexByte(segment, '[')
			if open < 0 {
				path = append(path, segment)
				break
			}
			if open > 0 {
				path = append(path, segment[:open])
			}
			end := strings.IndexByte(segment[open:], ']')
			if end < 0 {
				path = append(path, segment[open+1:])
				break
			}
			path = append(path, segment[open+1:open+end])
			segment = segment[open+end+1:]
		}
	}
	return path
}

// treeBuilder creates nodes on demand, keeping first-seen order among siblings.
type treeBuilder struct {
	roots []*localization.ValidationError
	index map[string]*localization.ValidationError
}

func (b *treeBuilder) node(path []string) *localization.ValidationError {
	if b.index == nil {
		b.index = map[string]*localization.ValidationError{}
	}

	var parent *localization.ValidationError
	for i, property := range path {
		key := strings.Join(path[:i+1], "\x00")
		n, ok := b.index[key]
		if !ok {
			n = &localization.ValidationError{Property: property, Constraints: map[string]string{}}
			b.index[key] = n
			if parent == nil {
				b.roots = append(b.roots, n)
			} else {
				parent.Children = append(parent.Children, n)
			}
		}
		parent = n
	}
	return parent
}
