package validation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"buf.build/go/protovalidate"
	"google.golang.org/protobuf/proto"

	"github.com/pitabwire/polyglot/localization"
)

// ProtoValidator validates protobuf messages against their protovalidate rules.
type ProtoValidator struct {
	validator protovalidate.Validator
	keyPrefix string
}

// NewProtoValidator wraps validator, protovalidate.GlobalValidator when nil.
func NewProtoValidator(validator protovalidate.Validator, keyPrefix string) *ProtoValidator {
	if validator == nil {
		validator = protovalidate.GlobalValidator
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &ProtoValidator{validator: validator, keyPrefix: keyPrefix}
}

// Validate implements localization.Validator for proto.Message values.
func (v *ProtoValidator) Validate(_ context.Context, value any) ([]*localization.ValidationError, error) {
	msg, ok := value.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("expected proto.Message, got %T", value)
	}

	err := v.validator.Validate(msg)
	if err == nil {
		return nil, nil
	}

	if raw, isViolation := FromProtoValidate(err, v.keyPrefix); isViolation {
		return raw, nil
	}
	return nil, err
}

type violation struct {
	path      []string
	rule      string
	message   string
	value     any
	ruleValue any
}

// FromProtoValidate converts a *protovalidate.ValidationError into a raw error
// tree. The second result is false when err is not a validation error.
func FromProtoValidate(err error, keyPrefix string) ([]*localization.ValidationError, bool) {
	var ve *protovalidate.ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}

	violations := make([]violation, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		if v == nil || v.Proto == nil {
			continue
		}

		var path []string
		for _, el := range v.Proto.GetField().GetElements() {
			path = append(path, el.GetFieldName())
		}

		item := violation{
			path:    path,
			rule:    v.Proto.GetRuleId(),
			message: v.Proto.GetMessage(),
		}
		if v.FieldValue.IsValid() {
			item.value = v.FieldValue.Interface()
		}
		if v.RuleValue.IsValid() {
			item.ruleValue = v.RuleValue.Interface()
		}
		violations = append(violations, item)
	}

	raw, buildErr := fromViolations(violations, keyPrefix)
	if buildErr != nil {
		return nil, false
	}
	return raw, true
}

func fromViolations(violations []violation, keyPrefix string) ([]*localization.ValidationError, error) {
	var b treeBuilder
	for _, v := range violations {
		path := v.path
		if len(path) == 0 {
			// message level rules have no field path
			path = []string{""}
		}

		var constraints []any
		if v.ruleValue != nil {
			constraints = []any{v.ruleValue}
		}

		extra := map[string]any{}
		if v.message != "" {
			extra["message"] = v.message
		}

		value := v.value
		if !jsonSafe(value) {
			value = fmt.Sprint(value)
		}

		msg, err := localization.EncodeMessage(keyPrefix+v.rule, localization.ConstraintArguments{
			Value:       value,
			Constraints: constraints,
		}, extra)
		if err != nil {
			return nil, err
		}

		leaf := b.node(path)
		leaf.Value = v.value
		leaf.Constraints[v.rule] = msg
	}
	return b.roots, nil
}

// jsonSafe reports whether a protoreflect value can be marshalled as is.
func jsonSafe(v any) bool {
	switch x := v.(type) {
	case nil, string, bool, int32, int64, uint32, uint64, []byte:
		return true
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	default:
		return false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
