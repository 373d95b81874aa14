package localization

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MessageDelimiter separates the translation key from its JSON arguments in an encoded message.
const MessageDelimiter = "|"

// ConstraintArguments is what a validator knows about a failed constraint.
type ConstraintArguments struct {
	// Value is the value that failed validation.
	Value any
	// Constraints holds the constraint parameters, e.g. the minimum of a min rule.
	Constraints []any
}

// EncodeMessage packs key and the constraint arguments into a single string of
// the form "key|{json}". extra entries take precedence over value and constraints.
func EncodeMessage(key string, a ConstraintArguments, extra map[string]any) (string, error) {
	value := a.Value
	if s, ok := value.(string); ok {
		value = strings.ReplaceAll(s, MessageDelimiter, "")
	}

	constraints := a.Constraints
	if constraints == nil {
		constraints = []any{}
	}

	payload := make(map[string]any, len(extra)+2)
	payload["value"] = value
	payload["constraints"] = constraints
	for k, v := range extra {
		payload[k] = v
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode message %q: %w", key, err)
	}

	return key + MessageDelimiter + string(data), nil
}

// ValidationMessage returns a message builder for key, to be invoked once the
// validator knows the failing value.
func ValidationMessage(key string, extra map[string]any) func(ConstraintArguments) (string, error) {
	return func(a ConstraintArguments) (string, error) {
		return EncodeMessage(key, a, extra)
	}
}

// DecodeMessage splits an encoded message into its key and arguments. A message
// without delimiter is a plain key with no arguments.
func DecodeMessage(msg string) (string, map[string]any, error) {
	key, blob, found := strings.Cut(msg, MessageDelimiter)
	args := map[string]any{}
	if !found || blob == "" {
		return key, args, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		return key, nil, fmt.Errorf("decode message arguments for %q: %w", key, err)
	}
	// payloads other than objects carry no named arguments
	if obj, ok := decoded.(map[string]any); ok {
		args = obj
	}

	return key, args, nil
}
