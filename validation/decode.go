package validation

import (
	"encoding/json"
	"io"

	"github.com/pitabwire/polyglot/localization"
)

// BodyProperty names the node reporting an undecodable request body.
const BodyProperty = "body"

// DecodeJSON decodes body into v. A body that is not valid JSON for v is
// reported as a ValidationException on BodyProperty under the "json" rule.
func DecodeJSON(body io.Reader, v any) error {
	decodeErr := json.NewDecoder(body).Decode(v)
	if decodeErr == nil {
		return nil
	}

	msg, err := localization.EncodeMessage(DefaultKeyPrefix+"json", localization.ConstraintArguments{},
		map[string]any{"message": decodeErr.Error()})
	if err != nil {
		return err
	}

	return localization.ValidationErrorFactory([]*localization.ValidationError{
		{Property: BodyProperty, Constraints: map[string]string{"json": msg}},
	})
}
