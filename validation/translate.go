package validation

import (
	"context"
	"errors"

	"github.com/pitabwire/util"

	"github.com/pitabwire/polyglot/localization"
)

// TranslateError translates the details of a ValidationException found in err
// using the localization context located from env. err is returned as is when
// it carries no exception or no context can be located; translation failures
// from the backend are returned instead of err.
func TranslateError(ctx context.Context, env localization.Envelope, err error) error {
	var exc *localization.ValidationException
	if !errors.As(err, &exc) {
		return err
	}

	lc, locateErr := localization.Locate(env)
	if locateErr != nil {
		util.Log(ctx).WithError(locateErr).Warn("TranslateError -- details left untranslated")
		return err
	}

	if translateErr := exc.Translate(ctx, lc); translateErr != nil {
		return translateErr
	}
	return err
}

// Check validates value with v and returns a ValidationException listing the
// failures, nil when value is valid.
func Check(ctx context.Context, v localization.Validator, value any) error {
	raw, err := v.Validate(ctx, value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return localization.ValidationErrorFactory(raw)
}
