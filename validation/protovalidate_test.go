package validation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/pitabwire/polyglot/localization"
)

func TestFromViolations(t *testing.T) {
	raw, err := fromViolations([]violation{
		{path: []string{"email"}, rule: "string.email", message: "value must be a valid email address", value: "x|y"},
		{path: []string{"address", "city"}, rule: "string.min_len", value: "", ruleValue: uint64(2)},
		{path: []string{"address", "zip"}, rule: "required"},
		{rule: "message.expression", message: "name and surname differ"},
	}, DefaultKeyPrefix)
	require.NoError(t, err)
	require.Len(t, raw, 3)

	assert.Equal(t, "email", raw[0].Property)
	key, args, err := localization.DecodeMessage(raw[0].Constraints["string.email"])
	require.NoError(t, err)
	assert.Equal(t, "validation.string.email", key)
	assert.Equal(t, "xy", args["value"])
	assert.Equal(t, "value must be a valid email address", args["message"])
	assert.Equal(t, []any{}, args["constraints"])

	require.Len(t, raw[1].Children, 2)
	assert.Equal(t, "city", raw[1].Children[0].Property)
	assert.Equal(t, "zip", raw[1].Children[1].Property)
	_, args, err = localization.DecodeMessage(raw[1].Children[0].Constraints["string.min_len"])
	require.NoError(t, err)
	assert.Equal(t, []any{float64(2)}, args["constraints"])

	assert.Empty(t, raw[2].Property)
	assert.Contains(t, raw[2].Constraints, "message.expression")
}

func TestFromViolationsTranslates(t *testing.T) {
	manager, err := localization.NewManager(
		localization.WithTranslationsFolder("../localization/test_data"),
		localization.WithLanguages("en"),
	)
	require.NoError(t, err)

	raw, err := fromViolations([]violation{
		{path: []string{"email"}, rule: "string.email", value: "juma"},
	}, DefaultKeyPrefix)
	require.NoError(t, err)

	exc := localization.ValidationErrorFactory(raw)
	require.NoError(t, exc.Translate(context.Background(), localization.NewContext("en", manager)))
	assert.Equal(t, "email must be a valid email address", exc.Details[0].Constraints["string.email"])
}

func TestFromViolationsNonFinite(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  any
	}{
		{name: "double infinity", value: math.Inf(1), want: "+Inf"},
		{name: "double nan", value: math.NaN(), want: "NaN"},
		{name: "float negative infinity", value: float32(math.Inf(-1)), want: "-Inf"},
		{name: "finite double", value: 2.5, want: 2.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := fromViolations([]violation{
				{path: []string{"score"}, rule: "double.finite", value: tc.value},
			}, DefaultKeyPrefix)
			require.NoError(t, err)
			require.Len(t, raw, 1)

			_, args, err := localization.DecodeMessage(raw[0].Constraints["double.finite"])
			require.NoError(t, err)
			assert.Equal(t, tc.want, args["value"])
		})
	}
}

func TestFromProtoValidateIgnoresOtherErrors(t *testing.T) {
	raw, ok := FromProtoValidate(errors.New("boom"), DefaultKeyPrefix)
	assert.False(t, ok)
	assert.Nil(t, raw)
}

func TestProtoValidator(t *testing.T) {
	v := NewProtoValidator(nil, "")

	raw, err := v.Validate(context.Background(), wrapperspb.String("no rules"))
	require.NoError(t, err)
	assert.Empty(t, raw)

	_, err = v.Validate(context.Background(), "not a message")
	require.Error(t, err)
}

func TestJSONSafe(t *testing.T) {
	assert.True(t, jsonSafe(nil))
	assert.True(t, jsonSafe("text"))
	assert.True(t, jsonSafe(int64(3)))
	assert.True(t, jsonSafe(1.5))
	assert.False(t, jsonSafe(math.NaN()))
	assert.False(t, jsonSafe(float32(math.Inf(1))))
	assert.False(t, jsonSafe(struct{}{}))
	assert.False(t, jsonSafe(map[string]any{}))
}
