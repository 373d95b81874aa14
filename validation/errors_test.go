package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pitabwire/polyglot/localization"
)

func sampleException() *localization.ValidationException {
	return localization.ToValidationException([]*localization.ErrorNode{
		{
			Property:    "email",
			Children:    []*localization.ErrorNode{},
			Constraints: map[string]string{"required": "validation.required"},
		},
		{
			Property: "address",
			Children: []*localization.ErrorNode{
				{
					Property:    "city",
					Children:    []*localization.ErrorNode{},
					Constraints: map[string]string{"required": "validation.required"},
				},
			},
			Constraints: map[string]string{},
		},
	})
}

func TestDetailsToStruct(t *testing.T) {
	list, err := DetailsToStruct(sampleException().Details)
	require.NoError(t, err)

	values := list.AsSlice()
	require.Len(t, values, 2)

	first, ok := values[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "email", first["property"])
	assert.Equal(t, map[string]any{"required": "validation.required"}, first["constraints"])

	second, ok := values[1].(map[string]any)
	require.True(t, ok)
	children, ok := second["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 1)
	assert.Equal(t, "city", children[0].(map[string]any)["property"])
}

func TestToGrpcError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode codes.Code
		details  bool
	}{
		{name: "validation exception", err: sampleException(), wantCode: codes.InvalidArgument, details: true},
		{name: "wrapped exception", err: fmt.Errorf("signup: %w", sampleException()), wantCode: codes.InvalidArgument, details: true},
		{name: "unsupported kind", err: localization.ErrUnsupportedKind, wantCode: codes.Internal},
		{name: "context unavailable", err: localization.ErrContextUnavailable, wantCode: codes.Internal},
		{name: "other error", err: errors.New("boom"), wantCode: codes.Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, ok := status.FromError(ToGrpcError(tc.err))
			if tc.wantCode == codes.Unknown {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.wantCode, st.Code())

			if tc.details {
				require.Len(t, st.Details(), 1)
				_, isList := st.Details()[0].(*structpb.ListValue)
				assert.True(t, isList)
			}
		})
	}

	assert.NoError(t, ToGrpcError(nil))
}

func TestToConnectError(t *testing.T) {
	var connectErr *connect.Error

	err := ToConnectError(sampleException())
	require.ErrorAs(t, err, &connectErr)
	assert.Equal(t, connect.CodeInvalidArgument, connectErr.Code())
	require.Len(t, connectErr.Details(), 1)

	detail, err := connectErr.Details()[0].Value()
	require.NoError(t, err)
	list, ok := detail.(*structpb.ListValue)
	require.True(t, ok)
	assert.Len(t, list.GetValues(), 2)

	err = ToConnectError(localization.ErrContextUnavailable)
	require.ErrorAs(t, err, &connectErr)
	assert.Equal(t, connect.CodeInternal, connectErr.Code())

	plain := errors.New("boom")
	assert.Same(t, plain, ToConnectError(plain))
	assert.NoError(t, ToConnectError(nil))
}

func TestToHTTPStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, ToHTTPStatusCode(nil))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatusCode(sampleException()))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatusCode(errors.New("boom")))
}

func TestWriteHTTPError(t *testing.T) {
	manager, err := localization.NewManager(
		localization.WithTranslationsFolder("../localization/test_data"),
		localization.WithLanguages("en", "sw"),
	)
	require.NoError(t, err)

	t.Run("translated with attached context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		req = req.WithContext(localization.Attach(req.Context(), []string{"sw"}, manager))
		rec := httptest.NewRecorder()

		WriteHTTPError(rec, req, sampleException())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body HTTPErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusBadRequest, body.StatusCode)
		assert.Equal(t, "validation failed: email, address", body.Message)
		require.Len(t, body.Errors, 2)
		assert.Equal(t, "email inahitajika", body.Errors[0].Constraints["required"])
		assert.Equal(t, "city inahitajika", body.Errors[1].Children[0].Constraints["required"])
	})

	t.Run("untranslated without context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		rec := httptest.NewRecorder()

		WriteHTTPError(rec, req, sampleException())

		var body HTTPErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusBadRequest, body.StatusCode)
		assert.Equal(t, "validation.required", body.Errors[0].Constraints["required"])
	})

	t.Run("other errors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		WriteHTTPError(rec, req, errors.New("database down"))

		var body HTTPErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusInternalServerError, body.StatusCode)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Message)
		assert.Empty(t, body.Errors)
	})
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, localization.TranslateOptions) (string, error) {
	return "", errors.New("backend offline")
}

func (failingTranslator) Validate(context.Context, any, localization.TranslateOptions) ([]*localization.ErrorNode, error) {
	return nil, nil
}

func TestTranslateError(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, TranslateError(context.Background(), localization.NewHTTPEnvelope(nil, nil), plain))

	exc := sampleException()
	err := TranslateError(context.Background(), localization.NewEnvelope("websocket"), exc)
	assert.Same(t, exc, err)
	assert.Equal(t, "validation.required", exc.Details[0].Constraints["required"])

	ctx := localization.Attach(context.Background(), []string{"en"}, failingTranslator{})
	err = TranslateError(ctx, localization.NewRPCEnvelope(localization.RPCFromContext(ctx)), sampleException())
	require.Error(t, err)
	assert.EqualError(t, err, "backend offline")
}
