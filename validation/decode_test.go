package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitabwire/polyglot/localization"
)

func TestDecodeJSON(t *testing.T) {
	manager, err := localization.NewManager(
		localization.WithTranslationsFolder("../localization/test_data"),
		localization.WithLanguages("en", "sw"),
	)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		body       string
		lang       string
		wantStatus int
		want       string
	}{
		{name: "valid body", body: `{"email":"juma@example.com"}`, lang: "en", wantStatus: http.StatusCreated},
		{name: "malformed body", body: `{"email":`, lang: "en", wantStatus: http.StatusBadRequest, want: "body must be valid JSON"},
		{name: "wrong type", body: `{"email":5}`, lang: "sw", wantStatus: http.StatusBadRequest, want: "body lazima iwe JSON sahihi"},
		{name: "empty body", body: "", lang: "en", wantStatus: http.StatusBadRequest, want: "body must be valid JSON"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(tc.body))
			req = req.WithContext(localization.Attach(req.Context(), []string{tc.lang}, manager))
			rec := httptest.NewRecorder()

			var payload struct {
				Email string `json:"email"`
			}
			if decodeErr := DecodeJSON(req.Body, &payload); decodeErr != nil {
				WriteHTTPError(rec, req, decodeErr)
			} else {
				rec.WriteHeader(http.StatusCreated)
			}

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.want != "" {
				assert.Contains(t, rec.Body.String(), tc.want)
			}
		})
	}
}
