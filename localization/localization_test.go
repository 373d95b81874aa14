package localization_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/metadata"

	"github.com/pitabwire/polyglot/localization"
)

// LocalizationTestSuite covers the go-i18n backed manager and the context helpers.
type LocalizationTestSuite struct {
	suite.Suite

	manager localization.Manager
}

func TestLocalizationSuite(t *testing.T) {
	suite.Run(t, &LocalizationTestSuite{})
}

func (s *LocalizationTestSuite) SetupSuite() {
	m, err := localization.NewManager(
		localization.WithTranslationsFolder("test_data"),
		localization.WithLanguages("en", "sw", "fr"),
	)
	s.Require().NoError(err)
	s.manager = m
}

// TestTranslations tests basic translation functionality.
func (s *LocalizationTestSuite) TestTranslations() {
	testCases := []struct {
		name         string
		messageID    string
		templateData map[string]any
		pluralCount  int
		expectedEn   string
		expectedSw   string
	}{
		{
			name:      "basic translation with template data",
			messageID: "Example",
			templateData: map[string]any{
				"Name": "Air",
			},
			pluralCount: 1,
			expectedEn:  "Air has nothing",
			expectedSw:  "Air haina chochote",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			bundle := s.manager.Bundle()

			enLocalizer := i18n.NewLocalizer(bundle, "en", "sw")
			englishVersion, err := enLocalizer.Localize(&i18n.LocalizeConfig{
				MessageID:    tc.messageID,
				TemplateData: tc.templateData,
				PluralCount:  tc.pluralCount,
			})
			s.Require().NoError(err, "English localization should succeed")
			s.Require().Equal(tc.expectedEn, englishVersion)

			swLocalizer := i18n.NewLocalizer(bundle, "sw")
			swVersion, err := swLocalizer.Localize(&i18n.LocalizeConfig{
				MessageID:    tc.messageID,
				TemplateData: tc.templateData,
				PluralCount:  tc.pluralCount,
			})
			s.Require().NoError(err, "Swahili localization should succeed")
			s.Require().Equal(tc.expectedSw, swVersion)
		})
	}
}

func (s *LocalizationTestSuite) TestManagerTranslate() {
	testCases := []struct {
		name     string
		key      string
		opts     localization.TranslateOptions
		expected string
	}{
		{
			name:     "english template",
			key:      "Greeting",
			opts:     localization.TranslateOptions{Language: "en", Args: map[string]any{"Name": "Ada"}},
			expected: "Hello Ada",
		},
		{
			name:     "yaml loaded french",
			key:      "Greeting",
			opts:     localization.TranslateOptions{Language: "fr", Args: map[string]any{"Name": "Ada"}},
			expected: "Bonjour Ada",
		},
		{
			name:     "plural form one",
			key:      "Example",
			opts:     localization.TranslateOptions{Language: "en", Args: map[string]any{"Name": "Air"}, PluralCount: 1},
			expected: "Air has nothing",
		},
		{
			name:     "plural form other",
			key:      "Example",
			opts:     localization.TranslateOptions{Language: "en", Args: map[string]any{"Name": "Men"}, PluralCount: 2},
			expected: "Men have nothing",
		},
		{
			name:     "unknown language falls back to default",
			key:      "Greeting",
			opts:     localization.TranslateOptions{Language: "de", Args: map[string]any{"Name": "Ada"}},
			expected: "Hello Ada",
		},
		{
			name:     "missing key resolves to itself",
			key:      "must not be empty",
			opts:     localization.TranslateOptions{Language: "en"},
			expected: "must not be empty",
		},
		{
			name:     "missing key with default message",
			key:      "Missing",
			opts:     localization.TranslateOptions{Language: "en", DefaultMessage: "fallback text"},
			expected: "fallback text",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			result, err := s.manager.Translate(context.Background(), tc.key, tc.opts)
			s.Require().NoError(err)
			s.Equal(tc.expected, result)
		})
	}
}

func (s *LocalizationTestSuite) TestNegotiate() {
	testCases := []struct {
		name       string
		candidates []string
		expected   string
	}{
		{name: "exact match", candidates: []string{"sw"}, expected: "sw"},
		{name: "regional variant", candidates: []string{"fr-CA", "en"}, expected: "fr"},
		{name: "unsupported", candidates: []string{"ja"}, expected: "en"},
		{name: "invalid entries skipped", candidates: []string{"!!", "sw"}, expected: "sw"},
		{name: "no candidates", candidates: nil, expected: "en"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, s.manager.Negotiate(tc.candidates...))
		})
	}

	s.ElementsMatch([]string{"en", "sw", "fr"}, s.manager.Languages())
	s.Equal("en", s.manager.DefaultLanguage())
}

func (s *LocalizationTestSuite) TestValidateWithoutValidator() {
	_, err := s.manager.Validate(context.Background(), struct{}{}, localization.TranslateOptions{})
	s.Require().ErrorIs(err, localization.ErrNoValidator)
}

func (s *LocalizationTestSuite) TestNewManagerErrors() {
	_, err := localization.NewManager(
		localization.WithTranslationsFolder("test_data"),
		localization.WithLanguages("xx"),
	)
	s.Require().Error(err)
	s.Contains(err.Error(), "xx")

	_, err = localization.NewManager(localization.WithDefaultLanguage("not a tag!"))
	s.Require().Error(err)
}

// TestLanguageContextManagement tests language context management.
func (s *LocalizationTestSuite) TestLanguageContextManagement() {
	ctx := context.Background()
	s.Nil(localization.FromContext(ctx))
	s.Nil(localization.BackendFromContext(ctx))

	ctx = localization.Attach(ctx, []string{"sw"}, s.manager)
	s.Equal([]string{"sw"}, localization.FromContext(ctx))
	s.Equal(s.manager, localization.BackendFromContext(ctx))

	lc, err := localization.LocateFromContext(ctx)
	s.Require().NoError(err)

	result, err := lc.T(ctx, "Greeting", localization.WithArgs(map[string]any{"Name": "Juma"}))
	s.Require().NoError(err)
	s.Equal("Habari Juma", result)
}

// TestLanguageMapManagement tests language map management.
func (s *LocalizationTestSuite) TestLanguageMapManagement() {
	testMap := localization.ToMap(map[string]string{"world": "data"}, []string{"en", "sw"})
	s.Equal("en,sw", testMap["lang"])
	s.Equal([]string{"en", "sw"}, localization.FromMap(testMap))
	s.Nil(localization.FromMap(map[string]string{}))
}

func (s *LocalizationTestSuite) TestExtractLanguageFromHTTPRequest() {
	testCases := []struct {
		name       string
		target     string
		acceptLang string
		expected   []string
	}{
		{
			name:       "accept-language ordered by quality",
			target:     "/test",
			acceptLang: "en;q=0.5,sw",
			expected:   []string{"sw", "en"},
		},
		{
			name:       "query parameter first",
			target:     "/test?lang=fr",
			acceptLang: "en-US,en;q=0.9",
			expected:   []string{"fr", "en-US", "en"},
		},
		{
			name:     "nothing supplied",
			target:   "/test",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.acceptLang != "" {
				req.Header.Set("Accept-Language", tc.acceptLang)
			}

			result := localization.ExtractLanguageFromHTTPRequest(req)
			if tc.expected == nil {
				s.Empty(result)
				return
			}
			s.Equal(tc.expected, result)
		})
	}
}

// TestLanguageFromGrpcRequest tests language extraction from gRPC requests.
func (s *LocalizationTestSuite) TestLanguageFromGrpcRequest() {
	testCases := []struct {
		name     string
		md       map[string]string
		expected []string
	}{
		{
			name:     "accept-language metadata",
			md:       map[string]string{"accept-language": "en"},
			expected: []string{"en"},
		},
		{
			name:     "lang metadata",
			md:       map[string]string{"lang": "sw"},
			expected: []string{"sw"},
		},
		{
			name:     "no language metadata",
			md:       map[string]string{"other": "x"},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			ctx := metadata.NewIncomingContext(context.Background(), metadata.New(tc.md))
			s.Equal(tc.expected, localization.ExtractLanguageFromGrpcRequest(ctx))
		})
	}

	s.Equal([]string{}, localization.ExtractLanguageFromGrpcRequest(context.Background()))
}
