package localization

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/pitabwire/polyglot/telemetry"
)

const (
	// InstrumentationName names the spans and measurements of the manager,
	// pass telemetry.Views(InstrumentationName) to the meter provider.
	InstrumentationName = "github.com/pitabwire/polyglot/localization"

	defaultTranslationsFolder = "localization"
	defaultLanguage           = "en"
)

// ErrNoValidator is returned by Manager.Validate when no Validator was configured.
var ErrNoValidator = errors.New("no validator configured")

// messageFileExtensions are tried in order for every configured language.
var messageFileExtensions = []string{"toml", "yaml", "yml", "json"}

// Manager is the go-i18n backed Backend.
type Manager interface {
	Backend
	Negotiator
	Bundle() *i18n.Bundle
	DefaultLanguage() string
	Languages() []string
}

type managerOptions struct {
	folder          string
	fsys            fs.FS
	languages       []string
	defaultLanguage string
	validator       Validator
}

// ManagerOption configures NewManager.
type ManagerOption func(*managerOptions)

// WithTranslationsFolder loads message files from folder on disk, "localization" by default.
func WithTranslationsFolder(folder string) ManagerOption {
	return func(o *managerOptions) {
		o.folder = folder
	}
}

// WithMessageFS loads message files from fsys instead of the disk, e.g. an embed.FS.
func WithMessageFS(fsys fs.FS) ManagerOption {
	return func(o *managerOptions) {
		o.fsys = fsys
	}
}

// WithLanguages lists the languages to load, one messages.<lang>.<ext> file each.
func WithLanguages(languages ...string) ManagerOption {
	return func(o *managerOptions) {
		o.languages = append(o.languages, languages...)
	}
}

// WithDefaultLanguage sets the fallback language, "en" by default.
func WithDefaultLanguage(lang string) ManagerOption {
	return func(o *managerOptions) {
		o.defaultLanguage = lang
	}
}

// WithValidator sets the validator used by Manager.Validate.
func WithValidator(v Validator) ManagerOption {
	return func(o *managerOptions) {
		o.validator = v
	}
}

type managerImpl struct {
	bundle     *i18n.Bundle
	defaultTag language.Tag
	tags       []language.Tag
	matcher    language.Matcher
	validator  Validator
	tracer     telemetry.Tracer
	missing    metric.Int64Counter
}

// NewManager loads the configured language packs into a bundle.
func NewManager(opts ...ManagerOption) (Manager, error) {
	o := managerOptions{
		folder:          defaultTranslationsFolder,
		defaultLanguage: defaultLanguage,
	}
	for _, opt := range opts {
		opt(&o)
	}

	defaultTag, err := language.Parse(o.defaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", o.defaultLanguage, err)
	}

	fsys := o.fsys
	if fsys == nil {
		fsys = os.DirFS(o.folder)
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	tags := []language.Tag{defaultTag}
	for _, lang := range o.languages {
		path, fileErr := findMessageFile(fsys, lang)
		if fileErr != nil {
			return nil, fileErr
		}

		mf, loadErr := bundle.LoadMessageFileFS(fsys, path)
		if loadErr != nil {
			return nil, fmt.Errorf("load message file %s: %w", path, loadErr)
		}
		if mf.Tag != defaultTag {
			tags = append(tags, mf.Tag)
		}
	}

	return &managerImpl{
		bundle:     bundle,
		defaultTag: defaultTag,
		tags:       tags,
		matcher:    language.NewMatcher(tags),
		validator:  o.validator,
		tracer:     telemetry.NewTracer(InstrumentationName),
		missing: telemetry.DimensionlessMeasure(InstrumentationName, "/missing_translations",
			"Count of lookups that fell back to the key or default message."),
	}, nil
}

func findMessageFile(fsys fs.FS, lang string) (string, error) {
	for _, ext := range messageFileExtensions {
		path := fmt.Sprintf("messages.%s.%s", lang, ext)
		if _, err := fs.Stat(fsys, path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no message file found for language %q", lang)
}

// Bundle Access the translation bundle instantiated in the system.
func (m *managerImpl) Bundle() *i18n.Bundle {
	return m.bundle
}

func (m *managerImpl) DefaultLanguage() string {
	return m.defaultTag.String()
}

func (m *managerImpl) Languages() []string {
	languages := make([]string, 0, len(m.tags))
	for _, tag := range m.tags {
		languages = append(languages, tag.String())
	}
	return languages
}

// Negotiate returns the loaded language closest to the candidates, or the default language.
func (m *managerImpl) Negotiate(candidates ...string) string {
	var desired []language.Tag
	for _, c := range candidates {
		tag, err := language.Parse(c)
		if err != nil {
			continue
		}
		desired = append(desired, tag)
	}

	if len(desired) == 0 {
		return m.DefaultLanguage()
	}

	_, idx, confidence := m.matcher.Match(desired...)
	if confidence == language.No {
		return m.DefaultLanguage()
	}
	return m.tags[idx].String()
}

// Translate resolves key in opts.Language falling back to the default language.
// A key without any translation resolves to the default message, or to the key itself.
func (m *managerImpl) Translate(ctx context.Context, key string, opts TranslateOptions) (msg string, err error) {
	ctx, span := m.tracer.Start(ctx, "Translate", trace.WithAttributes(
		attribute.String("localization.key", key),
		telemetry.AttrLanguageKey.String(opts.Language),
	))
	defer func() { m.tracer.End(ctx, span, err) }()

	cfg := &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: opts.Args,
	}
	if opts.PluralCount > 0 {
		cfg.PluralCount = opts.PluralCount
	}
	if opts.DefaultMessage != "" {
		cfg.DefaultMessage = &i18n.Message{ID: key, Other: opts.DefaultMessage}
	}

	localizer := i18n.NewLocalizer(m.bundle, opts.Language, m.DefaultLanguage())
	msg, err = localizer.Localize(cfg)
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) {
			util.Log(ctx).WithField("key", key).WithField("language", opts.Language).
				Debug("Translate -- no translation found, using fallback")
			m.missing.Add(ctx, 1, metric.WithAttributes(telemetry.AttrLanguageKey.String(opts.Language)))
			if msg == "" {
				msg = key
			}
			return msg, nil
		}

		util.Log(ctx).WithError(err).WithField("key", key).Error("Translate -- could not perform translation")
		return "", err
	}

	return msg, nil
}

// Validate runs the configured validator and translates the resulting tree.
func (m *managerImpl) Validate(ctx context.Context, value any, opts TranslateOptions) (nodes []*ErrorNode, err error) {
	if m.validator == nil {
		return nil, ErrNoValidator
	}

	ctx, span := m.tracer.Start(ctx, "Validate", trace.WithAttributes(
		telemetry.AttrLanguageKey.String(opts.Language),
	))
	defer func() { m.tracer.End(ctx, span, err) }()

	raw, err := m.validator.Validate(ctx, value)
	if err != nil {
		return nil, err
	}

	nodes = make([]*ErrorNode, 0, len(raw))
	for _, e := range raw {
		if e != nil {
			nodes = append(nodes, ErrorNodeFromValidationError(e))
		}
	}

	return TranslateTree(ctx, nodes, m, opts)
}
