package config

import (
	"context"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pitabwire/util"

	"github.com/pitabwire/polyglot/localization"
)

type contextKey string

func (c contextKey) String() string {
	return "polyglot/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

// ToContext adds service configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts service configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

type ConfigurationDefault struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogFormat     string `envDefault:"info"                      env:"LOG_FORMAT"      yaml:"log_format"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	LogShowStackTrace bool `envDefault:"false" env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	ServiceName        string `envDefault:"" env:"SERVICE_NAME"        yaml:"service_name"`
	ServiceEnvironment string `envDefault:"" env:"SERVICE_ENVIRONMENT" yaml:"service_environment"`
	ServiceVersion     string `envDefault:"" env:"SERVICE_VERSION"     yaml:"service_version"`

	OpenTelemetryDisable    bool    `envDefault:"false" env:"OPENTELEMETRY_DISABLE"        yaml:"opentelemetry_disable"`
	OpenTelemetryTraceRatio float64 `envDefault:"0.1"   env:"OPENTELEMETRY_TRACE_ID_RATIO" yaml:"opentelemetry_trace_id_ratio"`

	HTTPServerPort string `envDefault:":8080"  env:"HTTP_PORT" yaml:"http_server_port"`
	GrpcServerPort string `envDefault:":50051" env:"GRPC_PORT" yaml:"grpc_server_port"`

	LocalizationDefaultLanguage    string   `envDefault:"en"           env:"LOCALIZATION_DEFAULT_LANGUAGE"    yaml:"localization_default_language"`
	LocalizationTranslationsFolder string   `envDefault:"localization" env:"LOCALIZATION_TRANSLATIONS_FOLDER" yaml:"localization_translations_folder"`
	LocalizationLanguages          []string `envDefault:"en"           env:"LOCALIZATION_LANGUAGES"           yaml:"localization_languages"`
	LocalizationQueryKeys          []string `envDefault:"lang"         env:"LOCALIZATION_QUERY_KEYS"          yaml:"localization_query_keys"`
	LocalizationHeaderKeys         []string `envDefault:""             env:"LOCALIZATION_HEADER_KEYS"         yaml:"localization_header_keys"`
	LocalizationCookieNames        []string `envDefault:""             env:"LOCALIZATION_COOKIE_NAMES"        yaml:"localization_cookie_names"`
}

type ConfigurationService interface {
	Name() string
	Environment() string
	Version() string
}

var _ ConfigurationService = new(ConfigurationDefault)

func (c *ConfigurationDefault) Name() string {
	return c.ServiceName
}
func (c *ConfigurationDefault) Environment() string {
	return c.ServiceEnvironment
}
func (c *ConfigurationDefault) Version() string {
	return c.ServiceVersion
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingFormat() string
	LoggingTimeFormat() string
	LoggingShowStackTrace() bool
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingFormat() string {
	return c.LogFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *ConfigurationDefault) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

type ConfigurationTelemetry interface {
	DisableOpenTelemetry() bool
	SamplingRatio() float64
}

var _ ConfigurationTelemetry = new(ConfigurationDefault)

func (c *ConfigurationDefault) DisableOpenTelemetry() bool {
	return c.OpenTelemetryDisable
}

func (c *ConfigurationDefault) SamplingRatio() float64 {
	return c.OpenTelemetryTraceRatio
}

type ConfigurationPorts interface {
	HTTPPort() string
	GrpcPort() string
}

var _ ConfigurationPorts = new(ConfigurationDefault)

func (c *ConfigurationDefault) HTTPPort() string {
	return normalisePort(c.HTTPServerPort, ":8080")
}

func (c *ConfigurationDefault) GrpcPort() string {
	return normalisePort(c.GrpcServerPort, ":50051")
}

func normalisePort(port, fallback string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return fallback
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

type ConfigurationLocalization interface {
	DefaultLanguage() string
	TranslationsFolder() string
	Languages() []string
	LanguageResolvers() []localization.Resolver
}

var _ ConfigurationLocalization = new(ConfigurationDefault)

func (c *ConfigurationDefault) DefaultLanguage() string {
	return c.LocalizationDefaultLanguage
}

func (c *ConfigurationDefault) TranslationsFolder() string {
	return c.LocalizationTranslationsFolder
}

func (c *ConfigurationDefault) Languages() []string {
	return nonEmpty(c.LocalizationLanguages)
}

// LanguageResolvers builds the resolver chain: query keys, header keys, cookies, then Accept-Language.
func (c *ConfigurationDefault) LanguageResolvers() []localization.Resolver {
	var resolvers []localization.Resolver
	if keys := nonEmpty(c.LocalizationQueryKeys); len(keys) > 0 {
		resolvers = append(resolvers, localization.QueryResolver(keys...))
	}
	if keys := nonEmpty(c.LocalizationHeaderKeys); len(keys) > 0 {
		resolvers = append(resolvers, localization.HeaderResolver(keys...))
	}
	if names := nonEmpty(c.LocalizationCookieNames); len(names) > 0 {
		resolvers = append(resolvers, localization.CookieResolver(names...))
	}
	return append(resolvers, localization.AcceptLanguageResolver())
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NewManager loads the translation backend described by cfg.
func NewManager(cfg ConfigurationLocalization, opts ...localization.ManagerOption) (localization.Manager, error) {
	return localization.NewManager(append([]localization.ManagerOption{
		localization.WithTranslationsFolder(cfg.TranslationsFolder()),
		localization.WithDefaultLanguage(cfg.DefaultLanguage()),
		localization.WithLanguages(cfg.Languages()...),
	}, opts...)...)
}

// NewLogger builds a logger following the logging settings of cfg and stores it on ctx.
func NewLogger(ctx context.Context, cfg ConfigurationLogLevel, opts ...util.Option) (context.Context, *util.LogEntry) {
	if cfg != nil {
		logLevel, err := util.ParseLevel(cfg.LoggingLevel())
		if err == nil {
			opts = append(opts, util.WithLogLevel(logLevel))
		}
		opts = append(opts,
			util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
			util.WithLogNoColor(!cfg.LoggingColored()))
		if cfg.LoggingShowStackTrace() {
			opts = append(opts, util.WithLogStackTrace())
		}
	}

	log := util.NewLogger(ctx, opts...)
	return util.ContextWithLogger(ctx, log), log
}
