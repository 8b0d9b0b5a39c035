package config

import (
	"os"
	"strings"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Options tunes a single Load call.
type Options struct {
	// EnvFiles are .env files merged under the process environment.
	// Missing files are an error.
	EnvFiles []string
	// Overrides are koanf paths (e.g. "server.port") set last.
	Overrides map[string]any
	// Environ replaces os.Environ; used by tests.
	Environ func() []string
}

// Load builds a Config from defaults, .env files, the environment and
// overrides, then validates it.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	environ, err := mergedEnviron(opts)
	if err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
		EnvironFunc:   func() []string { return environ },
	}), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, errors.Wrapf(err, "failed to set override %s", key)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags on cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration cannot be nil")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	return nil
}

// mergedEnviron returns the environment with .env entries appended for
// keys the environment does not already define.
func mergedEnviron(opts Options) ([]string, error) {
	base := os.Environ
	if opts.Environ != nil {
		base = opts.Environ
	}
	environ := base()
	if len(opts.EnvFiles) == 0 {
		return environ, nil
	}

	fromFiles, err := godotenv.Read(opts.EnvFiles...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read .env files")
	}
	present := make(map[string]struct{}, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i > 0 {
			present[kv[:i]] = struct{}{}
		}
	}
	for key, value := range fromFiles {
		if _, ok := present[key]; !ok {
			environ = append(environ, key+"="+value)
		}
	}
	return environ, nil
}

// transformEnv maps CHURNGUARD_SERVER_READ_TIMEOUT to server.read_timeout.
func transformEnv(key, value string) (string, any) {
	return transformEnvKey(strings.TrimPrefix(key, EnvPrefix)), value
}

// transformEnvKey converts an unprefixed variable name to a koanf path:
// the first segment is the section, the rest is the field name.
func transformEnvKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '_'
	})
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + "." + strings.Join(parts[1:], "_")
	}
}
