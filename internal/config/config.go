// Package config loads churnguard settings from defaults, .env files,
// CHURNGUARD_* environment variables and command-line overrides, in
// increasing order of precedence.
package config

import "time"

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CHURNGUARD_"

// Config is the complete runtime configuration.
type Config struct {
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// ArtifactsConfig locates the fitted classifier and encoders.
//
// $CHURNGUARD_ARTIFACTS_MODEL_PATH, $CHURNGUARD_ARTIFACTS_ENCODERS_PATH
type ArtifactsConfig struct {
	ModelPath    string `koanf:"model_path"    validate:"required"`
	EncodersPath string `koanf:"encoders_path" validate:"required"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"             validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Mode            string        `koanf:"mode"             validate:"oneof=debug release test"`
}

// LogConfig selects level and output format.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `koanf:"json"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"startswith=/"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			ModelPath:    "artifacts/model.json",
			EncodersPath: "artifacts/encoders.json",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Mode:            "release",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
