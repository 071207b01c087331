/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Arenaboard Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the dashboard configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the YAML config
// file, ARENABOARD_ environment variables and explicitly set command-line flags.
// Nested keys use "__" in environment variables, e.g. ARENABOARD_SOURCE__TYPE.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/arenaboard/datasources"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "ARENABOARD_"
	// DefaultFile is looked up in the working directory when no file is given.
	DefaultFile = "arenaboard.yaml"
)

// Config is the full dashboard configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Auth   AuthConfig   `koanf:"auth"`
	Source SourceConfig `koanf:"source"`
	Log    LogConfig    `koanf:"log"`
	Table  TableConfig  `koanf:"table"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	Title             string        `koanf:"title" validate:"required"`
	SessionSecret     string        `koanf:"session_secret" validate:"omitempty,min=32"`
	SecureCookies     bool          `koanf:"secure_cookies"`
	CacheSize         int           `koanf:"cache_size" validate:"gte=1"`
	CacheTTL          time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// AuthConfig configures token verification.
type AuthConfig struct {
	// TokenSecret is the HS256 key tokens are signed with. Serving requires it
	// unless the source is "api", whose platform checks every token.
	TokenSecret string `koanf:"token_secret"`
}

// SourceConfig selects the data source.
type SourceConfig struct {
	Type    string        `koanf:"type" validate:"required,oneof=memory sqlite api"`
	Path    string        `koanf:"path" validate:"required_if=Type sqlite"`
	URL     string        `koanf:"url" validate:"required_if=Type api,omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
	Retries int           `koanf:"retries" validate:"gte=0,lte=10"`
}

// Datasource converts the section for datasources.Manager.Open.
func (s SourceConfig) Datasource() datasources.Config {
	return datasources.Config{
		Type:    s.Type,
		Path:    s.Path,
		URL:     s.URL,
		Timeout: s.Timeout,
		Retries: s.Retries,
	}
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// TableConfig holds table page defaults.
type TableConfig struct {
	DefaultLimit int `koanf:"default_limit" validate:"gte=0"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":                ":8080",
		"server.title":               "Arena Admin",
		"server.session_secret":      "",
		"server.secure_cookies":      false,
		"server.cache_size":          256,
		"server.cache_ttl":           "30s",
		"server.read_header_timeout": "10s",
		"server.shutdown_timeout":    "5s",
		"auth.token_secret":          "",
		"source.type":                "memory",
		"source.path":                "arenaboard.db",
		"source.url":                 "",
		"source.timeout":             "10s",
		"source.retries":             3,
		"log.level":                  "info",
		"log.format":                 "text",
		"table.default_limit":        25,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"title":        "server.title",
	"source":       "source.type",
	"db":           "source.path",
	"api-url":      "source.url",
	"token-secret": "auth.token_secret",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// Load reads the configuration. path may be empty, in which case DefaultFile is
// used if it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// ARENABOARD_SOURCE__TYPE -> source.type
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
