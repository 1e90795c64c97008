// Package config loads the assistant configuration. Values come from an
// optional YAML file (validated against an embedded JSON schema) with
// environment variables taking precedence, so containers can run without any
// file at all.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/3madMostafa/Alta-Video-Assistant/common/environment"
)

//go:embed schema.json
var schemaJSON string

// Config is the full assistant configuration.
type Config struct {
	Alta     AltaConfig   `yaml:"alta"`
	Matrix   MatrixConfig `yaml:"matrix"`
	Database DBConfig     `yaml:"database"`
	HTTP     HTTPConfig   `yaml:"http"`

	// AllowedSenders restricts who the assistant answers. Empty means every
	// sender in the configured rooms is allowed.
	AllowedSenders []string `yaml:"allowed_senders"`
}

// AltaConfig configures the access-control API client.
type AltaConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIToken    string   `yaml:"api_token"`
	Timeout     Duration `yaml:"timeout"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// Duration is a time.Duration that decodes from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MatrixConfig configures the chat surface.
type MatrixConfig struct {
	Homeserver  string   `yaml:"homeserver"`
	UserID      string   `yaml:"user_id"`
	AccessToken string   `yaml:"access_token"`
	Rooms       []string `yaml:"rooms"`
}

// DBConfig configures the SQLite store.
type DBConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig configures the health/status server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the configuration: the YAML file named by ASSISTANT_CONFIG (if
// set and present), then environment variable overrides, then validation.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("ASSISTANT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := checkRequired(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML config document and validates it against the embedded
// schema. It is the canonical entry point for loading file-based config.
func Parse(data []byte) (*Config, error) {
	// Validate the raw document first so schema errors name the offending
	// field instead of surfacing as type mismatches.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	if raw != nil {
		if err := compiledSchema().Validate(normalize(raw)); err != nil {
			return nil, fmt.Errorf("config validate: %w", err)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	return &cfg, nil
}

func compiledSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("config: add embedded schema: %v", err))
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("config: compile embedded schema: %v", err))
	}
	return schema
}

// normalize round-trips YAML-decoded values through JSON so the schema
// validator sees the value shapes it expects (float64 numbers, string keys).
func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// applyEnv overlays environment variables onto the file config. Env always
// wins.
func applyEnv(cfg *Config) {
	cfg.Alta.BaseURL = environment.StringOr("ALTA_BASE_URL", cfg.Alta.BaseURL)
	cfg.Alta.APIToken = environment.StringOr("ALTA_API_TOKEN", cfg.Alta.APIToken)
	cfg.Alta.Timeout = Duration(environment.DurationOr("ALTA_TIMEOUT", time.Duration(cfg.Alta.Timeout)))
	cfg.Alta.MaxAttempts = environment.IntOr("ALTA_MAX_ATTEMPTS", cfg.Alta.MaxAttempts)

	cfg.Matrix.Homeserver = environment.StringOr("MATRIX_HOMESERVER", cfg.Matrix.Homeserver)
	cfg.Matrix.UserID = environment.StringOr("MATRIX_USER_ID", cfg.Matrix.UserID)
	cfg.Matrix.AccessToken = environment.StringOr("MATRIX_ACCESS_TOKEN", cfg.Matrix.AccessToken)
	cfg.Matrix.Rooms = environment.StringSliceOr("MATRIX_ROOMS", cfg.Matrix.Rooms)

	cfg.AllowedSenders = environment.StringSliceOr("ALLOWED_SENDERS", cfg.AllowedSenders)
	cfg.Database.Path = environment.StringOr("DATABASE_PATH", cfg.Database.Path)
	cfg.HTTP.Addr = environment.StringOr("HTTP_ADDR", cfg.HTTP.Addr)
}

func applyDefaults(cfg *Config) {
	if cfg.Alta.Timeout <= 0 {
		cfg.Alta.Timeout = Duration(30 * time.Second)
	}
	if cfg.Alta.MaxAttempts <= 0 {
		cfg.Alta.MaxAttempts = 3
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "assistant.db"
	}
	// HTTP.Addr has no default: an empty address leaves the health server
	// off entirely.
}

func checkRequired(cfg *Config) error {
	missing := []string{}
	if cfg.Alta.BaseURL == "" {
		missing = append(missing, "alta.base_url (ALTA_BASE_URL)")
	}
	if cfg.Alta.APIToken == "" {
		missing = append(missing, "alta.api_token (ALTA_API_TOKEN)")
	}
	if cfg.Matrix.Homeserver == "" {
		missing = append(missing, "matrix.homeserver (MATRIX_HOMESERVER)")
	}
	if cfg.Matrix.UserID == "" {
		missing = append(missing, "matrix.user_id (MATRIX_USER_ID)")
	}
	if cfg.Matrix.AccessToken == "" {
		missing = append(missing, "matrix.access_token (MATRIX_ACCESS_TOKEN)")
	}
	if len(cfg.Matrix.Rooms) == 0 {
		missing = append(missing, "matrix.rooms (MATRIX_ROOMS)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsAllowedSender reports whether the sender may talk to the assistant.
func (c *Config) IsAllowedSender(senderID string) bool {
	if len(c.AllowedSenders) == 0 {
		return true
	}
	for _, allowed := range c.AllowedSenders {
		if allowed == senderID {
			return true
		}
	}
	return false
}
