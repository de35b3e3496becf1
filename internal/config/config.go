// Package config loads rpctree CLI configuration from struct defaults, an
// optional YAML file and RPCTREE__ environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/broady/rpctree/typescript"
)

const (
	// EnvPrefix prefixes environment overrides. Nesting uses "__":
	// RPCTREE__TYPESCRIPT__UNKNOWN_TYPE -> typescript.unknown_type.
	EnvPrefix = "RPCTREE"

	// DefaultFile is read from the working directory when no file is named.
	DefaultFile = "rpctree.yaml"
)

// Config is the CLI configuration.
type Config struct {
	// Schema is the schema document used when a command omits it.
	Schema string `koanf:"schema"`

	// Out is the output directory for gen when the command omits it.
	Out string `koanf:"out"`

	Log        LogConfig        `koanf:"log"`
	TypeScript TypeScriptConfig `koanf:"typescript"`
	Watch      WatchConfig      `koanf:"watch"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// TypeScriptConfig mirrors typescript.Config.
type TypeScriptConfig struct {
	Comments       bool   `koanf:"comments"`
	UnknownType    string `koanf:"unknown_type" validate:"oneof=unknown any"`
	ReadonlyArrays bool   `koanf:"readonly_arrays"`
	Indent         int    `koanf:"indent" validate:"min=1,max=8"`
	Frontmatter    string `koanf:"frontmatter"`
}

// WatchConfig defines gen --watch settings.
type WatchConfig struct {
	// Debounce is how long the schema file must be quiet before regenerating.
	Debounce time.Duration `koanf:"debounce" validate:"min=0,max=1m"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		TypeScript: TypeScriptConfig{
			Comments:    true,
			UnknownType: "unknown",
			Indent:      2,
		},
		Watch: WatchConfig{Debounce: 100 * time.Millisecond},
	}
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		return name
	})
	return v
}()

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: must be one of [%s], got %q", key, fe.Param(), fe.Value()))
		case "min", "max":
			errs = append(errs, fmt.Errorf("%s: %s is %s, got %v", key, fe.Tag(), fe.Param(), fe.Value()))
		default:
			errs = append(errs, fmt.Errorf("%s: failed %s", key, fe.Tag()))
		}
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// TypeScriptConfig converts the typescript section for the generator.
func (c *Config) TypeScriptConfig() typescript.Config {
	return typescript.Config{
		EmitComments:   c.TypeScript.Comments,
		UnknownType:    c.TypeScript.UnknownType,
		ReadonlyArrays: c.TypeScript.ReadonlyArrays,
		IndentSize:     c.TypeScript.Indent,
		Frontmatter:    c.TypeScript.Frontmatter,
	}
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
}

// NewLoader creates a loader reading environment variables named
// envPrefix + "__" + key.
func NewLoader(envPrefix string) *Loader {
	return &Loader{
		k:         koanf.New("."),
		envPrefix: envPrefix + "__",
	}
}

// LoadWithDefaults loads configuration with the following priority (highest to lowest):
//  1. Environment variables
//  2. Config file (YAML or JSON)
//  3. Struct defaults
//
// A named configPath must exist. An empty configPath skips the file.
func (l *Loader) LoadWithDefaults(defaults any, configPath string) error {
	if defaults != nil {
		if err := l.k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file not found: %s", configPath)
		}
		if err := l.k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	envProvider := env.Provider(l.envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := l.k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("load environment variables: %w", err)
	}
	return nil
}

// Set overrides a single key, for CLI flags.
func (l *Loader) Set(key string, value any) error {
	return l.k.Set(key, value)
}

// Unmarshal unmarshals the configuration at path into out.
func (l *Loader) Unmarshal(path string, out any) error {
	return l.k.Unmarshal(path, out)
}

// Raw returns all loaded configuration as a nested map.
func (l *Loader) Raw() map[string]any {
	return l.k.Raw()
}

// DumpYAML writes the loaded configuration as YAML.
func (l *Loader) DumpYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l.k.Raw()); err != nil {
		return err
	}
	return enc.Close()
}

// Load reads the configuration for the CLI. An empty path reads DefaultFile
// if it exists. Overrides, keyed like "log.level", are applied last.
func Load(path string, overrides map[string]any) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	l := NewLoader(EnvPrefix)
	if err := l.LoadWithDefaults(Defaults(), path); err != nil {
		return nil, err
	}
	for key, value := range overrides {
		if err := l.Set(key, value); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := l.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
