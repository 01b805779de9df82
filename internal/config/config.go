// Package config provides configuration management for wikicore using
// Viper for loading from files, environment variables, and command-line
// flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the WIKICORE_ prefix (WIKICORE_CACHE_MAX_ENTRIES, ...). It
// covers parsing, rendering, transformations, caches, the query
// translator, the document source and logging.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/wikicore/internal/errors"
)

type Config struct {
	Parser         ParserConfig         `yaml:"parser" mapstructure:"parser" json:"parser"`
	Renderer       RendererConfig       `yaml:"renderer" mapstructure:"renderer" json:"renderer"`
	Transformation TransformationConfig `yaml:"transformation" mapstructure:"transformation" json:"transformation"`
	Cache          CacheConfig          `yaml:"cache" mapstructure:"cache" json:"cache"`
	Query          QueryConfig          `yaml:"query" mapstructure:"query" json:"query"`
	Documents      DocumentsConfig      `yaml:"documents" mapstructure:"documents" json:"documents"`
	Log            LogConfig            `yaml:"log" mapstructure:"log" json:"log"`
}

type ParserConfig struct {
	DefaultSyntax string `yaml:"default_syntax" mapstructure:"default_syntax" json:"default_syntax"`
	BrokenLinks   string `yaml:"broken_links" mapstructure:"broken_links" json:"broken_links"`
}

type RendererConfig struct {
	DefaultSyntax string `yaml:"default_syntax" mapstructure:"default_syntax" json:"default_syntax"`
	ViewURL       string `yaml:"view_url" mapstructure:"view_url" json:"view_url"`
	AttachmentURL string `yaml:"attachment_url" mapstructure:"attachment_url" json:"attachment_url"`
}

type TransformationConfig struct {
	MaxMacroDepth int      `yaml:"max_macro_depth" mapstructure:"max_macro_depth" json:"max_macro_depth"`
	Enabled       []string `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
}

type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries" json:"max_entries"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl" json:"ttl"`
}

type QueryConfig struct {
	DefaultPropertyType string             `yaml:"default_property_type" mapstructure:"default_property_type" json:"default_property_type"`
	PropertyTypes       []PropertyTypeRule `yaml:"property_types" mapstructure:"property_types" json:"property_types"`
}

// PropertyTypeRule maps a class property to its storage type. An empty
// class applies to the property of every class.
type PropertyTypeRule struct {
	Class    string `yaml:"class" mapstructure:"class" json:"class"`
	Property string `yaml:"property" mapstructure:"property" json:"property"`
	Type     string `yaml:"type" mapstructure:"type" json:"type"`
}

type DocumentsConfig struct {
	Root         string        `yaml:"root" mapstructure:"root" json:"root"`
	DefaultWiki  string        `yaml:"default_wiki" mapstructure:"default_wiki" json:"default_wiki"`
	DefaultSpace string        `yaml:"default_space" mapstructure:"default_space" json:"default_space"`
	Watch        bool          `yaml:"watch" mapstructure:"watch" json:"watch"`
	Debounce     time.Duration `yaml:"debounce" mapstructure:"debounce" json:"debounce"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" json:"level"`
	Format string `yaml:"format" mapstructure:"format" json:"format"`
}

// Defaults are the values of keys absent from every source.
var Defaults = map[string]interface{}{
	"parser.default_syntax":          "xwiki/2.1",
	"parser.broken_links":            "abort",
	"renderer.default_syntax":        "xhtml/1.0",
	"renderer.view_url":              "/{wiki}/view/{space}/{page}",
	"renderer.attachment_url":        "/{wiki}/download/{space}/{page}/{file}",
	"transformation.max_macro_depth": 10,
	"transformation.enabled":         []string{"macro"},
	"cache.max_entries":              1000,
	"cache.ttl":                      10 * time.Minute,
	"query.default_property_type":    "StringProperty",
	"documents.root":                 ".",
	"documents.default_wiki":         "xwiki",
	"documents.default_space":        "Main",
	"documents.watch":                false,
	"documents.debounce":             100 * time.Millisecond,
	"log.level":                      "info",
	"log.format":                     "text",
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.ErrCodeConfigInvalid, "cannot decode configuration")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// validateConfig returns the first validation error as a config error.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if !result.HasErrors() {
		return nil
	}
	first := result.Errors[0]
	return errors.NewConfigError(errors.ErrCodeConfigInvalid, first.Error()).
		WithContext("field", first.Field)
}

// EnvPrefix prefixes the environment variables read by BindEnv.
const EnvPrefix = "WIKICORE"

// BindEnv makes v read WIKICORE_<SECTION>_<KEY> variables, e.g.
// WIKICORE_CACHE_MAX_ENTRIES for cache.max_entries.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
