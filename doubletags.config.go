package doubletags

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk engine configuration. The same fields are read
// from YAML, TOML and JSON files.
type FileConfig struct {
	// Tags overrides the default "{{" / "}}" delimiters.
	Tags *TagsConfig `yaml:"tags,omitempty" toml:"tags,omitempty" json:"tags,omitempty" jsonschema:"description=Tag delimiters"`

	// EscapeByDefault escapes every interpolated value.
	EscapeByDefault bool `yaml:"escape_by_default,omitempty" toml:"escape_by_default,omitempty" json:"escape_by_default,omitempty" jsonschema:"description=Escape every interpolated value"`

	// MaxDepth bounds section/partial nesting; 0 means unlimited.
	MaxDepth *int `yaml:"max_depth,omitempty" toml:"max_depth,omitempty" json:"max_depth,omitempty" jsonschema:"description=Maximum section and partial nesting depth (0 = unlimited),minimum=0"`

	// Partials are registered inline.
	Partials map[string]string `yaml:"partials,omitempty" toml:"partials,omitempty" json:"partials,omitempty" jsonschema:"description=Partial templates by name"`

	// PartialStore names a store to load partials from.
	PartialStore *StoreConfig `yaml:"partial_store,omitempty" toml:"partial_store,omitempty" json:"partial_store,omitempty" jsonschema:"description=Partial store to load partials from"`
}

// TagsConfig holds a delimiter pair.
type TagsConfig struct {
	Open  string `yaml:"open" toml:"open" json:"open" jsonschema:"required,minLength=1"`
	Close string `yaml:"close" toml:"close" json:"close" jsonschema:"required,minLength=1"`
}

// StoreConfig selects a partial store driver.
type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver" json:"driver" jsonschema:"required,enum=memory,enum=filesystem,enum=postgres,enum=sqlite"`
	DSN    string `yaml:"dsn,omitempty" toml:"dsn,omitempty" json:"dsn,omitempty" jsonschema:"description=Driver-specific connection string or directory"`
	Cache  bool   `yaml:"cache,omitempty" toml:"cache,omitempty" json:"cache,omitempty" jsonschema:"description=Cache partial lookups in memory"`
}

// LoadConfig reads a config file, choosing the format from its extension.
func LoadConfig(path string) (*FileConfig, error) {
	format, err := configFormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}

	config, err := ParseConfig(data, format)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigParse, path, err)
	}
	return config, nil
}

// ParseConfig decodes config data in the given format ("yaml", "toml" or "json").
func ParseConfig(data []byte, format string) (*FileConfig, error) {
	var config FileConfig

	switch strings.ToLower(format) {
	case ConfigFormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case ConfigFormatTOML:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case ConfigFormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&config); err != nil {
			return nil, err
		}
	default:
		return nil, NewUnsupportedConfigFormatError(format)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the values an Engine cannot be built with.
func (c *FileConfig) Validate() error {
	if c.Tags != nil && (c.Tags.Open == "" || c.Tags.Close == "") {
		return NewInvalidTagsError(c.Tags.Open, c.Tags.Close)
	}
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return NewInvalidMaxDepthError(*c.MaxDepth)
	}
	for name := range c.Partials {
		if name == "" {
			return NewEmptyPartialNameError()
		}
	}
	return nil
}

// Options converts the config to engine options. The partial store is not
// opened here; see OpenStore.
func (c *FileConfig) Options() []Option {
	var opts []Option
	if c.Tags != nil {
		opts = append(opts, WithTags(c.Tags.Open, c.Tags.Close))
	}
	if c.EscapeByDefault {
		opts = append(opts, WithEscapeByDefault(true))
	}
	if c.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*c.MaxDepth))
	}
	if len(c.Partials) > 0 {
		opts = append(opts, WithPartials(c.Partials))
	}
	return opts
}

// OpenStore opens the configured partial store, or returns nil when none is set.
// With cache set the store is wrapped in a CachedPartialStore.
func (c *FileConfig) OpenStore() (PartialStore, error) {
	if c.PartialStore == nil {
		return nil, nil
	}
	store, err := OpenPartialStore(c.PartialStore.Driver, c.PartialStore.DSN)
	if err != nil {
		return nil, err
	}
	if c.PartialStore.Cache {
		return NewCachedPartialStore(store, DefaultCacheConfig()), nil
	}
	return store, nil
}

// NewFromConfig builds an Engine from a config file, loading partials from
// the configured store. Extra options are applied after the file's.
func NewFromConfig(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	engine, err := New(append(config.Options(), opts...)...)
	if err != nil {
		return nil, err
	}
	engine.logger.Debug(LogMsgConfigLoaded, zap.String(LogFieldPath, path))

	store, err := config.OpenStore()
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()
		if _, err := engine.LoadPartials(ctx, store); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// ConfigSchema returns the JSON schema of the config file format.
func ConfigSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(&FileConfig{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigSchema, "", err)
	}
	return data, nil
}

func configFormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ConfigExtYAML, ConfigExtYML:
		return ConfigFormatYAML, nil
	case ConfigExtTOML:
		return ConfigFormatTOML, nil
	case ConfigExtJSON:
		return ConfigFormatJSON, nil
	default:
		return "", NewUnsupportedConfigFormatError(filepath.Ext(path))
	}
}
