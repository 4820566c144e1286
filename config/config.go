package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/foldertree/internal/util"
)

// AddPolicy decides what adding a path that already exists does.
type AddPolicy string

const (
	// AddOverwrite replaces the existing folder (and its subtree) silently
	AddOverwrite AddPolicy = "overwrite"
	// AddReject fails the add and leaves the tree untouched
	AddReject AddPolicy = "reject"
	// AddMerge keeps the existing folder, like `mkdir -p`
	AddMerge AddPolicy = "merge"
)

// Verbosity values as accepted on the cli, 1 (error) through 5 (trace)
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl        = util.InfoLevel
	DefaultRootName      = "root"
	DefaultAddPolicy     = AddMerge
	DefaultStrictPaths   = false
	DefaultMoveSuffixSep = "_"
	DefaultRestoreSuffix = "_"
	DefaultTrashKeySep   = "."
	DefaultHTTPAddr      = "127.0.0.1:8421"
	DefaultFsName        = "foldertree"
	DefaultName          = "foldertree"
)

// Config contains runtime configuration values for the folder tree.
type Config struct {
	MountOptions
	LogLvl        util.LogLevel `validate:"gte=0,lte=4"` // Internal log level (Default info)
	RootName      string        `validate:"required"`    // Display name of the root folder (Default "root")
	AddPolicy     AddPolicy     `validate:"oneof=overwrite reject merge"`
	StrictPaths   bool          // Surface not-found on delete/restore instead of ignoring it (Default false)
	MoveSuffixSep string        `validate:"required,excludes=/"` // Separator before the numeric suffix on move collisions (Default "_")
	RestoreSuffix string        `validate:"required,excludes=/"` // Appended to an occupied origin on restore until free (Default "_")
	TrashKeySep   string        `validate:"required,excludes=/"` // Separator between name and unique id in trash keys (Default ".")
	HTTPAddr      string        `validate:"omitempty,hostname_port"`
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	LogLvl        *int       `yaml:"verbose,omitempty" json:"verbose,omitempty"` // cli style verbosity 1..5
	RootName      *string    `yaml:"root_name,omitempty" json:"root_name,omitempty"`
	AddPolicy     *AddPolicy `yaml:"add_policy,omitempty" json:"add_policy,omitempty"`
	StrictPaths   *bool      `yaml:"strict_paths,omitempty" json:"strict_paths,omitempty"`
	MoveSuffixSep *string    `yaml:"move_suffix_sep,omitempty" json:"move_suffix_sep,omitempty"`
	RestoreSuffix *string    `yaml:"restore_suffix,omitempty" json:"restore_suffix,omitempty"`
	TrashKeySep   *string    `yaml:"trash_key_sep,omitempty" json:"trash_key_sep,omitempty"`
	HTTPAddr      *string    `yaml:"http_addr,omitempty" json:"http_addr,omitempty"`
	FsName        *string    `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name          *string    `yaml:"name,omitempty" json:"name,omitempty"`
	Debug         *bool      `yaml:"fuse_debug,omitempty" json:"fuse_debug,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:        DefaultLogLvl,
		RootName:      DefaultRootName,
		AddPolicy:     DefaultAddPolicy,
		StrictPaths:   DefaultStrictPaths,
		MoveSuffixSep: DefaultMoveSuffixSep,
		RestoreSuffix: DefaultRestoreSuffix,
		TrashKeySep:   DefaultTrashKeySep,
		HTTPAddr:      DefaultHTTPAddr,
	}
}

// NewConfig returns the defaults with override applied; override may be nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbose(*override.LogLvl)
	}
	if override.RootName != nil {
		c.RootName = *override.RootName
	}
	if override.AddPolicy != nil {
		c.AddPolicy = *override.AddPolicy
	}
	if override.StrictPaths != nil {
		c.StrictPaths = *override.StrictPaths
	}
	if override.MoveSuffixSep != nil {
		c.MoveSuffixSep = *override.MoveSuffixSep
	}
	if override.RestoreSuffix != nil {
		c.RestoreSuffix = *override.RestoreSuffix
	}
	if override.TrashKeySep != nil {
		c.TrashKeySep = *override.TrashKeySep
	}
	if override.HTTPAddr != nil {
		c.HTTPAddr = *override.HTTPAddr
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
}

// Validate checks field constraints, returning the validator's errors as is.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults
// and validating the result.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
