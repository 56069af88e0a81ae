package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Supported document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultMaxDepth bounds container nesting accepted by the parser.
const DefaultMaxDepth = 10000

// Config represents the complete configuration for treekit
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Flatten   FlattenConfig   `yaml:"flatten"`
	Transform TransformConfig `yaml:"transform"`
	Repair    RepairConfig    `yaml:"repair"`
	Dev       DevConfig       `yaml:"dev"`
}

// InputConfig controls how documents are read
type InputConfig struct {
	Format   string `yaml:"format"`
	Lenient  bool   `yaml:"lenient"`
	MaxDepth int    `yaml:"max_depth"`
}

// OutputConfig controls how documents are written
type OutputConfig struct {
	Format  string `yaml:"format"`
	Indent  string `yaml:"indent"`
	Compact bool   `yaml:"compact"`
}

// FlattenConfig controls flatten/unflatten key rendering
type FlattenConfig struct {
	Separator string `yaml:"separator"`
}

// TransformConfig holds defaults shared by the structural transforms
type TransformConfig struct {
	Recursive bool `yaml:"recursive"`
}

// RepairConfig toggles the individual repair passes
type RepairConfig struct {
	Passes RepairPasses `yaml:"passes"`
}

// RepairPasses enables or disables each pass of the repair pipeline
type RepairPasses struct {
	StripBOM       bool `yaml:"strip_bom"`
	TrailingCommas bool `yaml:"trailing_commas"`
	SingleQuotes   bool `yaml:"single_quotes"`
	UnquotedKeys   bool `yaml:"unquoted_keys"`
	MissingCommas  bool `yaml:"missing_commas"`
	Comments       bool `yaml:"comments"`
	Literals       bool `yaml:"literals"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Input: InputConfig{
			Format:   FormatJSON,
			Lenient:  false,
			MaxDepth: DefaultMaxDepth,
		},
		Output: OutputConfig{
			Format:  FormatJSON,
			Indent:  "  ",
			Compact: false,
		},
		Flatten: FlattenConfig{
			Separator: ".",
		},
		Transform: TransformConfig{
			Recursive: true,
		},
		Repair: RepairConfig{
			Passes: AllPasses(),
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// AllPasses returns a RepairPasses with every pass enabled
func AllPasses() RepairPasses {
	return RepairPasses{
		StripBOM:       true,
		TrailingCommas: true,
		SingleQuotes:   true,
		UnquotedKeys:   true,
		MissingCommas:  true,
		Comments:       true,
		Literals:       true,
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults so omitted keys keep their default value
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".treekit.yml", ".treekit.yaml", "treekit.yml", "treekit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks option values that yaml cannot constrain
func (c *Config) Validate() error {
	if !validFormat(c.Input.Format) {
		return fmt.Errorf("unsupported input format '%s'", c.Input.Format)
	}
	if !validFormat(c.Output.Format) {
		return fmt.Errorf("unsupported output format '%s'", c.Output.Format)
	}
	if c.Flatten.Separator == "" {
		return fmt.Errorf("flatten separator must not be empty")
	}
	if c.Input.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.Input.MaxDepth)
	}
	return nil
}

func validFormat(f string) bool {
	return f == FormatJSON || f == FormatYAML
}

// Overrides carries CLI flags. Nil fields were not set on the command line.
type Overrides struct {
	InputFormat  *string
	OutputFormat *string
	Indent       *string
	Compact      *bool
	Lenient      *bool
	Debug        *bool
}

// MergeCLI applies explicitly set CLI flags over a base config
func MergeCLI(base *Config, o Overrides) *Config {
	merged := *base

	if o.InputFormat != nil {
		merged.Input.Format = *o.InputFormat
	}
	if o.OutputFormat != nil {
		merged.Output.Format = *o.OutputFormat
	}
	if o.Indent != nil {
		merged.Output.Indent = *o.Indent
	}
	if o.Compact != nil {
		merged.Output.Compact = *o.Compact
	}
	if o.Lenient != nil {
		merged.Input.Lenient = *o.Lenient
	}
	if o.Debug != nil {
		merged.Dev.Debug = *o.Debug
	}

	return &merged
}

// LoadConfigWithCLI loads the config file (explicit path first, then a
// discovered one) and applies CLI overrides
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg = MergeCLI(cfg, o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
