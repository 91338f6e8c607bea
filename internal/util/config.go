package util

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnvVar names a configuration file used when no path is given.
const ConfigEnvVar = "MONKEY_CONFIG"

// ExtensionSQL enables the sql_ builtins.
const ExtensionSQL = "sql"

var (
	logLevels  = []string{"debug", "info", "warn", "error", "none"}
	extensions = []string{ExtensionSQL}
)

type Configuration struct {
	Version   string `yaml:"-"`
	BuildDate string `yaml:"-"`
	Commit    string `yaml:"-"`

	LogLevel     string   `yaml:"log_level"`
	LogFile      string   `yaml:"log_file"`
	MaxCallDepth int      `yaml:"max_call_depth"`
	TraceParser  bool     `yaml:"trace_parser"`
	DebugAST     string   `yaml:"debug_ast"`
	Extensions   []string `yaml:"extensions"`
	HistoryFile  string   `yaml:"history_file"`
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		LogLevel:     "error",
		MaxCallDepth: 10000,
		HistoryFile:  defaultHistoryFile(),
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + string(os.PathSeparator) + ".monkey_history"
}

// LoadConfiguration reads a YAML file over the defaults. With an empty path
// the file named by MONKEY_CONFIG is used; with neither the defaults are
// returned as is.
func LoadConfiguration(path string, getenv func(string) string) (*Configuration, error) {
	cfg := DefaultConfiguration()

	if path == "" {
		path = getenv(ConfigEnvVar)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that flags or a file may have set.
func (c *Configuration) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("unknown log level %q (want one of %s)",
			c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative, got %d", c.MaxCallDepth)
	}
	for _, ext := range c.Extensions {
		if !slices.Contains(extensions, ext) {
			return fmt.Errorf("unknown extension %q", ext)
		}
	}
	return nil
}

func (c *Configuration) HasExtension(name string) bool {
	return slices.Contains(c.Extensions, name)
}
