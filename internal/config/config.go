// Package config loads the stm manager and tool definitions.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"
)

// Manager describes a package manager and its command templates. Templates
// may contain the {{packages}} placeholder.
type Manager struct {
	Name           string `mapstructure:"name" toml:"name"`
	InstallCommand string `mapstructure:"install_command" toml:"install_command"`
	UpdateCommand  string `mapstructure:"update_command" toml:"update_command"`
}

// Tool describes a package and how to detect that it is installed. Exactly
// one of Binary or Path is expected; Binary is resolved through PATH, Path
// is checked on disk after environment variable expansion.
type Tool struct {
	Package string `mapstructure:"package" toml:"package"`
	Binary  string `mapstructure:"binary" toml:"binary,omitempty"`
	Path    string `mapstructure:"path" toml:"path,omitempty"`
	Manager string `mapstructure:"manager" toml:"manager"`
}

// Config is the full stm configuration.
type Config struct {
	Managers []Manager `mapstructure:"managers" toml:"managers"`
	Tools    []Tool    `mapstructure:"tools" toml:"tools"`
}

// AppDir returns the stm configuration directory.
func AppDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "stm"), nil
}

// EnsureAppDir creates the configuration directory if needed.
func EnsureAppDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating app dir: %w", err)
	}
	return dir, nil
}

// HistoryPath returns the default run history database path.
func HistoryPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Load reads the config from path, or from the default search path when path
// is empty. TOML, JSON and YAML are accepted.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := AppDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// ManagerNames returns the configured manager names in config order.
func (c *Config) ManagerNames() []string {
	names := make([]string, 0, len(c.Managers))
	for _, m := range c.Managers {
		names = append(names, m.Name)
	}
	return names
}

// FindManager looks a manager up by name.
func (c *Config) FindManager(name string) (*Manager, bool) {
	for i := range c.Managers {
		if c.Managers[i].Name == name {
			return &c.Managers[i], true
		}
	}
	return nil, false
}

// ToolsForManager returns the tools belonging to the named manager.
func (c *Config) ToolsForManager(name string) []Tool {
	var tools []Tool
	for _, t := range c.Tools {
		if t.Manager == name {
			tools = append(tools, t)
		}
	}
	return tools
}

// IsInstalled reports whether the tool is present on this system.
func (t Tool) IsInstalled() bool {
	if t.Binary != "" {
		_, err := exec.LookPath(t.Binary)
		return err == nil
	}
	if t.Path != "" {
		_, err := os.Stat(os.ExpandEnv(t.Path))
		return err == nil
	}
	return false
}

// Default returns the starter configuration written by stm init.
func Default() *Config {
	return &Config{
		Managers: []Manager{
			{
				Name:           "cargo",
				InstallCommand: "cargo install --force {{packages}}",
				UpdateCommand:  "cargo install --force {{packages}}",
			},
		},
		Tools: []Tool{
			{
				Package: "cargo-watch",
				Binary:  "cargo-watch",
				Manager: "cargo",
			},
		},
	}
}
