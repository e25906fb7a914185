package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcdonaldj/siblame/internal/ports"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in the provider field.
const (
	ProviderIntegrity = "integrity"
	ProviderGit       = "git"
)

type Config struct {
	Provider    string `yaml:"provider"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	PasswordEnv string `yaml:"password_env"` // Name of the variable holding the password
	ConfigPath  string `yaml:"config_path"`  // Server-side project path prefix
	Executable  string `yaml:"executable"`
	Timeout     string `yaml:"timeout"`  // Go duration; empty means no limit
	RootDir     string `yaml:"root_dir"` // Overrides the root directory variables when set
}

func DefaultConfig() (*Config, error) {
	return &Config{
		Provider:    ProviderIntegrity,
		Port:        7001,
		PasswordEnv: "SI_PASSWORD",
		Executable:  "si",
	}, nil
}

func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".siblame", "config.yaml"), nil
}

func Load() (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the selected provider needs.
func (c *Config) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	switch c.Provider {
	case ProviderIntegrity, "si":
		if c.Host == "" {
			return fmt.Errorf("host is required for the %s provider", c.Provider)
		}
		if c.User == "" {
			return fmt.Errorf("user is required for the %s provider", c.Provider)
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("port %d out of range", c.Port)
		}
	case ProviderGit:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means no limit.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// Repository builds the connection details, reading the password from env.
func (c *Config) Repository(env ports.Environment) ports.Repository {
	repo := ports.Repository{
		Host:       c.Host,
		Port:       c.Port,
		User:       c.User,
		ConfigPath: c.ConfigPath,
	}
	if c.PasswordEnv != "" {
		repo.Password, _ = env.LookupEnv(c.PasswordEnv)
	}
	return repo
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand %s: %w", path, err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
