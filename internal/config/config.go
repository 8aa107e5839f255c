package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in config content.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads a YAML configuration file, substitutes environment
// variables, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file %s: %w", path, err)
	}

	// Every ${VAR} reference must resolve to a set environment variable.
	if err := validateEnvVars(data); err != nil {
		return nil, err
	}

	resolved := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateEnvVars checks that all ${VAR} references in raw data
// correspond to environment variables that are actually set.
func validateEnvVars(data []byte) error {
	matches := envVarPattern.FindAllStringSubmatch(string(data), -1)
	var unresolved []string
	seen := map[string]bool{}
	for _, m := range matches {
		varName := m[1]
		if seen[varName] {
			continue
		}
		seen[varName] = true
		if _, ok := os.LookupEnv(varName); !ok {
			unresolved = append(unresolved, "${"+varName+"}")
		}
	}
	if len(unresolved) > 0 {
		return fmt.Errorf("config: unresolved variables found: %s",
			strings.Join(unresolved, ", "))
	}
	return nil
}

// applyDefaults fills in defaults for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Product.Name == "" {
		cfg.Product.Name = "AutoPR"
	}
	if cfg.Product.Label == "" {
		cfg.Product.Label = "autopr"
	}
	if cfg.GitHub.BaseBranch == "" {
		cfg.GitHub.BaseBranch = "main"
	}
	if cfg.GitHub.BotLogin == "" {
		cfg.GitHub.BotLogin = strings.ToLower(cfg.Product.Label) + "[bot]"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Path == "" {
		home, _ := os.UserHomeDir()
		cfg.Storage.Path = filepath.Join(home, ".autopr", "autopr.db")
	}
	if cfg.Quota.RequestsPerCycle == 0 {
		cfg.Quota.RequestsPerCycle = 20
	}
	if cfg.Workspace.Dir == "" {
		cfg.Workspace.Dir = filepath.Join(os.TempDir(), "autopr-repos")
	}
}

// Validate checks the Config for completeness and correctness.
// It returns all errors found joined together, prefixed with "config: ".
func Validate(cfg *Config) error {
	var errs []string

	if cfg.GitHub.AppID == 0 {
		errs = append(errs, "config: github.app_id is required")
	}
	if cfg.GitHub.PrivateKey == "" {
		errs = append(errs, "config: github.private_key is required")
	}
	if cfg.GitHub.WebhookSecret == "" {
		errs = append(errs, "config: github.webhook_secret is required")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("config: server.port must be between 0 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.Quota.RequestsPerCycle < 0 {
		errs = append(errs, fmt.Sprintf("config: quota.requests_per_cycle must not be negative, got %d", cfg.Quota.RequestsPerCycle))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
