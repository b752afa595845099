package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/tholdem/holdem-staff/pkg/core/model"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"

	defaultHTTPAddr                = ":8080"
	defaultOptimisticRevertSeconds = 3
	defaultDisplayCacheSize        = 256
)

// TimeSlotTemplate is a time slot created on every date of a posting template
type TimeSlotTemplate struct {
	Time              string                  `yaml:"time" validate:"required_without=TimeToBeAnnounced"`
	TimeToBeAnnounced bool                    `yaml:"timeToBeAnnounced,omitempty"`
	Roles             []model.RoleRequirement `yaml:"roles" validate:"required,min=1,dive"`
}

// PostingTemplate describes the recurring dates and staffing of a posting
type PostingTemplate struct {
	Name      string             `yaml:"name" validate:"required"`
	RRule     string             `yaml:"rrule" validate:"required"`
	Location  string             `yaml:"location,omitempty"`
	TimeSlots []TimeSlotTemplate `yaml:"timeSlots" validate:"required,min=1,dive"`
}

// Config represents the application configuration
type Config struct {
	DatabaseBackend         string            `yaml:"databaseBackend" validate:"oneof=postgres mongo"`
	PostgresURL             string            `yaml:"postgresURL,omitempty" validate:"required_if=DatabaseBackend postgres"`
	MongoURI                string            `yaml:"mongoURI,omitempty" validate:"required_if=DatabaseBackend mongo"`
	MongoDatabase           string            `yaml:"mongoDatabase,omitempty" validate:"required_if=DatabaseBackend mongo"`
	RedisAddr               string            `yaml:"redisAddr,omitempty"`
	RedisPassword           string            `yaml:"redisPassword,omitempty"`
	HTTPAddr                string            `yaml:"httpAddr,omitempty"`
	OptimisticRevertSeconds int               `yaml:"optimisticRevertSeconds,omitempty" validate:"min=1"`
	DisplayCacheSize        int               `yaml:"displayCacheSize,omitempty" validate:"min=0"`
	RosterSheetID           string            `yaml:"rosterSheetID,omitempty"`
	GmailSender             string            `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
	PostingTemplates        []PostingTemplate `yaml:"postingTemplates,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// RevertWindow is how long an optimistic attendance status is shown
func (c *Config) RevertWindow() time.Duration {
	return time.Duration(c.OptimisticRevertSeconds) * time.Second
}

// Template returns the posting template with the given name
func (c *Config) Template(name string) (*PostingTemplate, bool) {
	for i := range c.PostingTemplates {
		if c.PostingTemplates[i].Name == name {
			return &c.PostingTemplates[i], true
		}
	}
	return nil, false
}

// Load loads and validates the configuration from holdem_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix.
// For example, env="test" looks for "holdem_config.test.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	var cfg Config
	if err := readFile(path, "config file", yaml.Unmarshal, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DatabaseBackend == "" {
		cfg.DatabaseBackend = BackendPostgres
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.OptimisticRevertSeconds == 0 {
		cfg.OptimisticRevertSeconds = defaultOptimisticRevertSeconds
	}
	if cfg.DisplayCacheSize == 0 {
		cfg.DisplayCacheSize = defaultDisplayCacheSize
	}
}

// Validate validates the configuration struct and checks template rrules
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	var errs []error
	seen := make(map[string]bool)
	for i, tmpl := range cfg.PostingTemplates {
		if seen[tmpl.Name] {
			errs = append(errs, fmt.Errorf("duplicate template name %q in postingTemplates[%d]", tmpl.Name, i))
		}
		seen[tmpl.Name] = true
		if _, err := rrule.StrToRRule(tmpl.RRule); err != nil {
			errs = append(errs, fmt.Errorf("invalid rrule in postingTemplates[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// findConfigFile searches for the config file, suffixed with env when set
func findConfigFile(env string) (string, error) {
	return findFile(envFileName("holdem_config", ".yaml", env))
}

// envFileName builds stem.ext, or stem.env.ext when env is set
func envFileName(stem, ext, env string) string {
	if env == "" {
		return stem + ext
	}
	return stem + "." + env + ext
}

// readFile decodes the file at path into out. kind names the file in errors.
func readFile(path, kind string, unmarshal func([]byte, any) error, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", kind, err)
	}
	if err := unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", kind, err)
	}
	return nil
}

// findFile looks for name in the current directory, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
