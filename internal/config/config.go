package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project directory.
const FileName = "spendboard.yaml"

// Config represents the top-level spendboard.yaml configuration.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Card      CardConfig      `yaml:"card"`
	Rules     RulesConfig     `yaml:"rules"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	IDs       IDConfig        `yaml:"ids"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Git       GitConfig       `yaml:"git"`

	dir string // directory of the file the config was loaded from
}

// InputConfig points at the statement export.
type InputConfig struct {
	Path   string `yaml:"path"`
	Layout string `yaml:"layout"` // "truist" or "chase"
}

// OutputConfig points at the dashboard document.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// CardConfig describes the synthetic card transactions are attached to.
type CardConfig struct {
	Type         string `yaml:"type"`
	HolderName   string `yaml:"holder_name"`
	MaskedNumber string `yaml:"masked_number"`
	ValidYears   int    `yaml:"valid_years"`
}

// RulesConfig replaces the built-in keyword table when Path is set.
type RulesConfig struct {
	Path string `yaml:"path,omitempty"`
}

// AggregateConfig tunes the derived views.
type AggregateConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// IDConfig selects the transaction ID scheme.
type IDConfig struct {
	Scheme string `yaml:"scheme"` // "sequential" or "content"
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	AllowOrigin string `yaml:"allow_origin"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
	RunLog string `yaml:"run_log,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a spendboard.yaml file from disk. Fields the file leaves out
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults
// rooted at the file's directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.dir = filepath.Dir(path)
		return cfg, nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:   "import/statements.csv",
			Layout: "truist",
		},
		Output: OutputConfig{
			Path: "data/db.json",
		},
		Card: CardConfig{
			Type:         "Debit",
			HolderName:   "Account Holder",
			MaskedNumber: "XXXX XXXX XXXX XXXX",
			ValidYears:   3,
		},
		Aggregate: AggregateConfig{
			RecentLimit: 20,
		},
		IDs: IDConfig{
			Scheme: "sequential",
		},
		Server: ServerConfig{
			Addr:        ":4000",
			AllowOrigin: "*",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			RunLog: "logs/runs.csv",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "spendboard",
			AuthorEmail: "spendboard@localhost",
		},
	}
}

// Dir returns the directory relative paths resolve against. It is "" for
// a config that was not loaded from a file.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir overrides the directory relative paths resolve against.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// Resolve returns p made absolute against the config directory. Empty and
// absolute paths are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	var problems []string
	if c.Output.Path == "" {
		problems = append(problems, "output.path is empty")
	}
	if c.Aggregate.RecentLimit < 0 {
		problems = append(problems, "aggregate.recent_limit is negative")
	}
	if c.Card.ValidYears < 0 {
		problems = append(problems, "card.valid_years is negative")
	}
	switch strings.ToLower(c.IDs.Scheme) {
	case "", "sequential", "content":
	default:
		problems = append(problems, fmt.Sprintf("ids.scheme %q is not sequential or content", c.IDs.Scheme))
	}
	if c.Git.AutoCommit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		problems = append(problems, "git.auto_commit needs author_name and author_email")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
