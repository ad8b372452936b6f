package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/everstacklabs/apidiff/internal/extract"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"

	// VersionAuto reads the current version from the highest SemVer tag.
	VersionAuto = "auto"
)

// Config holds all configuration for apidiff.
type Config struct {
	CurrentVersion   string        `mapstructure:"current_version"`
	Output           string        `mapstructure:"output"`
	Format           string        `mapstructure:"format"`
	Ignore           []string      `mapstructure:"ignore"`
	Language         string        `mapstructure:"language"`
	Repo             string        `mapstructure:"repo"`
	StrictSemver     bool          `mapstructure:"strict_semver"`
	DryRun           bool          `mapstructure:"dry_run"`
	NoEmptyChangeset bool          `mapstructure:"no_empty_changeset"`
	Quiet            bool          `mapstructure:"quiet"`
	Workers          int           `mapstructure:"workers"`
	CacheDir         string        `mapstructure:"cache_dir"`
	CacheTTL         string        `mapstructure:"cache_ttl"`
	NoCache          bool          `mapstructure:"no_cache"`
	LogLevel         string        `mapstructure:"log_level"`
	GitHub           GitHubConfig  `mapstructure:"github"`
	Release          ReleaseConfig `mapstructure:"release"`
}

// GitHubConfig holds GitHub-related settings.
type GitHubConfig struct {
	Token      string `mapstructure:"token"`
	Owner      string `mapstructure:"owner"`
	Repo       string `mapstructure:"repo"`
	BaseBranch string `mapstructure:"base_branch"`
}

// ReleaseConfig controls the release branch and pull request.
type ReleaseConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	BranchPrefix string `mapstructure:"branch_prefix"`
	AuthorName   string `mapstructure:"author_name"`
	AuthorEmail  string `mapstructure:"author_email"`
}

func init() {
	// Report config keys, not Go field names.
	validation.ErrorTag = "mapstructure"
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"current-version":    "current_version",
	"output":             "output",
	"format":             "format",
	"ignore":             "ignore",
	"language":           "language",
	"repo":               "repo",
	"strict-semver":      "strict_semver",
	"dry-run":            "dry_run",
	"no-empty-changeset": "no_empty_changeset",
	"quiet":              "quiet",
	"workers":            "workers",
	"no-cache":           "no_cache",
	"release":            "release.enabled",
}

// Load reads configuration from defaults, the config file, the environment
// and, when flags is non-nil, any flags the user set explicitly.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("current_version", "1.0.0")
	v.SetDefault("output", "CHANGELOG.md")
	v.SetDefault("format", FormatMarkdown)
	v.SetDefault("ignore", extract.DefaultIgnore)
	v.SetDefault("language", "php")
	v.SetDefault("repo", ".")
	v.SetDefault("strict_semver", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("no_empty_changeset", false)
	v.SetDefault("quiet", false)
	v.SetDefault("workers", 8)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_ttl", "168h")
	v.SetDefault("no_cache", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("github.base_branch", "main")
	v.SetDefault("release.enabled", false)
	v.SetDefault("release.branch_prefix", "release/v")
	v.SetDefault("release.author_name", "apidiff")
	v.SetDefault("release.author_email", "apidiff@users.noreply.github.com")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("apidiff")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/apidiff")
	}

	v.SetEnvPrefix("APIDIFF")
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", "APIDIFF_GITHUB_TOKEN", "GITHUB_TOKEN")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	languages := make([]any, 0)
	for _, name := range extract.List() {
		languages = append(languages, name)
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.In(FormatMarkdown, FormatJSON)),
		validation.Field(&c.Language, validation.Required, validation.In(languages...)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
		validation.Field(&c.CacheTTL, validation.By(isDuration)),
		validation.Field(&c.LogLevel, validation.By(isLevel)),
	); err != nil {
		return err
	}
	return c.Release.Validate()
}

// Validate checks the release settings.
func (c *ReleaseConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BranchPrefix, validation.Required),
		validation.Field(&c.AuthorName, validation.Required),
		validation.Field(&c.AuthorEmail, validation.Required),
	)
}

// TTL returns the parsed cache TTL. Validate guarantees it parses.
func (c *Config) TTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func isDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return errors.New("must be a duration such as 24h")
	}
	return nil
}

func isLevel(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return errors.New("must be one of debug, info, warn, error")
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "apidiff")
	}
	return filepath.Join(os.TempDir(), "apidiff-cache")
}
