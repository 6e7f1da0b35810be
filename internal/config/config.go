// Package config loads, validates and saves jira2md settings. Settings
// come from a YAML file (~/.jira2md.yaml by default) with environment
// variable overrides for the JIRA credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all jira2md settings.
type Config struct {
	Jira     JiraConfig     `yaml:"jira"     mapstructure:"jira"`
	Output   OutputConfig   `yaml:"output"   mapstructure:"output"`
	Markdown MarkdownConfig `yaml:"markdown" mapstructure:"markdown"`
	Images   ImagesConfig   `yaml:"images"   mapstructure:"images"`
	Logging  LoggingConfig  `yaml:"logging"  mapstructure:"logging"`
}

// JiraConfig holds JIRA connection settings.
type JiraConfig struct {
	URL       string `yaml:"url"        mapstructure:"url"`
	Username  string `yaml:"username"   mapstructure:"username"`
	APIToken  string `yaml:"api_token"  mapstructure:"api_token"`
	VerifySSL bool   `yaml:"verify_ssl" mapstructure:"verify_ssl"`
}

// OutputConfig controls where and how markdown files are written.
type OutputConfig struct {
	Directory      string `yaml:"directory"       mapstructure:"directory"`
	FilenameFormat string `yaml:"filename_format" mapstructure:"filename_format"`
	Overwrite      bool   `yaml:"overwrite"       mapstructure:"overwrite"`
}

// MarkdownConfig controls which sections the rendered document includes.
type MarkdownConfig struct {
	IncludeMetadataTable bool   `yaml:"include_metadata_table" mapstructure:"include_metadata_table"`
	IncludeComments      bool   `yaml:"include_comments"       mapstructure:"include_comments"`
	IncludeAttachments   bool   `yaml:"include_attachments"    mapstructure:"include_attachments"`
	IncludeSubtasks      bool   `yaml:"include_subtasks"       mapstructure:"include_subtasks"`
	IncludeLinks         bool   `yaml:"include_links"          mapstructure:"include_links"`
	DateFormat           string `yaml:"date_format"            mapstructure:"date_format"`
	ConvertMarkup        bool   `yaml:"convert_markup"         mapstructure:"convert_markup"`
}

// ImagesConfig controls the image download post-processing step.
type ImagesConfig struct {
	Download  bool   `yaml:"download"  mapstructure:"download"`
	Directory string `yaml:"directory" mapstructure:"directory"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"  mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultPath returns the default config file path (~/.jira2md.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jira2md.yaml"
	}
	return filepath.Join(home, ".jira2md.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("jira.verify_ssl", true)
	v.SetDefault("output.directory", "./output")
	v.SetDefault("output.filename_format", "{key}.md")
	v.SetDefault("output.overwrite", false)
	v.SetDefault("markdown.include_metadata_table", true)
	v.SetDefault("markdown.include_comments", true)
	v.SetDefault("markdown.include_attachments", true)
	v.SetDefault("markdown.include_subtasks", true)
	v.SetDefault("markdown.include_links", true)
	v.SetDefault("markdown.date_format", "2006-01-02 15:04:05")
	v.SetDefault("markdown.convert_markup", true)
	v.SetDefault("images.download", false)
	v.SetDefault("images.directory", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")
}

// Load reads config from the YAML file and applies env var overrides.
// configPath may be empty to use the default path.
func Load(configPath string) (Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = DefaultPath()
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// Env var overrides
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.api_token", "JIRA_API_TOKEN")

	// Read the config file (ignore "not found" errors so env vars still work)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only ignore file-not-found; other errors (e.g. parse) are real
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required fields are present.
func (c Config) Validate() error {
	if c.Jira.URL == "" {
		return fmt.Errorf("JIRA URL is required (set in config file or JIRA_URL env var)")
	}
	if c.Jira.Username == "" {
		return fmt.Errorf("JIRA username is required (set in config file or JIRA_USERNAME env var)")
	}
	if c.Jira.APIToken == "" {
		return fmt.Errorf("JIRA API token is required (set in config file or JIRA_API_TOKEN env var)")
	}
	return nil
}

// ImagesDir returns the directory images are downloaded into for the
// given output directory, honoring the configured override.
func (c Config) ImagesDir(outputDir string) string {
	if c.Images.Directory != "" {
		return c.Images.Directory
	}
	return filepath.Join(outputDir, "images")
}

// Save writes the config to the given path (or default path if empty).
func Save(cfg Config, configPath string) error {
	if configPath == "" {
		configPath = DefaultPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
