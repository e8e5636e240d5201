// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"folio/internal/logfields"
)

// ErrInvalidConfig marks configuration problems that must stop a build before
// any output is touched.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables that take precedence over site.yaml values.
const (
	EnvURL       = "FOLIO_URL"
	EnvBasePath  = "FOLIO_BASE_PATH"
	EnvOutputDir = "FOLIO_OUTPUT_DIR"
)

// SiteConfig holds the configuration from the site.yaml file.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	BasePath    string `yaml:"base_path"`

	// ItemsPerIndex bounds the home page and is the page size of category
	// indexes. Zero lists everything on a single page.
	ItemsPerIndex int `yaml:"items_per_index"`
	// FeedItemCount defaults to ItemsPerIndex when unset. Zero means all.
	FeedItemCount *int `yaml:"feed_item_count"`
	Feeds         bool `yaml:"feeds"`

	Unsafe  bool `yaml:"unsafe"`
	Workers int  `yaml:"workers"`

	// Extras are opaque HTML snippets (comments, analytics, search box)
	// handed to layouts as-is.
	Extras map[string]string `yaml:"extras"`
	// Converters maps a file extension to an external command that reads the
	// document on stdin and writes HTML to stdout.
	Converters map[string][]string `yaml:"converters"`

	ContentDir string `yaml:"content_dir"`
	LayoutDir  string `yaml:"layout_dir"`
	StaticDir  string `yaml:"static_dir"`
	OutputDir  string `yaml:"output_dir"`
}

// Default returns the configuration used for keys missing from site.yaml.
func Default() SiteConfig {
	return SiteConfig{
		Title:         "My Site",
		BasePath:      "/",
		ItemsPerIndex: 10,
		Feeds:         true,
		Workers:       runtime.NumCPU(),
		ContentDir:    "content",
		LayoutDir:     "layout",
		StaticDir:     "static",
		OutputDir:     "public",
	}
}

// LoadSiteConfig reads path on top of Default, expanding ${VAR} references
// and applying environment overrides. The result is not validated.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	LoadEnvFiles(filepath.Dir(path))
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadEnvFiles loads .env and .env.local from dir when present. Variables
// already set in the process environment are left alone.
func LoadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(p), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment file", logfields.Path(p))
	}
}

// ApplyEnv overrides cfg with FOLIO_* environment variables.
func ApplyEnv(cfg *SiteConfig) {
	if v := os.Getenv(EnvURL); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv(EnvBasePath); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
}

// Validate normalizes URL and base path and reports every fatal problem.
func (c *SiteConfig) Validate() error {
	var problems []string

	if c.ItemsPerIndex < 0 {
		problems = append(problems, "items_per_index must not be negative")
	}
	if c.FeedItemCount != nil && *c.FeedItemCount < 0 {
		problems = append(problems, "feed_item_count must not be negative")
	}
	if c.Workers < 0 {
		problems = append(problems, "workers must not be negative")
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ContentDir == "" || c.OutputDir == "" {
		problems = append(problems, "content_dir and output_dir are required")
	}

	c.BasePath = normalizeBasePath(c.BasePath)

	if c.URL != "" || c.Feeds {
		u, err := url.Parse(c.URL)
		switch {
		case c.URL == "":
			problems = append(problems, "url is required when feeds are enabled")
		case err != nil:
			problems = append(problems, fmt.Sprintf("url %q: %v", c.URL, err))
		case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
			problems = append(problems, fmt.Sprintf("url %q must be an absolute http(s) URL", c.URL))
		default:
			c.URL = strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/")
		}
	}

	for ext, argv := range c.Converters {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("converter key %q must be a file extension like .rst", ext))
		}
		if len(argv) == 0 || argv[0] == "" {
			problems = append(problems, fmt.Sprintf("converter for %s has no command", ext))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// FeedLimit returns the number of entries per feed; zero means no limit.
func (c SiteConfig) FeedLimit() int {
	if c.FeedItemCount != nil {
		return *c.FeedItemCount
	}
	return c.ItemsPerIndex
}

// Link returns the site-relative link for a slash-separated output path.
func (c SiteConfig) Link(outputPath string) string {
	return c.BasePath + strings.TrimPrefix(outputPath, "/")
}

// AbsURL returns the absolute URL for a slash-separated output path.
func (c SiteConfig) AbsURL(outputPath string) string {
	return c.URL + c.Link(outputPath)
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	p = path.Clean("/" + p)
	if p == "/" {
		return p
	}
	return p + "/"
}
