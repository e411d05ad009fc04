package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the codeinsights configuration.
type Config struct {
	Owner          string `yaml:"owner,omitempty"`
	Slug           string `yaml:"slug,omitempty"`
	Commit         string `yaml:"-"`
	BuildNumber    string `yaml:"-"`
	APIURL         string `yaml:"apiURL"`
	ProxyURL       string `yaml:"proxyURL"`
	FailurePolicy  string `yaml:"failurePolicy"`
	Sort           bool   `yaml:"sort"`
	AnnotationType string `yaml:"annotationType,omitempty"`
	BaseDir        string `yaml:"baseDir,omitempty"`
	Format         string `yaml:"format"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	Debug          bool   `yaml:"debug"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		APIURL:         "http://api.bitbucket.org",
		ProxyURL:       "http://host.docker.internal:29418",
		FailurePolicy:  "fail-fast",
		Format:         "text",
		TimeoutSeconds: 60,
	}
}

var (
	validPolicies        = []string{"fail-fast", "fail-open"}
	validFormats         = []string{"text", "json", "markdown", "sarif"}
	validAnnotationTypes = []string{"", "VULNERABILITY", "CODE_SMELL", "BUG"}
)

// ErrMissingTarget is returned by Validate when the repository or commit is unknown.
var ErrMissingTarget = errors.New("repository owner, slug and commit must be set " +
	"(BITBUCKET_REPO_OWNER, BITBUCKET_REPO_SLUG, BITBUCKET_COMMIT or flags)")

// Validate checks option values. requireTarget additionally demands owner,
// slug and commit, which only submission needs.
func (c Config) Validate(requireTarget bool) error {
	if !contains(validPolicies, c.FailurePolicy) {
		return fmt.Errorf("invalid failurePolicy %q (want %s)", c.FailurePolicy, strings.Join(validPolicies, " or "))
	}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(validFormats, ", "))
	}
	if !contains(validAnnotationTypes, c.AnnotationType) {
		return fmt.Errorf("invalid annotationType %q", c.AnnotationType)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", c.TimeoutSeconds)
	}
	if requireTarget && (c.Owner == "" || c.Slug == "" || c.Commit == "") {
		return ErrMissingTarget
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ConfigDir returns the platform-appropriate config directory for codeinsights.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeinsights"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "codeinsights"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codeinsights"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "codeinsights"), nil
	default:
		return filepath.Join(home, ".config", "codeinsights"), nil
	}
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return ConfigPath()
}

// LoadFile loads config from path, or the default config file when path is
// empty. A missing default file yields a zero Config and nil error; a missing
// explicit path is an error.
func LoadFile(path string) (Config, error) {
	explicit := path != ""
	path, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, or the default config file when path is empty.
func Save(path string, cfg Config) error {
	path, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnvFiles loads dotenv files into the process environment. Variables
// that are already set keep their values; missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := gotenv.Load(p); err != nil {
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// path selects the config file ("" for the default location). The overrides
// map comes from CLI flags (only flags the user set should be present).
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Owner != "" {
		dst.Owner = src.Owner
	}
	if src.Slug != "" {
		dst.Slug = src.Slug
	}
	if src.APIURL != "" {
		dst.APIURL = src.APIURL
	}
	if src.ProxyURL != "" {
		dst.ProxyURL = src.ProxyURL
	}
	if src.FailurePolicy != "" {
		dst.FailurePolicy = src.FailurePolicy
	}
	if src.AnnotationType != "" {
		dst.AnnotationType = src.AnnotationType
	}
	if src.BaseDir != "" {
		dst.BaseDir = src.BaseDir
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	// Booleans default to false, so a file can only switch them on.
	dst.Sort = src.Sort || dst.Sort
	dst.Debug = src.Debug || dst.Debug
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("BITBUCKET_REPO_OWNER"); v != "" {
		cfg.Owner = v
	}
	if v := os.Getenv("BITBUCKET_REPO_SLUG"); v != "" {
		cfg.Slug = v
	}
	if v := os.Getenv("BITBUCKET_COMMIT"); v != "" {
		cfg.Commit = v
	}
	if v := os.Getenv("BITBUCKET_BUILD_NUMBER"); v != "" {
		cfg.BuildNumber = v
	}
	if v := os.Getenv("CODEINSIGHTS_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("CODEINSIGHTS_PROXY_URL"); v != "" {
		cfg.ProxyURL = v
	}
	if v := os.Getenv("CODEINSIGHTS_FAILURE_POLICY"); v != "" {
		cfg.FailurePolicy = v
	}
	// Any non-empty DONT_BREAK_BUILD means fail-open.
	if v := os.Getenv("DONT_BREAK_BUILD"); v != "" {
		cfg.FailurePolicy = "fail-open"
	}
	if v := os.Getenv("CODEINSIGHTS_SORT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CODEINSIGHTS_SORT must be a boolean: %w", err)
		}
		cfg.Sort = b
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "owner":
		cfg.Owner = value
	case "slug":
		cfg.Slug = value
	case "commit":
		cfg.Commit = value
	case "buildNumber":
		cfg.BuildNumber = value
	case "apiURL":
		cfg.APIURL = value
	case "proxyURL":
		cfg.ProxyURL = value
	case "failurePolicy":
		cfg.FailurePolicy = value
	case "annotationType":
		cfg.AnnotationType = strings.ToUpper(value)
	case "baseDir":
		cfg.BaseDir = value
	case "format":
		cfg.Format = value
	case "sort":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("sort must be a boolean: %w", err)
		}
		cfg.Sort = b
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("debug must be a boolean: %w", err)
		}
		cfg.Debug = b
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
