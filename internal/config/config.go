// Package config locates, decodes and validates the vwplan configuration.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/vwplan/internal/plan"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	WikiPath string                   `json:"wiki_path" yaml:"wiki_path"`
	TagsFile string                   `json:"tags_file" yaml:"tags_file"`
	TempPath string                   `json:"temp_path" yaml:"temp_path"`
	DiaryDir string                   `json:"diary_dir" yaml:"diary_dir"`
	Sections []string                 `json:"sections"  yaml:"sections"`
	Tags     map[string]plan.Template `json:"tags"      yaml:"tags"`

	// Source is the file the config was loaded from (computed, not serialized).
	Source string `json:"-" yaml:"-"`
}

// wrapped is the on-disk shape written by older setups: everything nested
// under a top-level "config" key.
type wrapped struct {
	Config *Config `json:"config" yaml:"config"`
}

// IndexPath returns the tag index file.
func (c Config) IndexPath() string {
	return filepath.Join(c.WikiPath, c.TagsFile)
}

// DiaryPath returns the directory plans are written to.
func (c Config) DiaryPath() string {
	return filepath.Join(c.WikiPath, c.DiaryDir)
}

// TargetPath returns the plan file for date.
func (c Config) TargetPath(date time.Time) string {
	return filepath.Join(c.DiaryPath(), plan.TargetName(date))
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir          string            // base for relative paths; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	TempPathOverride string            // --temp-path flag value; empty means no override
	Env              map[string]string // environment variables
}

// Load finds, decodes and validates the configuration.
//
// An explicit ConfigPath must exist. Otherwise the first existing file from
// [SearchPaths] is used.
//
// wiki_path and temp_path are expanded against Env and made absolute
// relative to WorkDir.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	path, err := locate(workDir, input.ConfigPath, input.Env)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigRead, path, err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if input.TempPathOverride != "" {
		cfg.TempPath = input.TempPathOverride
	}

	cfg.Source = path
	cfg.WikiPath = resolve(workDir, expand(cfg.WikiPath, input.Env))

	if cfg.TempPath != "" {
		cfg.TempPath = resolve(workDir, expand(cfg.TempPath, input.Env))
	}

	return cfg, nil
}

// SearchPaths returns the well-known config locations in lookup order.
// Entries whose variables are unset are omitted.
func SearchPaths(env map[string]string) []string {
	var paths []string

	if p := env["VWPLAN_CONFIG"]; p != "" {
		paths = append(paths, p)
	}

	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		paths = append(paths, filepath.Join(xdg, "vwplan", "config.json"))
	} else if home := env["HOME"]; home != "" {
		paths = append(paths, filepath.Join(home, ".config", "vwplan", "config.json"))
	}

	if home := env["HOME"]; home != "" {
		paths = append(paths, filepath.Join(home, ".vwplan_conf.json"))
	}

	return append(paths, "/etc/vwplan_conf.json")
}

func locate(workDir, configPath string, env map[string]string) (string, error) {
	// $VWPLAN_CONFIG names a file as explicitly as -c does.
	if configPath == "" {
		configPath = env["VWPLAN_CONFIG"]
	}

	if configPath != "" {
		path := resolve(workDir, configPath)

		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}

		return path, nil
	}

	candidates := SearchPaths(env)
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w (searched %s)", ErrConfigNotFound, strings.Join(candidates, ", "))
}

// Parse decodes and validates config data. The format follows the file
// extension: .yaml/.yml is YAML, anything else JSON with comments and
// trailing commas allowed.
func Parse(path string, data []byte) (Config, error) {
	var (
		cfg Config
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		cfg, err = parseJSON(data)
	}

	if err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseJSON(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var outer wrapped

	if err := json.Unmarshal(standardized, &outer); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if outer.Config != nil {
		return *outer.Config, nil
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	var outer wrapped

	if err := yaml.Unmarshal(data, &outer); err != nil {
		return Config{}, fmt.Errorf("invalid YAML: %w", err)
	}

	if outer.Config != nil {
		return *outer.Config, nil
	}

	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid YAML: %w", err)
	}

	return cfg, nil
}

// Validate checks required keys, section names and every template.
func Validate(cfg Config) error {
	required := []struct {
		key   string
		empty bool
	}{
		{"wiki_path", cfg.WikiPath == ""},
		{"tags_file", cfg.TagsFile == ""},
		{"diary_dir", cfg.DiaryDir == ""},
		{"sections", len(cfg.Sections) == 0},
		{"tags", len(cfg.Tags) == 0},
	}

	for _, r := range required {
		if r.empty {
			return fmt.Errorf("%w: %s", ErrMissingKey, r.key)
		}
	}

	seen := make(map[string]bool, len(cfg.Sections))
	for _, s := range cfg.Sections {
		if seen[s] {
			return fmt.Errorf("%w: %q", ErrDuplicateSection, s)
		}

		seen[s] = true
	}

	for _, key := range slices.Sorted(maps.Keys(cfg.Tags)) {
		tpl := cfg.Tags[key]

		if err := tpl.Validate(); err != nil {
			return fmt.Errorf("tags.%s: %w", key, err)
		}

		if !seen[tpl.Section] {
			return fmt.Errorf("tags.%s: %w: %q", key, plan.ErrUnknownSection, tpl.Section)
		}
	}

	return nil
}

// CheckWikiRoot returns [ErrWikiRootMissing] unless wiki_path is a directory.
func (c Config) CheckWikiRoot() error {
	info, err := os.Stat(c.WikiPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrWikiRootMissing, c.WikiPath)
	}

	return nil
}

func expand(s string, env map[string]string) string {
	return os.Expand(s, func(key string) string {
		return env[key]
	})
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}
