// Package config loads todoscan's layered JSONC configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/todoscan/internal/fs"
	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/scan"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrNoPriorities       = errors.New("priorities cannot be empty")
	ErrNegativeWorkers    = errors.New("workers cannot be negative")
)

// FileName is the project config file name.
const FileName = ".todoscan.json"

// Priority is one configured priority level.
type Priority struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Config holds all configuration options.
type Config struct {
	Priorities       []Priority `json:"priorities"`
	IssuePattern     string     `json:"issue_pattern"`
	IssueURLTemplate string     `json:"issue_url_template,omitempty"`
	Markers          []string   `json:"markers"`
	CommentPrefixes  []string   `json:"comment_prefixes"`
	Extensions       []string   `json:"extensions"`
	ExcludeDirs      []string   `json:"exclude_dirs"`
	Workers          int        `json:"workers"`

	// EffectiveCwd is the absolute working directory (from -C or os.Getwd).
	EffectiveCwd string `json:"-"`

	// Sources tracks which config files were loaded.
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	levels := priority.DefaultLevels()
	prios := make([]Priority, len(levels))

	for i, l := range levels {
		prios[i] = Priority{Name: l.Name, Color: l.Color}
	}

	return Config{
		Priorities:      prios,
		IssuePattern:    todo.DefaultIssuePattern,
		Markers:         []string{todo.DefaultMarker},
		CommentPrefixes: todo.DefaultCommentPrefixes(),
		Extensions: []string{
			"java", "kt", "kts", "js", "ts", "jsx", "tsx", "py", "go", "rs", "cpp",
			"c", "h", "hpp", "cs", "swift", "rb", "php", "scala", "groovy", "xml", "html",
		},
		ExcludeDirs: []string{".git", "node_modules", "vendor", ".idea", "build", "dist"},
	}
}

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/todoscan/config.json if set, otherwise
// ~/.config/todoscan/config.json. Returns "" if neither is known.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "todoscan", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "todoscan", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Workers         *int              // --workers flag value; nil means no override
	Env             map[string]string // environment variables
	FS              fs.FS             // reads config files; nil means the real filesystem
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/todoscan/config.json or $XDG_CONFIG_HOME/todoscan/config.json)
// 3. Project config file (.todoscan.json in the working directory, if it exists)
// 4. Explicit config file via ConfigPath (replaces 3; must exist)
// 5. CLI overrides.
//
// A file only overrides the keys it sets. Lists replace, they never append.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	absWorkDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	fsys := input.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	cfg := Default()

	if path := globalPath(input.Env); path != "" {
		loaded, err := loadFile(fsys, &cfg, path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = path
		}
	}

	projectPath, mustExist := filepath.Join(absWorkDir, FileName), false

	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(absWorkDir, projectPath)
		}

		exists, existsErr := fsys.Exists(projectPath)
		if existsErr != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, projectPath, existsErr)
		}

		if !exists {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}
	}

	loaded, err := loadFile(fsys, &cfg, projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	if input.Workers != nil {
		cfg.Workers = *input.Workers
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = absWorkDir

	return cfg, nil
}

// loadFile overlays the keys present in the file at path onto cfg.
// If mustExist is false, a missing file is not an error.
func loadFile(fsys fs.FS, cfg *Config, path string, mustExist bool) (bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return false, nil
		}

		return false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	err = overlay(cfg, data)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return true, nil
}

// overlay decodes JSONC data onto cfg. Only keys present in data are
// touched, so an explicit "" or [] is honored while an absent key keeps
// the lower layer's value.
func overlay(cfg *Config, data []byte) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}

	var raw map[string]json.RawMessage

	err = json.Unmarshal(standardized, &raw)
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	fields := map[string]any{
		"priorities":         &cfg.Priorities,
		"issue_pattern":      &cfg.IssuePattern,
		"issue_url_template": &cfg.IssueURLTemplate,
		"markers":            &cfg.Markers,
		"comment_prefixes":   &cfg.CommentPrefixes,
		"extensions":         &cfg.Extensions,
		"exclude_dirs":       &cfg.ExcludeDirs,
		"workers":            &cfg.Workers,
	}

	for key, value := range raw {
		target, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown key %q", key)
		}

		err = json.Unmarshal(value, target)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}

// Validate checks invariants a loaded config must satisfy.
func (c Config) Validate() error {
	if len(c.Priorities) == 0 {
		return ErrNoPriorities
	}

	if _, err := c.Registry(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if c.Workers < 0 {
		return ErrNegativeWorkers
	}

	return nil
}

// Registry builds the priority registry from the configured levels.
func (c Config) Registry() (*priority.Registry, error) {
	levels := make([]priority.Level, len(c.Priorities))

	for i, p := range c.Priorities {
		levels[i] = priority.Level{Name: p.Name, Color: p.Color}
	}

	return priority.NewRegistry(levels)
}

// IssuePatternError reports whether the configured issue pattern fails to
// compile. The parser silently disables issue inference in that case; the
// CLI surfaces it as a warning.
func (c Config) IssuePatternError() error {
	if c.IssuePattern == "" {
		return nil
	}

	_, err := regexp.Compile(c.IssuePattern)

	return err
}

// ParserConfig returns the parser settings.
func (c Config) ParserConfig() todo.ParserConfig {
	return todo.ParserConfig{
		Markers:         c.Markers,
		CommentPrefixes: c.CommentPrefixes,
		IssuePattern:    c.IssuePattern,
	}
}

// ScanOptions returns the file walker settings.
func (c Config) ScanOptions() scan.Options {
	return scan.Options{
		Extensions:  c.Extensions,
		ExcludeDirs: c.ExcludeDirs,
		Workers:     c.Workers,
	}
}

// Format renders the resolved configuration as indented JSON.
func Format(c Config) (string, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}
