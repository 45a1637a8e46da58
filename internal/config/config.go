// Package config loads quill.toml, the project configuration, and turns it
// into an engine configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"quill/internal/engine"
	"quill/internal/lang"
)

// FileName is the configuration file looked up from the start directory
// upwards.
const FileName = "quill.toml"

// Config mirrors quill.toml.
type Config struct {
	Project    ProjectConfig    `toml:"project"`
	CodeGen    CodeGenConfig    `toml:"codegen"`
	TagHelpers TagHelpersConfig `toml:"taghelpers"`
	Imports    ImportsConfig    `toml:"imports"`
	Cache      CacheConfig      `toml:"cache"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`
	// Root is the project root: the directory of Path, else the start
	// directory.
	Root string `toml:"-"`
}

type ProjectConfig struct {
	RootNamespace   string `toml:"root_namespace"`
	LanguageVersion string `toml:"language_version"`
	DesignTime      bool   `toml:"design_time"`
}

type CodeGenConfig struct {
	IndentSize                 int    `toml:"indent_size"`
	IndentWithTabs             bool   `toml:"indent_with_tabs"`
	NewLine                    string `toml:"newline"`
	SuppressChecksum           bool   `toml:"suppress_checksum"`
	SuppressMetadataAttributes bool   `toml:"suppress_metadata_attributes"`
	SuppressPrimaryMethodBody  bool   `toml:"suppress_primary_method_body"`
}

type TagHelpersConfig struct {
	// Manifests are JSON descriptor sets, relative to Root.
	Manifests []string `toml:"manifests"`
}

type ImportsConfig struct {
	// SuppressErrors treats unreadable imports as absent.
	SuppressErrors bool `toml:"suppress_errors"`
}

type CacheConfig struct {
	Disk bool   `toml:"disk"`
	Dir  string `toml:"dir"`
}

// Default is the configuration used without quill.toml.
func Default() Config {
	return Config{
		Project: ProjectConfig{LanguageVersion: "latest"},
		CodeGen: CodeGenConfig{IndentSize: 4, NewLine: "lf"},
	}
}

// Find searches startDir and its parents for quill.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover loads the nearest quill.toml above startDir, or the defaults
// rooted at startDir when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		cfg := Default()
		root, err := filepath.Abs(startDir)
		if err != nil {
			return Config{}, err
		}
		cfg.Root = root
		return cfg, nil
	}
	return Load(path)
}

// Load reads path. Missing keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("project", "root_namespace") && strings.TrimSpace(cfg.Project.RootNamespace) == "" {
		return Config{}, fmt.Errorf("%s: [project].root_namespace is empty", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	if _, err := cfg.Engine(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML text; used for inline configuration and tests.
func Decode(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if _, err := cfg.Engine(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Engine converts the configuration and validates it.
func (c Config) Engine() (engine.Configuration, error) {
	v, err := lang.ParseVersion(c.Project.LanguageVersion)
	if err != nil {
		return engine.Configuration{}, fmt.Errorf("[project].language_version: %w", err)
	}
	nl, err := parseNewLine(c.CodeGen.NewLine)
	if err != nil {
		return engine.Configuration{}, err
	}
	out := engine.Configuration{
		Version:       v,
		DesignTime:    c.Project.DesignTime,
		RootNamespace: c.Project.RootNamespace,
		CodeGen: lang.CodeGenOptions{
			IndentSize:                 c.CodeGen.IndentSize,
			IndentWithTabs:             c.CodeGen.IndentWithTabs,
			NewLine:                    nl,
			DesignTime:                 c.Project.DesignTime,
			RootNamespace:              c.Project.RootNamespace,
			SuppressChecksum:           c.CodeGen.SuppressChecksum,
			SuppressMetadataAttributes: c.CodeGen.SuppressMetadataAttributes,
			SuppressPrimaryMethodBody:  c.CodeGen.SuppressPrimaryMethodBody,
		},
	}
	if err := out.Validate(); err != nil {
		return engine.Configuration{}, err
	}
	return out, nil
}

func parseNewLine(s string) (lang.NewLine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lf":
		return lang.NewLineLF, nil
	case "crlf":
		return lang.NewLineCRLF, nil
	}
	return 0, fmt.Errorf("[codegen].newline: unknown value %q (want lf or crlf)", s)
}

// ManifestPaths resolves the tag helper manifests against Root.
func (c Config) ManifestPaths() []string {
	out := make([]string, 0, len(c.TagHelpers.Manifests))
	for _, m := range c.TagHelpers.Manifests {
		if !filepath.IsAbs(m) {
			m = filepath.Join(c.Root, filepath.FromSlash(m))
		}
		out = append(out, m)
	}
	return out
}

// CacheDir is the disk cache directory; empty means the user cache.
func (c Config) CacheDir() string {
	if c.Cache.Dir == "" || filepath.IsAbs(c.Cache.Dir) {
		return c.Cache.Dir
	}
	return filepath.Join(c.Root, filepath.FromSlash(c.Cache.Dir))
}
