package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/driver"
	"quill/internal/lang"
	"quill/internal/trace"
)

// loadConfig reads --config, or discovers quill.toml from the first path,
// and applies the project flag overrides.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(startDir(args))
	}
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("lang-version") {
		v, err := flags.GetString("lang-version")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get lang-version flag: %w", err)
		}
		cfg.Project.LanguageVersion = v
	}
	if flags.Changed("root-namespace") {
		ns, err := flags.GetString("root-namespace")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get root-namespace flag: %w", err)
		}
		cfg.Project.RootNamespace = ns
	}
	if flags.Changed("design-time") {
		dt, err := flags.GetBool("design-time")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get design-time flag: %w", err)
		}
		cfg.Project.DesignTime = dt
	}
	if flags.Changed("cache") {
		on, err := flags.GetBool("cache")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get cache flag: %w", err)
		}
		cfg.Cache.Disk = on
	}
	// проверяем итоговую конфигурацию сразу, до чтения файлов
	if _, err := cfg.Engine(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// startDir is where quill.toml is searched from: the first path, or the
// working directory.
func startDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	info, err := os.Stat(args[0])
	if err == nil && info.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}

// driverOptions builds the options of a compilation run over args.
func driverOptions(cmd *cobra.Command, cfg config.Config, args []string) (driver.Options, error) {
	flags := cmd.Root().PersistentFlags()
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	kindStr, err := flags.GetString("file-kind")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get file-kind flag: %w", err)
	}

	opts := driver.Options{
		Config:         cfg,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Tracer:         trace.FromContext(cmd.Context()),
		Timings:        timings,
	}
	if kindStr != "" {
		kind, ok := lang.ParseFileKind(kindStr)
		if !ok {
			return driver.Options{}, fmt.Errorf("invalid --file-kind value %q (expected legacy|component|component-import)", kindStr)
		}
		opts.FileKind = &kind
	}

	paths, err := absPaths(args, cfg.Root)
	if err != nil {
		return driver.Options{}, err
	}
	opts.Paths = paths

	if cfg.Cache.Disk {
		dc, err := openCache(cfg)
		if err != nil {
			return driver.Options{}, err
		}
		opts.DiskCache = dc
	}
	return opts, nil
}

// absPaths makes args absolute so the driver can place them below the
// project root; no args means the whole project.
func absPaths(args []string, root string) ([]string, error) {
	if len(args) == 0 {
		return []string{root}, nil
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func openCache(cfg config.Config) (*cache.DiskCache, error) {
	if dir := cfg.CacheDir(); dir != "" {
		return cache.Open(dir)
	}
	return cache.OpenDefault("quill")
}
