package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coffeeify/internal/cache"
	"coffeeify/internal/compiler"
	"coffeeify/internal/config"
	"coffeeify/internal/driver"
)

// env is the wiring shared by the compile and bundle commands.
type env struct {
	cfg    config.Config
	store  *cache.Store
	driver *driver.Driver
}

// loadConfig reads --config or discovers the nearest config file, then
// applies the global overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err == nil {
			cfg, err = config.Discover(wd)
		}
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}

	if dir, _ := flags.GetString("cache-dir"); dir != "" {
		cfg.CacheDir = dir
	}
	if coffee, _ := flags.GetString("coffee"); coffee != "" {
		cfg.Coffee = coffee
	}
	return cfg, nil
}

func newEnv(cmd *cobra.Command, timings bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store := cache.Open(cfg.CacheDir)
	exec := compiler.NewExec(cfg.Coffee)
	exec.Args = cfg.CoffeeArgs
	d := driver.New(store, exec, driver.Config{
		SourceMap: cfg.SourceMap,
		Dedupe:    cfg.Dedupe,
		Timings:   timings,
	})
	return &env{cfg: cfg, store: store, driver: d}, nil
}
