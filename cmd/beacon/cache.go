package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/circleworks/beacon/internal/config"
	"github.com/circleworks/beacon/internal/geo"
)

var cachePathOverride string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent geocode cache",
	Long:  "Inspect and clear the geocode cache without running the server.",
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cachePathOverride, "path", "",
		"Cache database path (overrides config and BEACON_GEOCACHE_PATH)")

	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// resolveCache opens the cache from config with optional --path override.
func resolveCache() (*geo.Cache, error) {
	path := cachePathOverride
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		path = cfg.GeoCache.Path
	}
	return geo.OpenCache(path)
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show geocode cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := resolveCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		count, err := cache.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "cached places: %d\n", count)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached geocode entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := resolveCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		removed, err := cache.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached places\n", removed)
		return nil
	},
}
