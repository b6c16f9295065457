package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/circleworks/beacon/internal/config"
)

var geocodeJSONOutput bool

var geocodeCmd = &cobra.Command{
	Use:   "geocode <city>",
	Short: "Resolve a city name to coordinates",
	Long:  "Resolve a free-text city name through the configured geocoding provider, consulting the persistent cache first.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGeocode,
}

func init() {
	geocodeCmd.Flags().BoolVar(&geocodeJSONOutput, "json", false, "Output in JSON format")
}

func runGeocode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver, cache, err := buildResolver(cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	place, err := resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("resolve %q: %w", args[0], err)
	}

	if geocodeJSONOutput {
		return printJSON(cmd.OutOrStdout(), place)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n  lat: %.7f\n  lng: %.7f\n", place.DisplayName, place.Lat, place.Lng)
	return nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
