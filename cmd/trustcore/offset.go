package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mealshare/trustcore/pkg/cli"
	"mealshare/trustcore/pkg/location"
)

var offsetFlags struct {
	key       string
	address   string
	owner     string
	lat       float64
	lng       float64
	maxOffset float64
	output    string
}

var offsetCmd = &cobra.Command{
	Use:   "offset",
	Short: "Compute the public location offset for a key",
	Long: `Compute the deterministic offset applied to a listing's location.

The location key is given directly with --key or built from --address and
--owner; an address always needs an owner. If --lat and --lng are given
(they come as a pair), the public point is printed as well. The radius
defaults to location.max_offset_degrees from the configuration; an explicit
--max-offset must be positive.

Examples:
  trustcore offset --key "Hauptstraße 12owner-42"
  trustcore offset --address "Hauptstraße 12" --owner owner-42 --lat 52.52 --lng 13.405
  trustcore offset --key abc --max-offset 0.01 --output json`,
	RunE: runOffset,
}

func init() {
	rootCmd.AddCommand(offsetCmd)

	offsetCmd.Flags().StringVarP(&offsetFlags.key, "key", "k", "", "location key")
	offsetCmd.Flags().StringVar(&offsetFlags.address, "address", "", "pickup address (with --owner, instead of --key)")
	offsetCmd.Flags().StringVar(&offsetFlags.owner, "owner", "", "owner ID")
	offsetCmd.Flags().Float64Var(&offsetFlags.lat, "lat", 0, "true latitude")
	offsetCmd.Flags().Float64Var(&offsetFlags.lng, "lng", 0, "true longitude")
	offsetCmd.Flags().Float64Var(&offsetFlags.maxOffset, "max-offset", 0, "maximum offset in degrees (overrides location.max_offset_degrees)")
	offsetCmd.Flags().StringVarP(&offsetFlags.output, "output", "o", "text", "output format: text, json")
}

// OffsetResult is printed by the offset command.
type OffsetResult struct {
	MaxOffsetDegrees float64         `json:"max_offset_degrees"`
	Offset           location.Offset `json:"offset"`
	Public           *location.Point `json:"public,omitempty"`
}

func runOffset(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(offsetFlags.output)
	if err != nil {
		return err
	}

	radius := offsetFlags.maxOffset
	if !flagChanged(cmd, "max-offset") {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		radius = cfg.Location.MaxOffsetDegrees
	}

	obfuscator, err := location.NewObfuscator(radius)
	if err != nil {
		return err
	}

	key := offsetFlags.key
	if key == "" && (offsetFlags.address != "" || offsetFlags.owner != "") {
		if key, err = location.Key(offsetFlags.address, offsetFlags.owner); err != nil {
			return err
		}
	}

	offset, err := obfuscator.Offset(key)
	if err != nil {
		return err
	}
	result := OffsetResult{MaxOffsetDegrees: radius, Offset: offset}

	hasLat, hasLng := flagChanged(cmd, "lat"), flagChanged(cmd, "lng")
	switch {
	case hasLat && !hasLng:
		return &location.ArgumentError{Field: "lng", Message: "is required with --lat"}
	case hasLng && !hasLat:
		return &location.ArgumentError{Field: "lat", Message: "is required with --lng"}
	}
	if hasLat && hasLng {
		public, err := obfuscator.Public(key, location.Point{Lat: offsetFlags.lat, Lng: offsetFlags.lng})
		if err != nil {
			return err
		}
		result.Public = &public
	}

	w := stdout(cmd)
	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(w, result)
	}

	fmt.Fprintf(w, "Offset:  lat %+.6f  lng %+.6f  (radius %g°)\n", offset.Lat, offset.Lng, radius)
	if result.Public != nil {
		fmt.Fprintf(w, "Public:  lat %.6f  lng %.6f\n", result.Public.Lat, result.Public.Lng)
	}
	return nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd != nil && cmd.Flags().Changed(name)
}
