package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

var originCmd = &cobra.Command{
	Use:   "origin",
	Short: "Set the origin of the reachability zone",
	Long: "Sets the origin from coordinates (--lat and --lon) or by geocoding an address (--address). " +
		"A different origin marks the isochrone stale and clears every classification.",
	Example: `  reach origin --lat 48.858370 --lon 2.294481
  reach origin --address "Place de la Concorde, Paris"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		address, _ := cmd.Flags().GetString("address")
		hasCoords := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
		if address != "" && hasCoords {
			return eris.New("origin: use either --address or --lat/--lon")
		}
		if address == "" && !(cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")) {
			return eris.New("origin: --lat and --lon are both required without --address")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if address != "" {
			loc, err := env.Pipeline.SetOriginByAddress(ctx, address)
			if err != nil {
				return eris.Wrap(err, "origin")
			}
			fmt.Fprintf(os.Stdout, "Origin: %s (%s)\n", loc.Label, loc.Coordinate)
		} else {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			if err := env.Pipeline.SetOrigin(geo.Coordinate{Lat: lat, Lon: lon}); err != nil {
				return eris.Wrap(err, "origin")
			}
			fmt.Fprintf(os.Stdout, "Origin: %s\n", env.Pipeline.Session().Origin)
		}

		if err := env.Save(ctx); err != nil {
			return err
		}
		printStaleHint(env.Pipeline.Session())
		return nil
	},
}

// printStaleHint tells the operator to recompute after a parameter change.
func printStaleHint(sess *model.Session) {
	if sess.State == model.StateIdle && sess.Isochrone != nil {
		fmt.Fprintln(os.Stderr, "Isochrone is stale; run `reach isochrone` to recompute.")
	}
}

func init() {
	originCmd.Flags().Float64("lat", 0, "origin latitude in decimal degrees")
	originCmd.Flags().Float64("lon", 0, "origin longitude in decimal degrees")
	originCmd.Flags().String("address", "", "geocode this address and use it as the origin")
	rootCmd.AddCommand(originCmd)
}
