package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var isochroneCmd = &cobra.Command{
	Use:   "isochrone",
	Short: "Compute the isochrone for the current origin and parameters",
	Long: "Requests the reachable area from OpenRouteService. On success any addresses already " +
		"in the session are re-evaluated; on failure the previous session is kept unchanged.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		raw, _ := cmd.Flags().GetBool("raw")

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.RecomputeIsochrone(ctx); err != nil {
			return eris.Wrap(err, "isochrone")
		}
		if err := env.Save(ctx); err != nil {
			return err
		}

		sess := env.Pipeline.Session()
		if raw {
			if _, err := fmt.Fprintf(os.Stdout, "%s\n", sess.Isochrone.Raw()); err != nil {
				return eris.Wrap(err, "isochrone: write raw response")
			}
			return nil
		}

		fmt.Fprintf(os.Stdout, "Isochrone: %s within %d min %s of %s\n",
			isochroneStatus(sess), sess.Minutes, sess.Mode.Label(), sess.Origin)
		if len(sess.Records) > 0 {
			fmt.Fprintln(os.Stdout)
			formatRecords(os.Stdout, sess.Records)
			formatSummary(os.Stdout, sess.Summary())
		}
		return nil
	},
}

func init() {
	isochroneCmd.Flags().Bool("raw", false, "print the raw GeoJSON response")
	rootCmd.AddCommand(isochroneCmd)
}
