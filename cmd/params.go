package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/reach-cli/internal/geo"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Set the travel mode and duration",
	Long: "Sets the travel mode (walking, cycling, driving) and the isochrone duration in minutes. " +
		"An effective change marks the isochrone stale and clears every classification.",
	Example: `  reach params --mode cycling --minutes 15`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		modeChanged := cmd.Flags().Changed("mode")
		minutesChanged := cmd.Flags().Changed("minutes")
		if !modeChanged && !minutesChanged {
			return eris.New("params: set at least one of --mode or --minutes")
		}

		var mode geo.TravelMode
		if modeChanged {
			raw, _ := cmd.Flags().GetString("mode")
			m, err := geo.ParseTravelMode(raw)
			if err != nil {
				return eris.Wrap(err, "params")
			}
			mode = m
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if minutesChanged {
			minutes, _ := cmd.Flags().GetInt("minutes")
			if err := env.Pipeline.SetDuration(minutes); err != nil {
				return eris.Wrap(err, "params")
			}
		}
		if modeChanged {
			if err := env.Pipeline.SetMode(mode); err != nil {
				return eris.Wrap(err, "params")
			}
		}

		if err := env.Save(ctx); err != nil {
			return err
		}

		sess := env.Pipeline.Session()
		fmt.Fprintf(os.Stdout, "Mode: %s (%s), duration: %d min\n", sess.Mode, sess.Mode.Label(), sess.Minutes)
		printStaleHint(sess)
		return nil
	},
}

func init() {
	paramsCmd.Flags().String("mode", "", "travel mode: walking, cycling or driving")
	paramsCmd.Flags().Int("minutes", 0, "isochrone duration in minutes")
	rootCmd.AddCommand(paramsCmd)
}
