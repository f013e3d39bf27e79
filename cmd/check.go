package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/reach-cli/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [address...]",
	Short: "Geocode and classify a batch of addresses",
	Long: "Replaces the session's address batch with the given addresses, one per argument or one per line " +
		"of --file (use - for stdin). When an isochrone is current, each address is classified and timed.",
	Example: `  reach check "Eiffel Tower, Paris" "Louvre, Paris"
  reach check --file addresses.txt
  cat addresses.txt | reach check --file -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		single, _ := cmd.Flags().GetBool("single")

		texts, err := collectAddresses(args, file, os.Stdin)
		if err != nil {
			return err
		}
		if len(texts) == 0 {
			return eris.New("check: no addresses given")
		}
		if single && len(texts) != 1 {
			return eris.Errorf("check: --single expects exactly one address, got %d", len(texts))
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if single {
			env.Pipeline.CheckAddress(ctx, texts[0])
		} else {
			env.Pipeline.SubmitAddressBatch(ctx, texts)
		}
		if err := env.Save(ctx); err != nil {
			return err
		}

		records := env.Pipeline.Records()
		formatRecords(os.Stdout, records)
		formatSummary(os.Stdout, env.Pipeline.Summary())
		formatFailures(os.Stdout, records)

		if !env.Pipeline.State().HasIsochrone() {
			fmt.Fprintln(os.Stderr, "No current isochrone; run `reach isochrone` to classify these addresses.")
		}
		return nil
	},
}

// collectAddresses merges positional addresses with those read from file
// ("-" reads stdin), cleaned and in order.
func collectAddresses(args []string, file string, stdin io.Reader) ([]string, error) {
	texts := pipeline.CleanAddresses(args)
	if file == "" {
		return texts, nil
	}

	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, eris.Wrapf(err, "check: open %s", file)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	lines, err := pipeline.ReadAddressLines(r)
	if err != nil {
		return nil, err
	}
	return append(texts, lines...), nil
}

func init() {
	checkCmd.Flags().String("file", "", "read addresses from a file, one per line (- for stdin)")
	checkCmd.Flags().Bool("single", false, "check exactly one address")
	rootCmd.AddCommand(checkCmd)
}
