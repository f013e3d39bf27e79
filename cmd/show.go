package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

// sessionReport is the JSON shape of `reach show --format json`.
type sessionReport struct {
	ID                string                `json:"id"`
	Origin            geo.Coordinate        `json:"origin"`
	Mode              geo.TravelMode        `json:"mode"`
	Minutes           int                   `json:"minutes"`
	State             model.State           `json:"state"`
	HasIsochrone      bool                  `json:"has_isochrone"`
	IsochroneStale    bool                  `json:"isochrone_stale"`
	BatchID           string                `json:"batch_id,omitempty"`
	Records           []model.AddressRecord `json:"records"`
	Summary           model.Summary         `json:"summary"`
	CredentialMissing bool                  `json:"credential_missing"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session and its address results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		format, _ := cmd.Flags().GetString("format")
		if format != "table" && format != "json" {
			return eris.Errorf("show: unknown format %q (want table or json)", format)
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sess := env.Pipeline.Session()
		if format == "json" {
			return writeSessionJSON(os.Stdout, sess, cfg.MissingCredential())
		}

		formatSession(os.Stdout, sess, cfg.MissingCredential())
		if len(sess.Records) == 0 {
			fmt.Fprintln(os.Stdout, "\nNo addresses checked yet.")
			return nil
		}
		fmt.Fprintln(os.Stdout)
		formatRecords(os.Stdout, sess.Records)
		formatSummary(os.Stdout, sess.Summary())
		return nil
	},
}

func writeSessionJSON(out io.Writer, sess *model.Session, credentialMissing bool) error {
	report := sessionReport{
		ID:                sess.ID,
		Origin:            sess.Origin,
		Mode:              sess.Mode,
		Minutes:           sess.Minutes,
		State:             sess.State,
		HasIsochrone:      sess.Isochrone != nil,
		IsochroneStale:    sess.IsochroneStale,
		BatchID:           sess.BatchID,
		Records:           sess.Records,
		Summary:           sess.Summary(),
		CredentialMissing: credentialMissing,
		UpdatedAt:         sess.UpdatedAt,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(report), "show: encode json")
}

func init() {
	showCmd.Flags().String("format", "table", "output format: table or json")
	rootCmd.AddCommand(showCmd)
}
