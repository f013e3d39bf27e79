package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

// formatSession prints the origin, parameters and state of a session.
func formatSession(out io.Writer, sess *model.Session, credentialMissing bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Session:\t%s\n", sess.ID)
	fmt.Fprintf(w, "Origin:\t%s\n", sess.Origin)
	fmt.Fprintf(w, "Mode:\t%s (%s)\n", sess.Mode, sess.Mode.Label())
	fmt.Fprintf(w, "Duration:\t%d min\n", sess.Minutes)
	fmt.Fprintf(w, "State:\t%s\n", sess.State)
	fmt.Fprintf(w, "Isochrone:\t%s\n", isochroneStatus(sess))
	fmt.Fprintf(w, "Updated:\t%s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	w.Flush() //nolint:errcheck

	if credentialMissing {
		fmt.Fprintln(out, "\nWarning: no OpenRouteService API key configured (set REACH_ORS_API_KEY).")
	}
}

func isochroneStatus(sess *model.Session) string {
	switch {
	case sess.Isochrone == nil:
		return "none"
	case sess.Isochrone.Malformed():
		return "unusable response"
	case sess.IsochroneStale:
		return fmt.Sprintf("stale (%d polygon(s))", sess.Isochrone.PolygonCount())
	default:
		return fmt.Sprintf("current (%d polygon(s))", sess.Isochrone.PolygonCount())
	}
}

// formatRecords prints one row per address record, in batch order.
func formatRecords(out io.Writer, records []model.AddressRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tADDRESS\tRESOLVED AS\tIN ZONE\tTRAVEL (MIN)")
	fmt.Fprintln(w, "-\t-------\t-----------\t-------\t------------")

	for i, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			truncateStr(r.Input, 40),
			truncateStr(resolvedAs(r), 50),
			inZoneLabel(r.InZone),
			formatTravelMinutes(r.TravelMinutes),
		)
	}
	w.Flush() //nolint:errcheck
}

func resolvedAs(r model.AddressRecord) string {
	switch r.Status {
	case model.GeocodeResolved:
		return r.Label
	case model.GeocodeNotFound:
		return "(not found)"
	default:
		return "(geocoding failed)"
	}
}

func inZoneLabel(c geo.Containment) string {
	switch c {
	case geo.Inside:
		return "yes"
	case geo.Outside:
		return "no"
	default:
		return "unknown"
	}
}

func formatTravelMinutes(m *float64) string {
	if m == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *m)
}

// formatSummary prints the per-classification counts of a batch.
func formatSummary(out io.Writer, s model.Summary) {
	fmt.Fprintf(out, "\n%d address(es): %d inside, %d outside, %d unknown", s.Total, s.Inside, s.Outside, s.Unknown)
	if s.Failed > 0 {
		fmt.Fprintf(out, " (%d not resolved)", s.Failed)
	}
	fmt.Fprintln(out)
}

// formatFailures lists the error detail of every unresolved record.
func formatFailures(out io.Writer, records []model.AddressRecord) {
	for i, r := range records {
		if r.Resolved() || r.Error == "" {
			continue
		}
		fmt.Fprintf(out, "  #%d %s: %s\n", i+1, r.Input, r.Error)
	}
}

func truncateStr(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
