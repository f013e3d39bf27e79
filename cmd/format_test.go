package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

func ptr[T any](v T) *T { return &v }

func sampleRecords() []model.AddressRecord {
	return []model.AddressRecord{
		{
			Input:         "Eiffel Tower, Paris",
			Label:         "Tour Eiffel, Paris, France",
			Status:        model.GeocodeResolved,
			Coordinate:    &geo.Coordinate{Lat: 48.85837, Lon: 2.294481},
			InZone:        geo.Inside,
			TravelMinutes: ptr(3.26),
		},
		{
			Input:      "Louvre, Paris",
			Label:      "Musée du Louvre, Paris, France",
			Status:     model.GeocodeResolved,
			Coordinate: &geo.Coordinate{Lat: 48.860611, Lon: 2.337644},
			InZone:     geo.Outside,
		},
		{
			Input:  "zzzz_not_a_real_place_12345",
			Status: model.GeocodeNotFound,
			Error:  `geocode "zzzz_not_a_real_place_12345": address not found`,
		},
	}
}

func TestFormatRecords(t *testing.T) {
	var buf bytes.Buffer
	formatRecords(&buf, sampleRecords())

	output := buf.String()
	assert.Contains(t, output, "ADDRESS")
	assert.Contains(t, output, "IN ZONE")
	assert.Contains(t, output, "TRAVEL (MIN)")
	assert.Contains(t, output, "Tour Eiffel, Paris, France")
	assert.Contains(t, output, "3.3")
	assert.Contains(t, output, "N/A")
	assert.Contains(t, output, "(not found)")
	assert.Contains(t, output, "yes")
	assert.Contains(t, output, "no")
	assert.Contains(t, output, "unknown")
}

func TestFormatRecords_Order(t *testing.T) {
	var buf bytes.Buffer
	formatRecords(&buf, sampleRecords())

	output := buf.String()
	eiffel := bytes.Index([]byte(output), []byte("Eiffel Tower"))
	louvre := bytes.Index([]byte(output), []byte("Louvre, Paris"))
	missing := bytes.Index([]byte(output), []byte("zzzz_not_a_real"))
	assert.Less(t, eiffel, louvre)
	assert.Less(t, louvre, missing)
}

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	formatSummary(&buf, model.Summarize(sampleRecords()))

	assert.Contains(t, buf.String(), "3 address(es): 1 inside, 1 outside, 1 unknown (1 not resolved)")
}

func TestFormatSummary_NoFailures(t *testing.T) {
	var buf bytes.Buffer
	formatSummary(&buf, model.Summary{Total: 2, Inside: 2})

	assert.NotContains(t, buf.String(), "not resolved")
}

func TestFormatFailures(t *testing.T) {
	var buf bytes.Buffer
	formatFailures(&buf, sampleRecords())

	output := buf.String()
	assert.Contains(t, output, "#3 zzzz_not_a_real_place_12345")
	assert.NotContains(t, output, "Eiffel")
}

func TestFormatSession(t *testing.T) {
	iso, err := geo.ParseIsochrone([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	sess := model.NewSession(geo.Coordinate{Lat: 48.85837, Lon: 2.294481}, geo.ModeCycling, 15)
	sess.Isochrone = iso
	sess.IsochroneStale = true
	sess.UpdatedAt = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	formatSession(&buf, sess, true)

	output := buf.String()
	assert.Contains(t, output, "48.858370, 2.294481")
	assert.Contains(t, output, "cycling (by bike)")
	assert.Contains(t, output, "15 min")
	assert.Contains(t, output, "stale")
	assert.Contains(t, output, "2025-06-15 10:30:00")
	assert.Contains(t, output, "REACH_ORS_API_KEY")
}

func TestIsochroneStatus(t *testing.T) {
	sess := model.NewSession(geo.Coordinate{}, geo.ModeWalking, 10)
	assert.Equal(t, "none", isochroneStatus(sess))

	malformed, err := geo.ParseIsochrone([]byte(`{"error":"x"}`))
	require.NoError(t, err)
	sess.Isochrone = malformed
	assert.Equal(t, "unusable response", isochroneStatus(sess))
}

func TestFormatTravelMinutes(t *testing.T) {
	assert.Equal(t, "N/A", formatTravelMinutes(nil))
	assert.Equal(t, "12.0", formatTravelMinutes(ptr(12.0)))
	assert.Equal(t, "0.1", formatTravelMinutes(ptr(0.06)))
}

func TestTruncateStr(t *testing.T) {
	assert.Equal(t, "short", truncateStr("short", 10))
	assert.Equal(t, "Musée d...", truncateStr("Musée du Louvre", 10))
}

func TestWriteSessionJSON(t *testing.T) {
	sess := model.NewSession(geo.Coordinate{Lat: 1, Lon: 2}, geo.ModeWalking, 10)
	sess.Records = sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, writeSessionJSON(&buf, sess, false))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "idle", got["state"])
	assert.Equal(t, false, got["has_isochrone"])
	assert.Equal(t, false, got["credential_missing"])

	records := got["records"].([]any)
	require.Len(t, records, 3)
	assert.Equal(t, true, records[0].(map[string]any)["in_zone"])
	assert.Nil(t, records[2].(map[string]any)["in_zone"])
	assert.Nil(t, records[1].(map[string]any)["travel_minutes"])
}
