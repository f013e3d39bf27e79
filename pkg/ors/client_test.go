package ors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0))
}

func TestGeocode_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Eiffel Tower, Paris", r.URL.Query().Get("text"))
		assert.Equal(t, "1", r.URL.Query().Get("size"))
		assert.Equal(t, "FR", r.URL.Query().Get("boundary.country"))

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = io.WriteString(w, `{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [2.294481, 48.85837]},
				"properties": {"label": "Tour Eiffel, Paris, France", "confidence": 1, "country": "France"}
			}]
		}`)
	})

	resp, err := c.Geocode(context.Background(), GeocodeRequest{Text: "Eiffel Tower, Paris", Size: 1, Country: "FR"})
	require.NoError(t, err)
	require.Len(t, resp.Features, 1)
	assert.Equal(t, []float64{2.294481, 48.85837}, resp.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Tour Eiffel, Paris, France", resp.Features[0].Properties.Label)
	assert.InDelta(t, 1.0, resp.Features[0].Properties.Confidence, 0.001)
}

func TestGeocode_NoCountryFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["boundary.country"]
		assert.False(t, ok)
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	})

	resp, err := c.Geocode(context.Background(), GeocodeRequest{Text: "anywhere", Size: 1})
	require.NoError(t, err)
	assert.Empty(t, resp.Features)
}

func TestGeocode_EmptyText(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.Geocode(context.Background(), GeocodeRequest{})
	assert.Error(t, err)
}

func TestGeocode_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"Access to this API has been disallowed"}`)
	})

	_, err := c.Geocode(context.Background(), GeocodeRequest{Text: "x"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, se.Body, "disallowed")
	assert.Contains(t, err.Error(), "status 403")
}

func TestGeocode_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := c.Geocode(context.Background(), GeocodeRequest{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse geocode response")
}

func TestMissingAPIKey_NoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient("  ", WithBaseURL(srv.URL), WithRateLimit(0))

	_, err := c.Geocode(context.Background(), GeocodeRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = c.Isochrones(context.Background(), "foot-walking", IsochroneRequest{Locations: [][2]float64{{2, 48}}, Range: []int{600}})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = c.Directions(context.Background(), "foot-walking", DirectionsRequest{Coordinates: [][2]float64{{2, 48}, {2.1, 48.1}}})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}

func TestIsochrones_RequestShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/isochrones/cycling-regular", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{[]any{2.294481, 48.85837}}, body["locations"])
		assert.Equal(t, []any{float64(900)}, body["range"])
		assert.Equal(t, "m", body["units"])
		assert.Equal(t, "start", body["location_type"])

		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	})

	raw, err := c.Isochrones(context.Background(), "cycling-regular", IsochroneRequest{
		Locations:    [][2]float64{{2.294481, 48.85837}},
		Range:        []int{900},
		Units:        "m",
		LocationType: "start",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(raw))
}

func TestIsochrones_Validation(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.Isochrones(context.Background(), "", IsochroneRequest{})
	assert.Error(t, err)
	_, err = c.Isochrones(context.Background(), "foot-walking", IsochroneRequest{Range: []int{60}})
	assert.Error(t, err)
}

func TestIsochrones_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":3099,"message":"Unknown internal error"}}`)
	})

	_, err := c.Isochrones(context.Background(), "foot-walking", IsochroneRequest{
		Locations: [][2]float64{{2, 48}},
		Range:     []int{600},
	})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestDirections_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/driving-car", r.URL.Path)

		var body DirectionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][2]float64{{2.29, 48.85}, {2.35, 48.86}}, body.Coordinates)
		assert.Equal(t, "m", body.Units)

		_, _ = io.WriteString(w, `{"routes":[{"summary":{"distance":5123.4,"duration":754.2}}]}`)
	})

	resp, err := c.Directions(context.Background(), "driving-car", DirectionsRequest{
		Coordinates: [][2]float64{{2.29, 48.85}, {2.35, 48.86}},
		Units:       "m",
	})
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)
	assert.InDelta(t, 754.2, resp.Routes[0].Summary.Duration, 0.001)
	assert.InDelta(t, 5123.4, resp.Routes[0].Summary.Distance, 0.001)
}

func TestDirections_Validation(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.Directions(context.Background(), "driving-car", DirectionsRequest{Coordinates: [][2]float64{{1, 2}}})
	assert.Error(t, err)
}

func TestRateLimit_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0.01))

	_, err := c.Geocode(context.Background(), GeocodeRequest{Text: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Geocode(ctx, GeocodeRequest{Text: "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestWithTimeout_DefaultClient(t *testing.T) {
	c := NewClient("test-key", WithTimeout(5*time.Second)).(*httpClient)
	assert.Equal(t, 5*time.Second, c.http.Timeout)

	c = NewClient("test-key").(*httpClient)
	assert.Equal(t, 30*time.Second, c.http.Timeout)
}

func TestWithTimeout_LeavesSuppliedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := NewClient("test-key", WithHTTPClient(shared), WithTimeout(5*time.Second)).(*httpClient)
	assert.Same(t, shared, c.http)
	assert.Equal(t, time.Minute, shared.Timeout)

	c = NewClient("test-key", WithTimeout(5*time.Second), WithHTTPClient(shared)).(*httpClient)
	assert.Same(t, shared, c.http)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("  abc \n", 10))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
