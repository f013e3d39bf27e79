package ors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
)

// IsochroneRequest is the body of POST /v2/isochrones/{profile}.
type IsochroneRequest struct {
	Locations    [][2]float64 `json:"locations"` // [lon, lat]
	Range        []int        `json:"range"`     // seconds when range_type is time
	Units        string       `json:"units,omitempty"`
	LocationType string       `json:"location_type,omitempty"`
	RangeType    string       `json:"range_type,omitempty"`
}

// DirectionsRequest is the body of POST /v2/directions/{profile}.
type DirectionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"` // [lon, lat]
	Units       string       `json:"units,omitempty"`
}

// DirectionsResponse holds the routes found between the requested points.
type DirectionsResponse struct {
	Routes []Route `json:"routes"`
}

// Route is one candidate route.
type Route struct {
	Summary RouteSummary `json:"summary"`
}

// RouteSummary carries the totals of a route. Distance is in the requested
// units, Duration in seconds.
type RouteSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

func (c *httpClient) Isochrones(ctx context.Context, profile string, req IsochroneRequest) ([]byte, error) {
	if profile == "" {
		return nil, eris.New("ors: isochrone profile is required")
	}
	if len(req.Locations) == 0 || len(req.Range) == 0 {
		return nil, eris.New("ors: isochrone needs at least one location and one range")
	}
	return c.do(ctx, http.MethodPost, "/v2/isochrones/"+profile, nil, req)
}

func (c *httpClient) Directions(ctx context.Context, profile string, req DirectionsRequest) (*DirectionsResponse, error) {
	if profile == "" {
		return nil, eris.New("ors: directions profile is required")
	}
	if len(req.Coordinates) < 2 {
		return nil, eris.New("ors: directions needs at least two coordinates")
	}

	body, err := c.do(ctx, http.MethodPost, "/v2/directions/"+profile, nil, req)
	if err != nil {
		return nil, err
	}

	var resp DirectionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "ors: parse directions response")
	}
	return &resp, nil
}
