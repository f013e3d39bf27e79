package ors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// GeocodeRequest is a forward geocoding search.
type GeocodeRequest struct {
	Text    string
	Size    int    // max results; 0 means the service default
	Country string // optional ISO 3166 alpha-2/3 filter (boundary.country)
}

// GeocodeResponse is the GeoJSON FeatureCollection returned by /geocode/search.
type GeocodeResponse struct {
	Type     string           `json:"type"`
	Features []GeocodeFeature `json:"features"`
}

// GeocodeFeature is a single geocoding match.
type GeocodeFeature struct {
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties GeocodeProperties `json:"properties"`
}

// GeocodeProperties holds the descriptive fields of a match.
type GeocodeProperties struct {
	Label      string  `json:"label"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Country    string  `json:"country"`
	Locality   string  `json:"locality"`
	Layer      string  `json:"layer"`
}

func (c *httpClient) Geocode(ctx context.Context, req GeocodeRequest) (*GeocodeResponse, error) {
	if req.Text == "" {
		return nil, eris.New("ors: geocode text is required")
	}

	q := url.Values{"text": {req.Text}}
	if req.Size > 0 {
		q.Set("size", strconv.Itoa(req.Size))
	}
	if req.Country != "" {
		q.Set("boundary.country", req.Country)
	}

	body, err := c.do(ctx, http.MethodGet, "/geocode/search", q, nil)
	if err != nil {
		return nil, err
	}

	var resp GeocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "ors: parse geocode response")
	}
	return &resp, nil
}
