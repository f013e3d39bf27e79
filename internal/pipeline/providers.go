package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/pkg/ors"
)

const unknownLabel = "unknown address"

// Location is a geocoded address.
type Location struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Label      string         `json:"label"`
}

// Geocoder resolves free text to a location. Failures are ErrEmptyAddress,
// ErrNotFound or a *ServiceError.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*Location, error)
}

// IsochroneProvider computes the area reachable from origin within minutes.
// Failures are a *ServiceError.
type IsochroneProvider interface {
	Compute(ctx context.Context, origin geo.Coordinate, mode geo.TravelMode, minutes int) (*geo.Isochrone, error)
}

// TravelTimeEstimator returns the travel time in minutes between two points.
// Every failure is reported as ErrUnavailable.
type TravelTimeEstimator interface {
	Estimate(ctx context.Context, origin, destination geo.Coordinate, mode geo.TravelMode) (float64, error)
}

// ORSGeocoder implements Geocoder on the OpenRouteService search endpoint.
type ORSGeocoder struct {
	client  ors.Client
	country string
}

// NewORSGeocoder creates a geocoder. country optionally restricts matches.
func NewORSGeocoder(client ors.Client, country string) *ORSGeocoder {
	return &ORSGeocoder{client: client, country: strings.TrimSpace(country)}
}

// Geocode implements Geocoder by keeping the single best match.
func (g *ORSGeocoder) Geocode(ctx context.Context, text string) (*Location, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyAddress
	}

	resp, err := g.client.Geocode(ctx, ors.GeocodeRequest{Text: text, Size: 1, Country: g.country})
	if err != nil {
		return nil, newServiceError("geocode", err)
	}
	if len(resp.Features) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "geocode %q", text)
	}

	best := resp.Features[0]
	coords := best.Geometry.Coordinates
	if len(coords) < 2 {
		return nil, newServiceError("geocode", eris.New("best match has no coordinates"))
	}

	loc := &Location{
		Coordinate: geo.Coordinate{Lat: coords[1], Lon: coords[0]},
		Label:      best.Properties.Label,
	}
	if loc.Label == "" {
		loc.Label = unknownLabel
	}
	return loc, nil
}

// ORSIsochrones implements IsochroneProvider on the OpenRouteService
// isochrones endpoint.
type ORSIsochrones struct {
	client ors.Client
}

// NewORSIsochrones creates an isochrone provider.
func NewORSIsochrones(client ors.Client) *ORSIsochrones {
	return &ORSIsochrones{client: client}
}

// Compute implements IsochroneProvider with a single location and a single
// time range.
func (p *ORSIsochrones) Compute(ctx context.Context, origin geo.Coordinate, mode geo.TravelMode, minutes int) (*geo.Isochrone, error) {
	raw, err := p.client.Isochrones(ctx, mode.Profile(), ors.IsochroneRequest{
		Locations:    [][2]float64{origin.LonLat()},
		Range:        []int{minutes * 60},
		Units:        "m",
		LocationType: "start",
	})
	if err != nil {
		return nil, newServiceError("isochrone", err)
	}

	iso, err := geo.ParseIsochrone(raw)
	if err != nil {
		return nil, newServiceError("isochrone", err)
	}
	if iso.Malformed() {
		zap.L().Warn("isochrone response is not a feature collection; containment will be unknown",
			zap.String("mode", string(mode)),
			zap.Int("minutes", minutes),
		)
	}
	return iso, nil
}

// ORSTravelTime implements TravelTimeEstimator on the OpenRouteService
// directions endpoint.
type ORSTravelTime struct {
	client ors.Client
}

// NewORSTravelTime creates a travel-time estimator.
func NewORSTravelTime(client ors.Client) *ORSTravelTime {
	return &ORSTravelTime{client: client}
}

// Estimate implements TravelTimeEstimator using the first route's duration.
func (t *ORSTravelTime) Estimate(ctx context.Context, origin, destination geo.Coordinate, mode geo.TravelMode) (float64, error) {
	resp, err := t.client.Directions(ctx, mode.Profile(), ors.DirectionsRequest{
		Coordinates: [][2]float64{origin.LonLat(), destination.LonLat()},
		Units:       "m",
	})
	if err != nil {
		zap.L().Debug("travel time: directions failed", zap.Stringer("destination", destination), zap.Error(err))
		return 0, ErrUnavailable
	}
	if len(resp.Routes) == 0 {
		zap.L().Debug("travel time: no route", zap.Stringer("destination", destination))
		return 0, ErrUnavailable
	}
	return resp.Routes[0].Summary.Duration / 60, nil
}
