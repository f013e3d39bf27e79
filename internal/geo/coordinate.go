// Package geo holds the geographic primitives used by the reachability
// pipeline: coordinates, travel modes, isochrones and point containment.
package geo

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Validate checks that the coordinate lies within the WGS84 ranges.
func (c Coordinate) Validate() error {
	if err := validate.Struct(c); err != nil {
		return eris.Wrapf(err, "geo: invalid coordinate %s", c)
	}
	return nil
}

// LonLat returns the coordinate in GeoJSON axis order.
func (c Coordinate) LonLat() [2]float64 {
	return [2]float64{c.Lon, c.Lat}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lon)
}

// TravelMode is a supported way of moving between two points.
type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeCycling TravelMode = "cycling"
	ModeDriving TravelMode = "driving"
)

// Modes lists every supported travel mode in display order.
var Modes = []TravelMode{ModeWalking, ModeCycling, ModeDriving}

// Profile returns the OpenRouteService routing profile for the mode.
func (m TravelMode) Profile() string {
	switch m {
	case ModeWalking:
		return "foot-walking"
	case ModeCycling:
		return "cycling-regular"
	case ModeDriving:
		return "driving-car"
	default:
		return ""
	}
}

// Label returns a short human-readable description of the mode.
func (m TravelMode) Label() string {
	switch m {
	case ModeWalking:
		return "on foot"
	case ModeCycling:
		return "by bike"
	case ModeDriving:
		return "by car"
	default:
		return string(m)
	}
}

// Valid reports whether m is one of the supported modes.
func (m TravelMode) Valid() bool {
	return m.Profile() != ""
}

// ParseTravelMode accepts a mode name or its OpenRouteService profile name.
func ParseTravelMode(s string) (TravelMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if s == string(m) || s == m.Profile() {
			return m, nil
		}
	}
	return "", eris.Errorf("geo: unknown travel mode %q (want walking, cycling or driving)", s)
}
