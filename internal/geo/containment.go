package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// Containment is the tri-state answer to "is this point in the isochrone".
type Containment int8

const (
	Unknown Containment = iota
	Inside
	Outside
)

func (c Containment) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return "unknown"
	}
}

// Known reports whether a classification was made.
func (c Containment) Known() bool {
	return c == Inside || c == Outside
}

// ContainmentOf converts a definite boolean answer.
func ContainmentOf(inside bool) Containment {
	if inside {
		return Inside
	}
	return Outside
}

// MarshalJSON encodes Inside/Outside as true/false and Unknown as null.
func (c Containment) MarshalJSON() ([]byte, error) {
	switch c {
	case Inside:
		return []byte("true"), nil
	case Outside:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Containment) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*c = Inside
	case "false":
		*c = Outside
	default:
		*c = Unknown
	}
	return nil
}

// IsInside tests point against every polygon of iso and returns Inside as
// soon as one contains it. A nil or malformed isochrone yields Unknown.
//
// Containment is boundary-exclusive: a point lying exactly on an exterior
// ring, or on the ring of a hole, is not inside that polygon.
func IsInside(point Coordinate, iso *Isochrone) Containment {
	if iso.Malformed() {
		return Unknown
	}
	for _, p := range iso.polygons {
		if polygonContains(p, point) {
			return Inside
		}
	}
	return Outside
}

// polygonContains only looks at x and y; altitude or measure ordinates in the
// polygon are ignored.
func polygonContains(p *geom.Polygon, point Coordinate) bool {
	if p == nil || p.Empty() || p.Layout().Stride() < 2 {
		return false
	}
	layout := p.Layout()
	b := p.Bounds()
	if point.Lon < b.Min(0) || point.Lon > b.Max(0) || point.Lat < b.Min(1) || point.Lat > b.Max(1) {
		return false
	}
	c := make(geom.Coord, layout.Stride())
	c[0], c[1] = point.Lon, point.Lat
	if xy.LocatePointInRing(layout, c, p.LinearRing(0).FlatCoords()) != location.Interior {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.LocatePointInRing(layout, c, p.LinearRing(i).FlatCoords()) != location.Exterior {
			return false
		}
	}
	return true
}
