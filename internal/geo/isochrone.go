package geo

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Isochrone is a reachability area as returned by the routing service: a
// GeoJSON FeatureCollection whose features are polygons or multipolygons.
// The raw payload is kept verbatim so it can be persisted and displayed.
type Isochrone struct {
	raw       json.RawMessage
	polygons  []*geom.Polygon
	features  int
	malformed bool
}

type featureCollectionEnvelope struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// ParseIsochrone decodes a GeoJSON payload. Only invalid JSON is an error; a
// well-formed document that is not a FeatureCollection is returned as a
// malformed isochrone, against which containment is always Unknown.
func ParseIsochrone(data []byte) (*Isochrone, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, eris.New("geo: isochrone payload is not valid JSON")
	}

	iso := &Isochrone{raw: append(json.RawMessage(nil), data...)}

	var env featureCollectionEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type != "FeatureCollection" || env.Features == nil {
		iso.malformed = true
		return iso, nil
	}

	iso.features = len(env.Features)
	for i, rawFeature := range env.Features {
		var f geojson.Feature
		if err := json.Unmarshal(rawFeature, &f); err != nil {
			zap.L().Debug("geo: skipping undecodable isochrone feature", zap.Int("feature", i), zap.Error(err))
			continue
		}
		switch g := f.Geometry.(type) {
		case *geom.Polygon:
			iso.polygons = append(iso.polygons, g)
		case *geom.MultiPolygon:
			for j := 0; j < g.NumPolygons(); j++ {
				iso.polygons = append(iso.polygons, g.Polygon(j))
			}
		default:
			zap.L().Debug("geo: skipping non-polygon isochrone feature", zap.Int("feature", i))
		}
	}

	return iso, nil
}

// Raw returns the payload exactly as received.
func (i *Isochrone) Raw() json.RawMessage {
	if i == nil {
		return nil
	}
	return i.raw
}

// Malformed reports whether the payload lacked the FeatureCollection shape.
func (i *Isochrone) Malformed() bool {
	return i == nil || i.malformed
}

// FeatureCount is the number of features in the collection.
func (i *Isochrone) FeatureCount() int {
	if i == nil {
		return 0
	}
	return i.features
}

// PolygonCount is the number of simple polygons after multipolygons are
// flattened.
func (i *Isochrone) PolygonCount() int {
	if i == nil {
		return 0
	}
	return len(i.polygons)
}

// MarshalJSON implements json.Marshaler by emitting the raw payload.
func (i *Isochrone) MarshalJSON() ([]byte, error) {
	if i == nil || len(i.raw) == 0 {
		return []byte("null"), nil
	}
	return i.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Isochrone) UnmarshalJSON(data []byte) error {
	parsed, err := ParseIsochrone(data)
	if err != nil {
		return err
	}
	*i = *parsed
	return nil
}
