package model

import (
	"github.com/sells-group/reach-cli/internal/geo"
)

// GeocodeStatus is the outcome of resolving a record's input text.
type GeocodeStatus string

const (
	GeocodeResolved     GeocodeStatus = "resolved"
	GeocodeNotFound     GeocodeStatus = "not_found"
	GeocodeServiceError GeocodeStatus = "service_error"
)

// AddressRecord is one candidate address of a batch.
type AddressRecord struct {
	Input         string          `json:"input"`
	Label         string          `json:"label,omitempty"`
	Status        GeocodeStatus   `json:"status"`
	Error         string          `json:"error,omitempty"`
	Coordinate    *geo.Coordinate `json:"coordinate"`
	InZone        geo.Containment `json:"in_zone"`
	TravelMinutes *float64        `json:"travel_minutes"`
}

// Resolved reports whether geocoding produced a coordinate.
func (r AddressRecord) Resolved() bool {
	return r.Status == GeocodeResolved && r.Coordinate != nil
}

// ResetEvaluation clears the classification and travel time.
func (r *AddressRecord) ResetEvaluation() {
	r.InZone = geo.Unknown
	r.TravelMinutes = nil
}

// Clone returns a copy that shares no pointers with r.
func (r AddressRecord) Clone() AddressRecord {
	c := r
	if r.Coordinate != nil {
		coord := *r.Coordinate
		c.Coordinate = &coord
	}
	if r.TravelMinutes != nil {
		m := *r.TravelMinutes
		c.TravelMinutes = &m
	}
	return c
}

// Summary is the count of records per classification.
type Summary struct {
	Total   int `json:"total"`
	Inside  int `json:"inside"`
	Outside int `json:"outside"`
	Unknown int `json:"unknown"`
	Failed  int `json:"failed"`
}

// Summarize counts records by classification. Failed counts records whose
// address could not be resolved; they are also counted as Unknown.
func Summarize(records []AddressRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.InZone {
		case geo.Inside:
			s.Inside++
		case geo.Outside:
			s.Outside++
		default:
			s.Unknown++
		}
		if !r.Resolved() {
			s.Failed++
		}
	}
	return s
}
