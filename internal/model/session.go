package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/reach-cli/internal/geo"
)

// State is the position of a session in the reachability workflow.
type State string

const (
	StateIdle               State = "idle"
	StateIsochroneComputed  State = "isochrone_computed"
	StateAddressesEvaluated State = "addresses_evaluated"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateIsochroneComputed, StateAddressesEvaluated:
		return true
	}
	return false
}

// HasIsochrone reports whether the state is at or past isochrone_computed.
func (s State) HasIsochrone() bool {
	return s == StateIsochroneComputed || s == StateAddressesEvaluated
}

// Session is the working context of one operator: the origin and travel
// parameters, the last isochrone computed for them, and the current batch of
// address records. It has a single writer.
type Session struct {
	ID             string          `json:"id"`
	Origin         geo.Coordinate  `json:"origin"`
	Mode           geo.TravelMode  `json:"mode"`
	Minutes        int             `json:"minutes"`
	State          State           `json:"state"`
	Isochrone      *geo.Isochrone  `json:"isochrone,omitempty"`
	IsochroneStale bool            `json:"isochrone_stale"`
	BatchID        string          `json:"batch_id,omitempty"`
	Records        []AddressRecord `json:"records"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewSession creates an idle session with a fresh ID.
func NewSession(origin geo.Coordinate, mode geo.TravelMode, minutes int) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Origin:    origin,
		Mode:      mode,
		Minutes:   minutes,
		State:     StateIdle,
		Records:   []AddressRecord{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Touch records a modification.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Invalidate drops the session back to idle after a parameter change. The
// previous isochrone is kept but flagged stale, and every record loses its
// classification and travel time.
func (s *Session) Invalidate() {
	s.State = StateIdle
	if s.Isochrone != nil {
		s.IsochroneStale = true
	}
	for i := range s.Records {
		s.Records[i].ResetEvaluation()
	}
	s.Touch()
}

// Summary counts records by classification.
func (s *Session) Summary() Summary {
	return Summarize(s.Records)
}

// Clone returns a deep copy of the session's records and scalar fields. The
// isochrone is shared; it is never mutated after parsing.
func (s *Session) Clone() *Session {
	c := *s
	c.Records = make([]AddressRecord, len(s.Records))
	for i, r := range s.Records {
		c.Records[i] = r.Clone()
	}
	return &c
}
