// Package pipeline orchestrates reachability checks: it geocodes candidate
// addresses, fetches the isochrone for the session's origin and parameters,
// and classifies each address with a travel time.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

var validate = validator.New()

// Limits bounds the selectable isochrone duration, in minutes.
type Limits struct {
	MinMinutes int
	MaxMinutes int
}

// DefaultLimits is the 1 to 60 minute range.
var DefaultLimits = Limits{MinMinutes: 1, MaxMinutes: 60}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLimits overrides the duration bounds.
func WithLimits(l Limits) Option {
	return func(p *Pipeline) {
		if l.MinMinutes >= 1 && l.MaxMinutes >= l.MinMinutes {
			p.limits = l
		}
	}
}

// Pipeline owns a session and drives it through
// idle → isochrone_computed → addresses_evaluated. It is not safe for
// concurrent use; callers serialise access.
type Pipeline struct {
	geocoder   Geocoder
	isochrones IsochroneProvider
	travel     TravelTimeEstimator
	limits     Limits
	session    *model.Session
}

// New creates a pipeline operating on session.
func New(session *model.Session, geocoder Geocoder, isochrones IsochroneProvider, travel TravelTimeEstimator, opts ...Option) *Pipeline {
	p := &Pipeline{
		geocoder:   geocoder,
		isochrones: isochrones,
		travel:     travel,
		limits:     DefaultLimits,
		session:    session,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.session.Records == nil {
		p.session.Records = []model.AddressRecord{}
	}
	return p
}

// Session returns a copy of the current session.
func (p *Pipeline) Session() *model.Session {
	return p.session.Clone()
}

// State returns the current workflow state.
func (p *Pipeline) State() model.State {
	return p.session.State
}

// Records returns a copy of the current batch.
func (p *Pipeline) Records() []model.AddressRecord {
	return p.session.Clone().Records
}

// Summary counts the current batch by classification.
func (p *Pipeline) Summary() model.Summary {
	return p.session.Summary()
}

// Limits returns the duration bounds in force.
func (p *Pipeline) Limits() Limits {
	return p.limits
}

// SetOrigin moves the reachability centre. A different origin invalidates the
// isochrone and every classification.
func (p *Pipeline) SetOrigin(origin geo.Coordinate) error {
	if err := origin.Validate(); err != nil {
		return eris.Wrapf(ErrInvalidParameter, "origin %s is out of range", origin)
	}
	if origin == p.session.Origin {
		return nil
	}
	p.session.Origin = origin
	p.session.Invalidate()
	zap.L().Info("origin changed", zap.Stringer("origin", origin))
	return nil
}

// SetOriginByAddress geocodes text and uses the result as the origin.
func (p *Pipeline) SetOriginByAddress(ctx context.Context, text string) (*Location, error) {
	loc, err := p.geocoder.Geocode(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := p.SetOrigin(loc.Coordinate); err != nil {
		return nil, err
	}
	return loc, nil
}

// SetMode changes the travel mode.
func (p *Pipeline) SetMode(mode geo.TravelMode) error {
	if !mode.Valid() {
		return eris.Wrapf(ErrInvalidParameter, "unsupported travel mode %q", mode)
	}
	if mode == p.session.Mode {
		return nil
	}
	p.session.Mode = mode
	p.session.Invalidate()
	zap.L().Info("travel mode changed", zap.String("mode", string(mode)))
	return nil
}

// SetDuration changes the isochrone duration in minutes.
func (p *Pipeline) SetDuration(minutes int) error {
	rule := fmt.Sprintf("min=%d,max=%d", p.limits.MinMinutes, p.limits.MaxMinutes)
	if err := validate.Var(minutes, rule); err != nil {
		return eris.Wrapf(ErrInvalidParameter, "duration must be between %d and %d minutes", p.limits.MinMinutes, p.limits.MaxMinutes)
	}
	if minutes == p.session.Minutes {
		return nil
	}
	p.session.Minutes = minutes
	p.session.Invalidate()
	zap.L().Info("duration changed", zap.Int("minutes", minutes))
	return nil
}

// RecomputeIsochrone fetches a fresh isochrone for the current origin, mode
// and duration. On failure the session is left untouched. On success any
// existing records are re-evaluated against the new isochrone.
func (p *Pipeline) RecomputeIsochrone(ctx context.Context) error {
	s := p.session
	iso, err := p.isochrones.Compute(ctx, s.Origin, s.Mode, s.Minutes)
	if err != nil {
		zap.L().Warn("isochrone computation failed",
			zap.Stringer("origin", s.Origin),
			zap.String("mode", string(s.Mode)),
			zap.Int("minutes", s.Minutes),
			zap.Error(err),
		)
		return err
	}

	s.Isochrone = iso
	s.IsochroneStale = false
	s.State = model.StateIsochroneComputed
	s.Touch()
	zap.L().Info("isochrone computed",
		zap.Stringer("origin", s.Origin),
		zap.String("mode", string(s.Mode)),
		zap.Int("minutes", s.Minutes),
		zap.Int("polygons", iso.PolygonCount()),
	)

	if len(s.Records) > 0 {
		p.EvaluateAll(ctx)
	}
	return nil
}

// SubmitAddressBatch replaces the current batch with one record per text, in
// order, and evaluates it if an isochrone is available. Texts are used as
// given; callers drop blank input beforehand (see CleanAddresses).
func (p *Pipeline) SubmitAddressBatch(ctx context.Context, texts []string) []model.AddressRecord {
	s := p.session
	s.Records = GeocodeBatch(ctx, p.geocoder, texts)
	s.BatchID = uuid.New().String()
	if s.State == model.StateAddressesEvaluated {
		s.State = model.StateIsochroneComputed
	}
	s.Touch()

	if s.State.HasIsochrone() {
		p.EvaluateAll(ctx)
	}
	return p.Records()
}

// CheckAddress replaces the current batch with the single address text.
func (p *Pipeline) CheckAddress(ctx context.Context, text string) model.AddressRecord {
	return p.SubmitAddressBatch(ctx, []string{text})[0]
}

// EvaluateAll classifies every resolved record against the current isochrone
// and estimates its travel time from the origin. Unresolved records stay
// unknown. Calling it without an isochrone is a caller error; it is logged and
// nothing changes.
func (p *Pipeline) EvaluateAll(ctx context.Context) {
	s := p.session
	if !s.State.HasIsochrone() {
		zap.L().Warn("evaluate called without a current isochrone; ignoring", zap.String("state", string(s.State)))
		return
	}

	for i := range s.Records {
		r := &s.Records[i]
		if !r.Resolved() {
			r.ResetEvaluation()
			continue
		}

		r.InZone = geo.IsInside(*r.Coordinate, s.Isochrone)

		minutes, err := p.travel.Estimate(ctx, s.Origin, *r.Coordinate, s.Mode)
		if err != nil {
			r.TravelMinutes = nil
		} else {
			r.TravelMinutes = &minutes
		}
	}

	if len(s.Records) > 0 {
		s.State = model.StateAddressesEvaluated
	}
	s.Touch()

	sum := s.Summary()
	zap.L().Info("addresses evaluated",
		zap.Int("total", sum.Total),
		zap.Int("inside", sum.Inside),
		zap.Int("outside", sum.Outside),
		zap.Int("unknown", sum.Unknown),
	)
}

// GeocodeBatch resolves texts one at a time in input order. Every input
// yields exactly one record; failures are recorded, never dropped.
func GeocodeBatch(ctx context.Context, g Geocoder, texts []string) []model.AddressRecord {
	records := make([]model.AddressRecord, 0, len(texts))
	for i, text := range texts {
		rec := model.AddressRecord{Input: text}

		loc, err := g.Geocode(ctx, text)
		switch {
		case err == nil:
			coord := loc.Coordinate
			rec.Status = model.GeocodeResolved
			rec.Label = loc.Label
			rec.Coordinate = &coord
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyAddress):
			rec.Status = model.GeocodeNotFound
			rec.Error = err.Error()
		default:
			rec.Status = model.GeocodeServiceError
			rec.Error = err.Error()
		}

		if err != nil {
			zap.L().Info("address not resolved",
				zap.Int("index", i),
				zap.String("input", text),
				zap.String("status", string(rec.Status)),
				zap.Error(err),
			)
		}
		records = append(records, rec)
	}
	return records
}
