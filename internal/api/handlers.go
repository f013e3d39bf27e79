package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
	"github.com/sells-group/reach-cli/internal/pipeline"
)

type originRequest struct {
	Lat     *float64 `json:"lat" validate:"required_without=Address,omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"required_without=Address,omitempty,gte=-180,lte=180"`
	Address string   `json:"address" validate:"max=500"`
}

type paramsRequest struct {
	Mode    string `json:"mode" validate:"required_without=Minutes"`
	Minutes *int   `json:"minutes" validate:"required_without=Mode"`
}

type addressesRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,max=500,dive,max=500"`
}

type sessionResponse struct {
	ID                string                `json:"id"`
	Origin            geo.Coordinate        `json:"origin"`
	OriginLabel       string                `json:"origin_label,omitempty"`
	Mode              geo.TravelMode        `json:"mode"`
	ModeLabel         string                `json:"mode_label"`
	Minutes           int                   `json:"minutes"`
	State             model.State           `json:"state"`
	HasIsochrone      bool                  `json:"has_isochrone"`
	IsochroneStale    bool                  `json:"isochrone_stale"`
	BatchID           string                `json:"batch_id,omitempty"`
	Records           []model.AddressRecord `json:"records"`
	Summary           model.Summary         `json:"summary"`
	CredentialMissing bool                  `json:"credential_missing"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

type batchResponse struct {
	BatchID string                `json:"batch_id"`
	State   model.State           `json:"state"`
	Records []model.AddressRecord `json:"records"`
	Summary model.Summary         `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.sessionView(""))
}

func (s *Server) handlePutOrigin(w http.ResponseWriter, r *http.Request) {
	var req originRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Address = strings.TrimSpace(req.Address)
	if req.Address != "" && (req.Lat != nil || req.Lon != nil) {
		writeError(w, http.StatusBadRequest, "give either an address or lat/lon, not both")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var label string
	if req.Address != "" {
		loc, err := s.pipeline.SetOriginByAddress(r.Context(), req.Address)
		if err != nil {
			writeErr(w, err)
			return
		}
		label = loc.Label
	} else if err := s.pipeline.SetOrigin(geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}); err != nil {
		writeErr(w, err)
		return
	}

	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.sessionView(label))
}

func (s *Server) handlePutParams(w http.ResponseWriter, r *http.Request) {
	var req paramsRequest
	if !s.decode(w, r, &req) {
		return
	}

	var mode geo.TravelMode
	if req.Mode != "" {
		m, err := geo.ParseTravelMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Duration is the only setter that can still fail; apply it first so a
	// rejected request changes nothing.
	if req.Minutes != nil {
		if err := s.pipeline.SetDuration(*req.Minutes); err != nil {
			writeErr(w, err)
			return
		}
	}
	if mode != "" {
		if err := s.pipeline.SetMode(mode); err != nil {
			writeErr(w, err)
			return
		}
	}

	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.sessionView(""))
}

func (s *Server) handleComputeIsochrone(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pipeline.RecomputeIsochrone(r.Context()); err != nil {
		writeErr(w, err)
		return
	}

	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.sessionView(""))
}

func (s *Server) handleGetIsochrone(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	sess := s.pipeline.Session()
	s.mu.Unlock()

	if sess.Isochrone == nil {
		writeError(w, http.StatusNotFound, "no isochrone computed")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Isochrone-Stale", fmt.Sprintf("%t", sess.IsochroneStale))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sess.Isochrone.Raw())
}

func (s *Server) handleSubmitAddresses(w http.ResponseWriter, r *http.Request) {
	var req addressesRequest
	if !s.decode(w, r, &req) {
		return
	}
	texts := pipeline.CleanAddresses(req.Addresses)
	if len(texts) == 0 {
		writeError(w, http.StatusBadRequest, "addresses: no non-blank address given")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pipeline.SubmitAddressBatch(r.Context(), texts)
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.batchView())
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pipeline.State().HasIsochrone() {
		writeError(w, http.StatusConflict, "no current isochrone; compute one first")
		return
	}

	s.pipeline.EvaluateAll(r.Context())
	s.persist(r.Context())
	writeJSON(w, http.StatusOK, s.batchView())
}

// sessionView must be called with mu held.
func (s *Server) sessionView(originLabel string) sessionResponse {
	sess := s.pipeline.Session()
	return sessionResponse{
		ID:                sess.ID,
		Origin:            sess.Origin,
		OriginLabel:       originLabel,
		Mode:              sess.Mode,
		ModeLabel:         sess.Mode.Label(),
		Minutes:           sess.Minutes,
		State:             sess.State,
		HasIsochrone:      sess.Isochrone != nil,
		IsochroneStale:    sess.IsochroneStale,
		BatchID:           sess.BatchID,
		Records:           sess.Records,
		Summary:           sess.Summary(),
		CredentialMissing: s.credentialMissing,
		UpdatedAt:         sess.UpdatedAt,
	}
}

// batchView must be called with mu held.
func (s *Server) batchView() batchResponse {
	sess := s.pipeline.Session()
	return batchResponse{
		BatchID: sess.BatchID,
		State:   sess.State,
		Records: sess.Records,
		Summary: sess.Summary(),
	}
}

// decode reads and validates a JSON body. On failure it writes a 400 and
// returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), strings.ToLower(fe.Param())))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// errorStatus maps pipeline errors to HTTP statuses.
func errorStatus(err error) int {
	var se *pipeline.ServiceError
	switch {
	case errors.As(err, &se):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrInvalidParameter), errors.Is(err, pipeline.ErrEmptyAddress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zap.L().Warn("api: request failed", zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}
