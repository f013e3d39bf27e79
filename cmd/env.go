package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
	"github.com/sells-group/reach-cli/internal/pipeline"
	"github.com/sells-group/reach-cli/internal/store"
	"github.com/sells-group/reach-cli/pkg/ors"
)

// reachEnv holds the session store and the pipeline built around the
// persisted session.
type reachEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *reachEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// Save persists the pipeline's current session.
func (e *reachEnv) Save(ctx context.Context) error {
	return eris.Wrap(e.Store.SaveSession(ctx, e.Pipeline.Session()), "save session")
}

// initStore opens the session database and applies migrations.
func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Session.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open session store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate session store")
	}
	return st, nil
}

// initEnv opens the store, resumes the latest session (or starts one from the
// configured defaults) and wires the ORS-backed pipeline. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*reachEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := st.LatestSession(ctx)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load session")
	}
	if sess == nil {
		sess, err = newDefaultSession()
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		zap.L().Debug("starting new session", zap.String("session_id", sess.ID))
	}

	client := newORSClient()
	p := pipeline.New(sess,
		pipeline.NewORSGeocoder(client, cfg.ORS.Country),
		pipeline.NewORSIsochrones(client),
		pipeline.NewORSTravelTime(client),
		pipeline.WithLimits(pipeline.Limits{
			MinMinutes: cfg.Limits.MinMinutes,
			MaxMinutes: cfg.Limits.MaxMinutes,
		}),
	)

	return &reachEnv{Store: st, Pipeline: p}, nil
}

func newORSClient() ors.Client {
	return ors.NewClient(cfg.ORS.APIKey,
		ors.WithBaseURL(cfg.ORS.BaseURL),
		ors.WithTimeout(time.Duration(cfg.ORS.TimeoutSecs)*time.Second),
		ors.WithRateLimit(cfg.ORS.RateLimit),
	)
}

func newDefaultSession() (*model.Session, error) {
	mode, err := geo.ParseTravelMode(cfg.Defaults.Mode)
	if err != nil {
		return nil, eris.Wrap(err, "config: defaults.mode")
	}
	origin := geo.Coordinate{Lat: cfg.Defaults.Lat, Lon: cfg.Defaults.Lon}
	if err := origin.Validate(); err != nil {
		return nil, eris.Wrap(err, "config: defaults origin")
	}
	minutes := cfg.Defaults.Minutes
	if minutes < cfg.Limits.MinMinutes || minutes > cfg.Limits.MaxMinutes {
		return nil, eris.Errorf("config: defaults.minutes %d outside [%d, %d]", minutes, cfg.Limits.MinMinutes, cfg.Limits.MaxMinutes)
	}
	return model.NewSession(origin, mode, minutes), nil
}
