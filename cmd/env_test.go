package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/reach-cli/internal/config"
	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

func withTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		ORS:      config.ORSConfig{BaseURL: "http://127.0.0.1:1", Country: "FR", TimeoutSecs: 1, RateLimit: 0},
		Session:  config.SessionConfig{Path: filepath.Join(t.TempDir(), "reach.db")},
		Defaults: config.DefaultsConfig{Lat: 48.858370, Lon: 2.294481, Minutes: 10, Mode: "walking"},
		Limits:   config.LimitsConfig{MinMinutes: 1, MaxMinutes: 60},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestNewDefaultSession(t *testing.T) {
	withTestConfig(t)

	sess, err := newDefaultSession()
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Lat: 48.858370, Lon: 2.294481}, sess.Origin)
	assert.Equal(t, geo.ModeWalking, sess.Mode)
	assert.Equal(t, 10, sess.Minutes)
	assert.Equal(t, model.StateIdle, sess.State)
}

func TestNewDefaultSession_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func()
	}{
		{"mode", func() { cfg.Defaults.Mode = "teleport" }},
		{"origin", func() { cfg.Defaults.Lat = 123 }},
		{"minutes", func() { cfg.Defaults.Minutes = 90 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTestConfig(t)
			tt.mutate()

			_, err := newDefaultSession()
			assert.Error(t, err)
		})
	}
}

func TestInitEnv_ResumesSession(t *testing.T) {
	withTestConfig(t)
	ctx := context.Background()

	env, err := initEnv(ctx)
	require.NoError(t, err)
	require.NoError(t, env.Pipeline.SetDuration(25))
	require.NoError(t, env.Pipeline.SetMode(geo.ModeDriving))
	require.NoError(t, env.Save(ctx))
	id := env.Pipeline.Session().ID
	env.Close()

	env, err = initEnv(ctx)
	require.NoError(t, err)
	defer env.Close()

	sess := env.Pipeline.Session()
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, 25, sess.Minutes)
	assert.Equal(t, geo.ModeDriving, sess.Mode)
}

func TestInitEnv_MissingKeyFailsFast(t *testing.T) {
	withTestConfig(t)
	ctx := context.Background()

	env, err := initEnv(ctx)
	require.NoError(t, err)
	defer env.Close()

	err = env.Pipeline.RecomputeIsochrone(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key not configured")
	assert.Equal(t, model.StateIdle, env.Pipeline.State())
}

func TestCollectAddresses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "addresses.txt")
	require.NoError(t, os.WriteFile(path, []byte("Louvre, Paris\n\n  Arc de Triomphe  \n"), 0o600))

	got, err := collectAddresses([]string{"Eiffel Tower, Paris", " "}, path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Eiffel Tower, Paris", "Louvre, Paris", "Arc de Triomphe"}, got)
}

func TestCollectAddresses_Stdin(t *testing.T) {
	got, err := collectAddresses(nil, "-", strings.NewReader("Louvre, Paris\nNotre-Dame de Paris\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Louvre, Paris", "Notre-Dame de Paris"}, got)
}

func TestCollectAddresses_MissingFile(t *testing.T) {
	_, err := collectAddresses(nil, filepath.Join(t.TempDir(), "nope.txt"), nil)
	assert.Error(t, err)
}
