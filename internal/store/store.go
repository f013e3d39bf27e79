package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/reach-cli/internal/model"
)

// ErrSessionNotFound is returned by GetSession for an unknown ID.
var ErrSessionNotFound = eris.New("session not found")

// Store defines the persistence interface for reachability sessions.
type Store interface {
	// Sessions
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// LatestSession returns the most recently updated session, or nil when
	// none has been saved yet.
	LatestSession(ctx context.Context) (*model.Session, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
