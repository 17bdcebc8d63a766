// Package store persists session records keyed by session id.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jonathan/interview-coach/internal/types"
)

// DefaultTable is the table or collection name used when none is configured.
const DefaultTable = "interview_sessions"

// ErrNotFound is returned by Update when no record exists for the id.
var ErrNotFound = errors.New("session not found")

// Store is the persistence contract for sessions. There are no transactions and no
// concurrency tokens: Update overwrites the fields named by the patch, last write wins.
type Store interface {
	// EnsureSchema creates the backing table if needed. Repeated calls succeed.
	EnsureSchema(ctx context.Context) error
	// Put writes the full record, replacing any record with the same id.
	Put(ctx context.Context, s *types.Session) error
	// Get returns the record, or nil with no error when the id is unknown.
	Get(ctx context.Context, id string) (*types.Session, error)
	// Update overwrites the fields named by patch. It returns ErrNotFound for an unknown id.
	Update(ctx context.Context, id string, patch types.SessionPatch) error
	// Close releases backend resources.
	Close() error
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateTableName rejects names that cannot be used unquoted in DDL.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// Pruner is implemented by backends that can drop records past their expiry marker.
type Pruner interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
