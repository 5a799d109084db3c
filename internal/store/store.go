// Package store persists one ledger per identity. Every backend keeps a single
// row or file per identity, writes are last-write-wins, and payloads are passed
// through the normalizer on the way out.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faizmokh/bridgelog/internal/files"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

// Store is the persistence collaborator of the controller.
type Store interface {
	// Get loads the ledger of identity. ok is false when none was stored.
	Get(ctx context.Context, identity string) (state logbook.State, ok bool, err error)
	// Put replaces the ledger of identity.
	Put(ctx context.Context, identity string, state logbook.State) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Manager     *files.Manager
	SQLitePath  string
	DatabaseURL string
	// Now stamps normalized payloads. Defaults to time.Now.
	Now func() time.Time
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Manager == nil {
			return nil, fmt.Errorf("file store: no data directory")
		}
		return NewFileStore(opts.Manager, opts.Now), nil
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" && opts.Manager != nil {
			path = opts.Manager.SQLitePath()
		}
		return OpenSQLite(ctx, path, opts.Now)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL, opts.Now)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, opts.Backend)
	}
}

func clockOrNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

// decode normalizes a stored payload.
func decode(data []byte, now func() time.Time) (logbook.State, error) {
	s, err := logbook.NormalizeJSON(data, now())
	if err != nil {
		return logbook.State{}, fmt.Errorf("decode stored ledger: %w", err)
	}
	return s, nil
}
