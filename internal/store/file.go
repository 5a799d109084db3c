package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/faizmokh/bridgelog/internal/files"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

// FileStore keeps each ledger as <home>/state/<identity>.json.
type FileStore struct {
	manager *files.Manager
	now     func() time.Time
}

// NewFileStore roots a FileStore at manager's data directory.
func NewFileStore(manager *files.Manager, now func() time.Time) *FileStore {
	return &FileStore{manager: manager, now: clockOrNow(now)}
}

// Get implements Store. A payload that cannot be decoded is moved aside to
// <file>.corrupt so the next write starts clean.
func (s *FileStore) Get(ctx context.Context, identity string) (logbook.State, bool, error) {
	if err := ctx.Err(); err != nil {
		return logbook.State{}, false, err
	}
	path, err := s.manager.StatePath(identity)
	if err != nil {
		return logbook.State{}, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return logbook.State{}, false, nil
	}
	if err != nil {
		return logbook.State{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	state, err := decode(data, s.now)
	if err != nil {
		backup := path + ".corrupt"
		_ = os.Rename(path, backup)
		return logbook.State{}, false, fmt.Errorf("%s (moved to %s): %w", path, backup, err)
	}
	return state, true, nil
}

// Put implements Store with an atomic replace.
func (s *FileStore) Put(ctx context.Context, identity string, state logbook.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.manager.StatePath(identity)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := files.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
