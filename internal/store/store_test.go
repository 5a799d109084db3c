package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizmokh/bridgelog/internal/files"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

var fixed = time.Date(2026, time.October, 18, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func sampleState() logbook.State {
	s := logbook.DefaultState(fixed)
	s.Watchkeeper = "JB"
	s.Vessel.Name = "Aurora"
	s.Log = []logbook.Entry{{ID: "e1", Date: "2026-10-18", Time: "07:00", Position: "A", TotalFuel: "1,000"}}
	return s
}

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := st.Get(ctx, "aurora")
	require.NoError(t, err)
	assert.False(t, ok, "unknown identity is absent")

	want := sampleState()
	require.NoError(t, st.Put(ctx, "aurora", want))

	got, ok, err := st.Get(ctx, "aurora")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	// last write wins
	want.Watchkeeper = "AK"
	require.NoError(t, st.Put(ctx, "aurora", want))
	got, _, err = st.Get(ctx, "aurora")
	require.NoError(t, err)
	assert.Equal(t, "AK", got.Watchkeeper)

	_, ok, err = st.Get(ctx, "pelican")
	require.NoError(t, err)
	assert.False(t, ok, "identities are isolated")
}

func TestFileStore(t *testing.T) {
	mgr, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	st := NewFileStore(mgr, clock)
	defer st.Close()

	exerciseStore(t, st)
}

func TestFileStoreNormalizesLegacyPayload(t *testing.T) {
	mgr, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	path, err := mgr.StatePath("aurora")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	legacy := `{"kind":"BridgeLogProBackup","version":2,"state":{"watchkeeper":"JB","log":[{"time":"07:00","courseTrue":"090"}],"daily":{"date":"2026-10-17"}}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	got, ok, err := NewFileStore(mgr, clock).Get(context.Background(), "aurora")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "090", got.Log[0].CourseMagnetic)
	assert.Equal(t, "2026-10-17", got.Log[0].Date)
	assert.Equal(t, []logbook.DayRecord{}, got.History)
}

func TestFileStoreMovesCorruptFileAside(t *testing.T) {
	mgr, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	path, err := mgr.StatePath("aurora")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, _, err = NewFileStore(mgr, clock).Get(context.Background(), "aurora")
	require.Error(t, err)
	assert.ErrorIs(t, err, logbook.ErrInvalidBackup)
	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr)
}

func TestFileStoreRejectsBadIdentity(t *testing.T) {
	mgr, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	err = NewFileStore(mgr, clock).Put(context.Background(), "../escape", sampleState())
	assert.ErrorIs(t, err, files.ErrInvalidIdentity)
}

func TestSQLiteStore(t *testing.T) {
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "bridgelog.db"), clock)
	require.NoError(t, err)
	defer st.Close()

	exerciseStore(t, st)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridgelog.db")
	ctx := context.Background()

	st, err := OpenSQLite(ctx, path, clock)
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, "aurora", sampleState()))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path, clock)
	require.NoError(t, err)
	defer st.Close()
	got, ok, err := st.Get(ctx, "aurora")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Aurora", got.Vessel.Name)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory(clock)
	exerciseStore(t, m)
	assert.Equal(t, 2, m.Puts())

	m.Fail = errors.New("offline")
	assert.EqualError(t, m.Put(context.Background(), "aurora", sampleState()), "offline")
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	st, err := OpenPostgres(context.Background(), dsn, clock)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.db.Where("user_id IN ?", []string{"aurora", "pelican"}).Delete(&LedgerState{}).Error)

	exerciseStore(t, st)
}

func TestOpen(t *testing.T) {
	mgr, err := files.NewManager(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	st, err := Open(ctx, Options{Manager: mgr})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)

	st, err = Open(ctx, Options{Backend: BackendSQLite, Manager: mgr})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())
	_, err = os.Stat(mgr.SQLitePath())
	assert.NoError(t, err)

	_, err = Open(ctx, Options{Backend: BackendPostgres})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
