package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizmokh/bridgelog/internal/logbook"
	"github.com/faizmokh/bridgelog/internal/schedule"
	"github.com/faizmokh/bridgelog/internal/store"
	"github.com/faizmokh/bridgelog/internal/weather"
)

type fixture struct {
	ctl   *Controller
	store *store.Memory
	sched *schedule.Manual
	clock *clock
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeWeather struct {
	calls int
	wx    logbook.Weather
	err   error
}

func (f *fakeWeather) Fetch(_ context.Context, lat, lon float64) (logbook.Weather, error) {
	f.calls++
	return f.wx, f.err
}

func newFixture(t *testing.T, wx Fetcher) fixture {
	t.Helper()
	start := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	clk := &clock{now: start}
	st := store.NewMemory(clk.Now)
	sched := schedule.NewManual(start)
	ctl := New("aurora", st, Options{
		Scheduler:     sched,
		Now:           clk.Now,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Weather:       wx,
		LocationLabel: "Townsville",
	})
	require.NoError(t, ctl.Load(context.Background()))
	return fixture{ctl: ctl, store: st, sched: sched, clock: clk}
}

func note(text string) Transition {
	return func(s logbook.State) (logbook.State, error) {
		return logbook.AddNote(s, text, time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC))
	}
}

func TestLoadStartsFreshLedger(t *testing.T) {
	f := newFixture(t, nil)
	s := f.ctl.State()

	assert.Equal(t, "2026-10-17", s.Daily.Date)
	assert.Equal(t, "Townsville", s.LocLabel)
	assert.Equal(t, 0, f.store.Puts(), "loading does not write")
}

func TestLoadExistingLedger(t *testing.T) {
	st := store.NewMemory(nil)
	st.PutRaw("aurora", []byte(`{"kind":"BridgeLogProBackup","state":{"watchkeeper":"JB"}}`))

	ctl := New("aurora", st, Options{Scheduler: schedule.NewManual(time.Time{})})
	require.NoError(t, ctl.Load(context.Background()))
	assert.Equal(t, "JB", ctl.State().Watchkeeper)
}

func TestApplyBeforeLoad(t *testing.T) {
	ctl := New("aurora", store.NewMemory(nil), Options{Scheduler: schedule.NewManual(time.Time{})})
	_, err := ctl.Apply("note", note("x"))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestApplyDebouncesWrites(t *testing.T) {
	f := newFixture(t, nil)

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.ctl.Apply("note", note(text))
		require.NoError(t, err)
		f.sched.Advance(300 * time.Millisecond)
	}
	assert.Equal(t, 0, f.store.Puts(), "burst is still inside the window")
	assert.True(t, f.ctl.Status().Pending)

	f.sched.Advance(400 * time.Millisecond)
	assert.Equal(t, 1, f.store.Puts())
	assert.False(t, f.ctl.Status().Pending)

	saved, ok, err := f.store.Get(context.Background(), "aurora")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, saved.Notes, 3)
	assert.Equal(t, "three", saved.Notes[0].Text)
}

func TestApplyErrorLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, nil)
	before := f.ctl.State()

	got, err := f.ctl.Apply("note", note("   "))
	assert.ErrorIs(t, err, logbook.ErrEmptyNote)
	assert.Equal(t, before, got)
	assert.Equal(t, before, f.ctl.State())
	assert.False(t, f.ctl.Status().Pending)
}

func TestSubscribersSeeChangesInOrder(t *testing.T) {
	f := newFixture(t, nil)
	var seen []string
	cancel := f.ctl.Subscribe(func(ch Change) {
		seen = append(seen, ch.Name+":"+ch.State.Notes[0].Text)
		// reading back from a subscriber must not block
		_ = f.ctl.State()
	})

	_, err := f.ctl.Apply("note", note("a"))
	require.NoError(t, err)
	_, err = f.ctl.Apply("note", note("b"))
	require.NoError(t, err)
	cancel()
	_, err = f.ctl.Apply("note", note("c"))
	require.NoError(t, err)

	assert.Equal(t, []string{"note:a", "note:b"}, seen)
}

func TestFlushWritesImmediately(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.ctl.Flush(context.Background()))
	assert.Equal(t, 0, f.store.Puts(), "nothing to write")

	_, err := f.ctl.Apply("note", note("a"))
	require.NoError(t, err)
	require.NoError(t, f.ctl.Flush(context.Background()))
	assert.Equal(t, 1, f.store.Puts())

	f.sched.Advance(time.Second)
	assert.Equal(t, 1, f.store.Puts(), "flushed write is not repeated")
}

func TestWriteFailureIsRetriedOnNextChange(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Fail = errors.New("disk full")

	_, err := f.ctl.Apply("note", note("a"))
	require.NoError(t, err)
	f.sched.Advance(time.Second)

	status := f.ctl.Status()
	require.Error(t, status.LastError)
	assert.Contains(t, status.LastError.Error(), "disk full")
	assert.Equal(t, 0, status.Writes)

	f.store.Fail = nil
	_, err = f.ctl.Apply("note", note("b"))
	require.NoError(t, err)
	f.sched.Advance(time.Second)

	status = f.ctl.Status()
	assert.NoError(t, status.LastError)
	assert.Equal(t, 1, status.Writes)
	saved, _, err := f.store.Get(context.Background(), "aurora")
	require.NoError(t, err)
	assert.Len(t, saved.Notes, 2)
}

func TestTickRollsOverOncePerDate(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.ctl.Apply("note", note("watch handed over"))
	require.NoError(t, err)

	same := time.Date(2026, time.October, 17, 23, 59, 0, 0, time.UTC)
	assert.False(t, f.ctl.Tick(same))
	assert.False(t, f.ctl.Tick(same.Add(30*time.Second)))
	assert.Empty(t, f.ctl.State().History)

	next := time.Date(2026, time.October, 18, 0, 0, 30, 0, time.UTC)
	assert.True(t, f.ctl.Tick(next))
	assert.False(t, f.ctl.Tick(next.Add(30*time.Second)))

	s := f.ctl.State()
	require.Len(t, s.History, 1)
	assert.Equal(t, "2026-10-17", s.History[0].Date)
	assert.Equal(t, "2026-10-18", s.Daily.Date)
	assert.Empty(t, s.Notes)
}

func TestRefreshWeather(t *testing.T) {
	temp := 27.0
	wx := &fakeWeather{wx: logbook.Weather{TempC: &temp}}
	f := newFixture(t, wx)

	_, err := f.ctl.RefreshWeather(context.Background())
	assert.ErrorIs(t, err, ErrNoCoords)

	_, err = f.ctl.Apply("coords", func(s logbook.State) (logbook.State, error) {
		return logbook.SetCoords(s, -16.92, 145.77), nil
	})
	require.NoError(t, err)

	got, err := f.ctl.RefreshWeather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 27.0, *got.TempC)
	assert.Equal(t, 27.0, *f.ctl.State().LastWeather.TempC)

	_, err = f.ctl.RefreshWeather(context.Background())
	assert.ErrorIs(t, err, weather.ErrThrottled)
	assert.Equal(t, 1, wx.calls)

	f.clock.Set(f.clock.Now().Add(11 * time.Minute))
	_, err = f.ctl.RefreshWeather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, wx.calls)
}

func TestRefreshWeatherFailureKeepsSnapshot(t *testing.T) {
	wx := &fakeWeather{err: errors.New("HTTP 503")}
	f := newFixture(t, wx)
	_, err := f.ctl.Apply("coords", func(s logbook.State) (logbook.State, error) {
		return logbook.SetCoords(s, -16.92, 145.77), nil
	})
	require.NoError(t, err)

	_, err = f.ctl.RefreshWeather(context.Background())
	require.Error(t, err)
	assert.Nil(t, f.ctl.State().LastWeather.TempC)
}

func TestRunFlushesOnShutdown(t *testing.T) {
	st := store.NewMemory(nil)
	ctl := New("aurora", st, Options{
		Scheduler:    schedule.NewManual(time.Time{}),
		SaveDebounce: time.Hour,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, ctl.Load(context.Background()))
	_, err := ctl.Apply("watchkeeper", func(s logbook.State) (logbook.State, error) {
		return logbook.SetWatchkeeper(s, "JB"), nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctl.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, st.Puts())
}
