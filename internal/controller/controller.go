// Package controller owns the ledger of one identity. Every change goes through
// Apply as a pure transition; persistence is a debounced write-behind and
// observers subscribe to change events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/faizmokh/bridgelog/internal/logbook"
	"github.com/faizmokh/bridgelog/internal/schedule"
	"github.com/faizmokh/bridgelog/internal/store"
	"github.com/faizmokh/bridgelog/internal/weather"
)

// ErrNoCoords is returned by RefreshWeather when no position has been fixed.
var ErrNoCoords = errors.New("no coordinates set")

// ErrNotLoaded is returned when the ledger is used before Load.
var ErrNotLoaded = errors.New("ledger not loaded")

// errUnchanged aborts a transition that turned out to be a no-op.
var errUnchanged = errors.New("unchanged")

// Transition is a pure state change.
type Transition func(logbook.State) (logbook.State, error)

// Change is delivered to subscribers after every applied transition.
type Change struct {
	Name  string
	State logbook.State
}

// Status describes the write-behind.
type Status struct {
	LastSaved time.Time
	LastError error
	Writes    int
	Pending   bool
}

// Fetcher pulls a weather snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (logbook.Weather, error)
}

// Options tune a Controller. Zero values take the defaults.
type Options struct {
	Scheduler        schedule.Scheduler
	Now              func() time.Time
	Logger           *slog.Logger
	SaveDebounce     time.Duration
	RolloverInterval time.Duration
	Weather          Fetcher
	WeatherCooldown  time.Duration
	LocationLabel    string
}

// Controller is the state container of one identity.
type Controller struct {
	identity string
	store    store.Store
	sched    schedule.Scheduler
	now      func() time.Time
	logger   *slog.Logger
	debounce time.Duration
	interval time.Duration
	weather  Fetcher
	throttle *weather.Throttle
	label    string

	mu      sync.Mutex
	state   logbook.State
	loaded  bool
	dirty   bool
	pending schedule.Timer
	status  Status
	subs    map[int]func(Change)
	nextSub int
	issued  uint64

	notifyMu  sync.Mutex
	notified  *sync.Cond
	delivered uint64

	writeMu sync.Mutex
}

// New returns a Controller for identity backed by st.
func New(identity string, st store.Store, opts Options) *Controller {
	c := &Controller{
		identity: identity,
		store:    st,
		sched:    opts.Scheduler,
		now:      opts.Now,
		logger:   opts.Logger,
		debounce: opts.SaveDebounce,
		interval: opts.RolloverInterval,
		weather:  opts.Weather,
		label:    opts.LocationLabel,
		subs:     make(map[int]func(Change)),
	}
	c.notified = sync.NewCond(&c.notifyMu)
	if c.sched == nil {
		c.sched = schedule.Real{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("identity", identity)
	if c.debounce <= 0 {
		c.debounce = 700 * time.Millisecond
	}
	if c.interval <= 0 {
		c.interval = 30 * time.Second
	}
	cooldown := opts.WeatherCooldown
	if cooldown <= 0 {
		cooldown = 10 * time.Minute
	}
	c.throttle = weather.NewThrottle(cooldown)
	return c
}

// Identity returns the identity the controller serves.
func (c *Controller) Identity() string { return c.identity }

// Now returns the controller clock.
func (c *Controller) Now() time.Time { return c.now() }

// Load reads the stored ledger, or starts a fresh one when none exists.
func (c *Controller) Load(ctx context.Context) error {
	s, ok, err := c.store.Get(ctx, c.identity)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if !ok {
		s = logbook.DefaultState(c.now())
		if c.label != "" {
			s.LocLabel = c.label
		}
		c.logger.Info("starting new ledger", "date", s.Daily.Date)
	} else {
		c.logger.Debug("ledger loaded", "date", s.Daily.Date, "entries", len(s.Log), "days", len(s.History))
	}

	c.mu.Lock()
	c.state = s
	c.loaded = true
	ticket, fns := c.ticketLocked()
	c.mu.Unlock()
	c.deliver(ticket, fns, Change{Name: "load", State: s})
	return nil
}

// State returns the current ledger.
func (c *Controller) State() logbook.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status reports the write-behind state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.status
	st.Pending = c.pending != nil
	return st
}

// Subscribe registers fn for change events and returns its cancel function.
// Events are delivered in the order transitions were applied.
func (c *Controller) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Apply runs t against the current ledger. On error nothing changes; on
// success the new ledger is stored, subscribers are told and a save is scheduled.
func (c *Controller) Apply(name string, t Transition) (logbook.State, error) {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return logbook.State{}, ErrNotLoaded
	}
	next, err := t(c.state)
	if err != nil {
		s := c.state
		c.mu.Unlock()
		return s, err
	}
	next.UpdatedAt = c.now().UTC()
	c.state = next
	c.dirty = true
	c.scheduleSaveLocked()
	ticket, fns := c.ticketLocked()
	c.mu.Unlock()
	c.deliver(ticket, fns, Change{Name: name, State: next})

	c.logger.Debug("applied", "change", name, "date", next.Daily.Date)
	return next, nil
}

// ticketLocked numbers a change and snapshots the subscribers that will see it.
func (c *Controller) ticketLocked() (uint64, []func(Change)) {
	c.issued++
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	return c.issued, fns
}

// deliver runs the subscribers of change number ticket once every earlier
// change has been delivered. Subscribers must not call Apply synchronously.
func (c *Controller) deliver(ticket uint64, fns []func(Change), ch Change) {
	c.notifyMu.Lock()
	for c.delivered != ticket-1 {
		c.notified.Wait()
	}
	c.notifyMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}

	c.notifyMu.Lock()
	c.delivered = ticket
	c.notified.Broadcast()
	c.notifyMu.Unlock()
}

func (c *Controller) scheduleSaveLocked() {
	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = c.sched.Schedule(c.debounce, func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = c.save(ctx)
	})
}

// Flush cancels the pending save and writes the latest ledger now.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.mu.Unlock()
	return c.save(ctx)
}

// save writes the latest ledger if it changed since the last write. A failure
// is logged and kept in Status; the ledger stays dirty so the next change or
// Flush tries again.
func (c *Controller) save(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	s := c.state
	c.dirty = false
	c.mu.Unlock()

	err := c.store.Put(ctx, c.identity, s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.dirty = true
		c.status.LastError = err
		c.logger.Error("save failed", "error", err)
		return fmt.Errorf("save ledger: %w", err)
	}
	c.status.LastError = nil
	c.status.LastSaved = c.now()
	c.status.Writes++
	c.logger.Debug("ledger saved", "date", s.Daily.Date)
	return nil
}

// Tick archives the live day if the calendar date has moved past it.
func (c *Controller) Tick(now time.Time) bool {
	rolled := false
	_, err := c.Apply("rollover", func(s logbook.State) (logbook.State, error) {
		next, ok := logbook.Rollover(s, now)
		if !ok {
			return s, errUnchanged
		}
		rolled = true
		return next, nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		c.logger.Warn("rollover skipped", "error", err)
	}
	if rolled {
		c.logger.Info("day rolled over", "date", c.State().Daily.Date)
	}
	return rolled
}

// Run checks for a date change on every rollover interval until ctx ends, then
// flushes the pending save.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Tick(c.now())
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return c.Flush(flushCtx)
		case <-ticker.C:
			c.Tick(c.now())
		}
	}
}

// RefreshWeather pulls conditions for the ledger's coordinates and stores the
// snapshot. Pulls are limited to one per cool-down window.
func (c *Controller) RefreshWeather(ctx context.Context) (logbook.Weather, error) {
	if c.weather == nil {
		return logbook.Weather{}, errors.New("weather disabled")
	}
	coords := c.State().Coords
	if coords.Lat == nil || coords.Lon == nil {
		return logbook.Weather{}, ErrNoCoords
	}
	if wait, err := c.throttle.Allow(c.now()); err != nil {
		return logbook.Weather{}, fmt.Errorf("%w, try again in %s", err, wait.Round(time.Second))
	}

	wx, err := c.weather.Fetch(ctx, *coords.Lat, *coords.Lon)
	if err != nil {
		c.logger.Warn("weather pull failed", "error", err)
		return logbook.Weather{}, err
	}
	if _, err := c.Apply("weather", func(s logbook.State) (logbook.State, error) {
		return logbook.SetWeather(s, wx), nil
	}); err != nil {
		return logbook.Weather{}, err
	}
	return wx, nil
}
