// Package controller owns the lifecycle of the ledger model: loading it from
// the store, the autosave policy, the dirty state and closing.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/banker/internal/event"
	"github.com/theirongolddev/banker/internal/ledger"
	"github.com/theirongolddev/banker/internal/mint"
	"github.com/theirongolddev/banker/internal/store"
)

// Topics the controller publishes or reacts to.
const (
	TopicDirtyExit  = "warning.dirty exit"
	TopicSaveFailed = "warning.save failed"
	TopicExiting    = "exiting"
	TopicUserSaved  = "user.saved"
)

// ErrCloseCancelled is returned by Close when a dirty-exit subscriber
// cancelled the close.
var ErrCloseCancelled = errors.New("close cancelled")

// DirtyExit is the payload of TopicDirtyExit. Subscribers may save the model
// or set Cancel to keep the controller open; doing nothing discards the
// unsaved changes.
type DirtyExit struct {
	Model  *ledger.Model
	Cancel bool
}

// Controller manages one primary model backed by a database file.
type Controller struct {
	path     string
	bus      event.Bus
	log      zerolog.Logger
	now      func() time.Time
	autoSave bool

	source mint.Source
	creds  mint.Credentials
	sync   *mint.Checker

	store  *store.Store
	model  *ledger.Model
	dirty  bool
	closed bool
	subs   []event.Subscription

	// set while Batch runs; mutations only mark the controller dirty
	batching bool

	// secondary models opened with LoadPath
	loaded map[*ledger.Model]*store.Store
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus sets the bus shared with views and other collaborators.
func WithBus(bus event.Bus) Option { return func(c *Controller) { c.bus = bus } }

// WithLogger sets the controller's logger.
func WithLogger(log zerolog.Logger) Option { return func(c *Controller) { c.log = log } }

// WithAutoSave sets the initial autosave policy. The default is on.
func WithAutoSave(on bool) Option { return func(c *Controller) { c.autoSave = on } }

// WithClock overrides the source of "today" for every loaded model.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithSync sets the aggregator used when the model has sync enabled.
func WithSync(source mint.Source, creds mint.Credentials) Option {
	return func(c *Controller) {
		c.source = source
		c.creds = creds
	}
}

// New opens or creates the ledger at path and loads its model.
func New(path string, opts ...Option) (*Controller, error) {
	c := &Controller{
		path:     path,
		log:      zerolog.Nop(),
		now:      time.Now,
		autoSave: true,
		loaded:   make(map[*ledger.Model]*store.Store),
	}
	for _, o := range opts {
		o(c)
	}
	if c.bus == nil {
		c.bus = event.New()
	}

	s, err := store.OpenOrCreate(path)
	if err != nil {
		return nil, err
	}
	m, err := s.Load(c.bus, ledger.WithClock(c.now))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	c.store, c.model = s, m
	m.Listen()

	for _, topic := range ledger.MutationTopics {
		c.subs = append(c.subs, c.bus.Subscribe(topic, c.onMutation))
	}
	c.subs = append(c.subs,
		c.bus.Subscribe(ledger.TopicModelSaved, c.onSaved),
		c.bus.Subscribe(TopicUserSaved, func(string, any) {
			if err := c.Save(); err != nil {
				c.log.Error().Err(err).Msg("save requested by user failed")
			}
		}),
		c.bus.Subscribe(TopicExiting, func(string, any) {
			if err := c.Close(); err != nil {
				c.log.Info().Err(err).Msg("exit interrupted")
			}
		}),
	)

	c.log.Debug().Str("path", path).Int("accounts", len(m.Accounts())).Msg("ledger loaded")
	if m.MintEnabled() {
		c.startSync()
	}
	return c, nil
}

// Model returns the primary model.
func (c *Controller) Model() *ledger.Model { return c.model }

// Bus returns the bus the controller and its models publish on.
func (c *Controller) Bus() event.Bus { return c.bus }

// Path returns the database path of the primary model.
func (c *Controller) Path() string { return c.path }

// AutoSave reports whether every mutation is persisted immediately.
func (c *Controller) AutoSave() bool { return c.autoSave }

// Dirty reports whether the primary model holds unsaved changes.
func (c *Controller) Dirty() bool { return c.dirty }

// Closed reports whether Close has completed.
func (c *Controller) Closed() bool { return c.closed }

// SetAutoSave changes the autosave policy. Switching it on while dirty saves
// right away.
func (c *Controller) SetAutoSave(on bool) error {
	c.autoSave = on
	c.log.Debug().Bool("autosave", on).Msg("autosave changed")
	if on && c.dirty {
		return c.Save()
	}
	return nil
}

// Save persists the primary model. It is idempotent.
func (c *Controller) Save() error {
	if c.closed {
		return ledger.ErrClosed
	}
	if err := c.model.Save(); err != nil {
		c.dirty = true
		return err
	}
	return nil
}

// Batch runs fn with autosave suspended, then saves once if autosave is on
// and fn changed anything. The save happens even when fn fails part way, so
// the changes fn did make are kept as autosave would have kept them.
// Nested calls run inside the outer batch.
func (c *Controller) Batch(fn func() error) error {
	if c.batching {
		return fn()
	}
	c.batching = true
	err := func() error {
		defer func() { c.batching = false }()
		return fn()
	}()

	if !c.autoSave || !c.dirty || c.closed {
		return err
	}
	if serr := c.Save(); serr != nil {
		c.log.Error().Err(serr).Msg("batch save failed")
		c.bus.Publish(TopicSaveFailed, serr)
		return errors.Join(err, serr)
	}
	c.log.Debug().Msg("batch saved")
	return err
}

// LoadPath materializes a new, independent model from the database at path.
// The result is never the primary model; release it with CloseModel.
func (c *Controller) LoadPath(path string) (*ledger.Model, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := s.Load(c.bus, ledger.WithClock(c.now))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	c.loaded[m] = s
	return m, nil
}

// CloseModel closes a model returned by LoadPath.
func (c *Controller) CloseModel(m *ledger.Model) error {
	s, ok := c.loaded[m]
	if !ok {
		return fmt.Errorf("model was not loaded by this controller")
	}
	delete(c.loaded, m)
	m.Close()
	return s.Close()
}

// Close shuts the controller down. With unsaved changes it first publishes
// TopicDirtyExit; if a subscriber cancels, Close returns ErrCloseCancelled
// and nothing is closed.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	if c.dirty {
		c.log.Warn().Str("path", c.path).Msg("closing with unsaved changes")
		ev := &DirtyExit{Model: c.model}
		c.bus.Publish(TopicDirtyExit, ev)
		if ev.Cancel {
			return ErrCloseCancelled
		}
	}

	if c.sync != nil {
		c.sync.Stop()
	}
	for _, s := range c.subs {
		c.bus.Unsubscribe(s)
	}
	c.subs = nil

	var errs []error
	for m := range c.loaded {
		errs = append(errs, c.CloseModel(m))
	}
	c.model.Close()
	errs = append(errs, c.store.Close())
	c.closed = true
	c.log.Debug().Str("path", c.path).Bool("discarded", c.dirty).Msg("ledger closed")
	return errors.Join(errs...)
}

// PollSync delivers a finished aggregator check on the caller's goroutine.
// A failed check switches sync off. It reports whether a result was
// delivered.
func (c *Controller) PollSync() bool {
	if c.sync == nil || c.closed {
		return false
	}
	res, ok := c.sync.Poll()
	if !ok {
		return false
	}
	c.deliver(res)
	return true
}

// WaitSync blocks until the running aggregator check finishes or ctx ends,
// then delivers it like PollSync.
func (c *Controller) WaitSync(ctx context.Context) bool {
	if c.sync == nil || c.closed {
		return false
	}
	select {
	case res := <-c.sync.Done():
		c.deliver(res)
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) deliver(res mint.Result) {
	c.sync = nil
	if res.Err != nil {
		c.bus.Publish(mint.TopicDisabled, res.Err)
		if err := c.model.SetMintEnabled(false); err != nil {
			c.log.Error().Err(err).Msg("disabling sync")
		}
		return
	}
	c.bus.Publish(mint.TopicUpdated, res.Balances)
}

func (c *Controller) startSync() {
	if c.sync != nil {
		return
	}
	c.sync = mint.NewChecker(c.source, c.creds, 0, c.log)
	c.sync.Start(context.Background())
}

func (c *Controller) onMutation(topic string, payload any) {
	ch, ok := payload.(ledger.Change)
	if !ok || ch.Model != c.model || c.closed {
		return
	}
	if topic == ledger.TopicMintToggled && c.model.MintEnabled() {
		c.startSync()
	}
	if !c.autoSave || c.batching {
		c.dirty = true
		return
	}
	if err := c.model.Save(); err != nil {
		c.dirty = true
		c.log.Error().Err(err).Str("topic", topic).Msg("autosave failed")
		c.bus.Publish(TopicSaveFailed, err)
		return
	}
	c.log.Debug().Str("topic", topic).Msg("autosaved")
}

func (c *Controller) onSaved(_ string, payload any) {
	if ch, ok := payload.(ledger.Change); ok && ch.Model == c.model {
		c.dirty = false
	}
}
