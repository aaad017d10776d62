// Package mint runs the background account aggregator check. The check runs
// on its own goroutine and hands its result back to the owner of the ledger,
// which publishes it on the bus from its own goroutine.
package mint

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Topics published when a check result is delivered.
const (
	TopicUpdated  = "mint.updated"
	TopicDisabled = "mint.disabled"
)

// ErrNoCredentials is returned when no username or password is configured.
var ErrNoCredentials = errors.New("no aggregator credentials configured")

// ErrNoClient is returned by Offline when credentials exist but no
// aggregator client is available.
var ErrNoClient = errors.New("no aggregator client available")

// Credentials identify the user at the aggregator.
type Credentials struct {
	Username string
	Password string
}

// Source is an account aggregator.
type Source interface {
	Login(ctx context.Context, creds Credentials) error
	// Balances returns remote balances keyed by account name.
	Balances(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Offline is the Source used when no aggregator client is linked in. Login
// always fails, so the feature degrades to disabled.
type Offline struct{}

func (Offline) Login(_ context.Context, creds Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return ErrNoCredentials
	}
	return ErrNoClient
}

func (Offline) Balances(context.Context) (map[string]decimal.Decimal, error) {
	return nil, ErrNoClient
}

// Result is the outcome of one check.
type Result struct {
	Balances map[string]decimal.Decimal
	Err      error
	Took     time.Duration
}

// Checker runs a single aggregator check in the background.
type Checker struct {
	source  Source
	creds   Credentials
	timeout time.Duration
	log     zerolog.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan Result
}

// NewChecker returns a checker that logs in with creds. A zero timeout
// defaults to 30 seconds.
func NewChecker(source Source, creds Credentials, timeout time.Duration, log zerolog.Logger) *Checker {
	if source == nil {
		source = Offline{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Checker{
		source:  source,
		creds:   creds,
		timeout: timeout,
		log:     log,
		done:    make(chan Result, 1),
	}
}

// Start launches the check. It never blocks; later calls are no-ops.
func (c *Checker) Start(ctx context.Context) {
	c.once.Do(func() {
		ctx, c.cancel = context.WithTimeout(ctx, c.timeout)
		go c.run(ctx)
	})
}

func (c *Checker) run(ctx context.Context) {
	start := time.Now()
	res := Result{}
	if err := c.source.Login(ctx, c.creds); err != nil {
		res.Err = err
	} else {
		res.Balances, res.Err = c.source.Balances(ctx)
	}
	res.Took = time.Since(start)

	if res.Err != nil {
		c.log.Warn().Err(res.Err).Dur("took", res.Took).Msg("aggregator check failed")
	} else {
		c.log.Debug().Int("accounts", len(res.Balances)).Dur("took", res.Took).Msg("aggregator check finished")
	}
	c.done <- res
}

// Poll returns the result if the check has finished. Each result is
// returned once.
func (c *Checker) Poll() (Result, bool) {
	select {
	case res := <-c.done:
		return res, true
	default:
		return Result{}, false
	}
}

// Done returns a channel receiving the result.
func (c *Checker) Done() <-chan Result { return c.done }

// Stop cancels a running check.
func (c *Checker) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}
