package mint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	loginErr error
	balances map[string]decimal.Decimal
	block    chan struct{}
}

func (f *fakeSource) Login(ctx context.Context, _ Credentials) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.loginErr
}

func (f *fakeSource) Balances(context.Context) (map[string]decimal.Decimal, error) {
	return f.balances, nil
}

func wait(t *testing.T, c *Checker) Result {
	t.Helper()
	select {
	case res := <-c.Done():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("check did not finish")
	}
	return Result{}
}

func TestChecker_Success(t *testing.T) {
	src := &fakeSource{balances: map[string]decimal.Decimal{"Checking": decimal.NewFromInt(10)}}
	c := NewChecker(src, Credentials{Username: "u", Password: "p"}, 0, zerolog.Nop())
	c.Start(context.Background())

	res := wait(t, c)
	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if !res.Balances["Checking"].Equal(decimal.NewFromInt(10)) {
		t.Fatalf("Balances = %v", res.Balances)
	}
}

func TestChecker_StartDoesNotBlock(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	c := NewChecker(src, Credentials{}, time.Minute, zerolog.Nop())

	c.Start(context.Background())
	c.Start(context.Background())
	if _, ok := c.Poll(); ok {
		t.Fatal("Poll returned a result before the check finished")
	}

	close(src.block)
	if res := wait(t, c); res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
}

func TestChecker_Stop(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	c := NewChecker(src, Credentials{}, time.Minute, zerolog.Nop())
	c.Start(context.Background())
	c.Stop()

	if res := wait(t, c); !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", res.Err)
	}
}

func TestOffline(t *testing.T) {
	ctx := context.Background()
	if err := (Offline{}).Login(ctx, Credentials{}); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("Login without credentials = %v", err)
	}
	if err := (Offline{}).Login(ctx, Credentials{Username: "u", Password: "p"}); !errors.Is(err, ErrNoClient) {
		t.Fatalf("Login with credentials = %v", err)
	}
}
