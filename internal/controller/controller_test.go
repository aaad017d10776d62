package controller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/banker/internal/csvimport"
	"github.com/theirongolddev/banker/internal/currency"
	"github.com/theirongolddev/banker/internal/event"
	"github.com/theirongolddev/banker/internal/ledger"
	"github.com/theirongolddev/banker/internal/mint"
)

func newController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	c, err := New(path, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if !c.Closed() {
			_ = c.SetAutoSave(true)
			_ = c.Close()
		}
	})
	return c
}

func reload(t *testing.T, c *Controller) *ledger.Model {
	t.Helper()
	m, err := c.LoadPath(c.Path())
	if err != nil {
		t.Fatalf("LoadPath: %v", err)
	}
	t.Cleanup(func() { _ = c.CloseModel(m) })
	return m
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAutoSaveIsOnByDefault(t *testing.T) {
	c := newController(t)
	if !c.AutoSave() {
		t.Fatal("AutoSave() = false, want true")
	}
}

func TestNewAccountIsSameCurrencyAsOthers(t *testing.T) {
	c := newController(t)
	m := c.Model()

	a, err := m.CreateAccount("Hello")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if a.Currency() != currency.LocalizedIndex {
		t.Fatalf("first account currency = %d, want localized", a.Currency())
	}
	eur, _, _ := currency.Lookup("EUR")
	_ = a.SetCurrency(eur)

	b, _ := m.CreateAccount("Another!")
	if b.Currency() != eur {
		t.Fatalf("second account currency = %d, want %d", b.Currency(), eur)
	}
}

func TestBlankModelsAreEqual(t *testing.T) {
	c := newController(t)
	m2 := reload(t, c)
	if m2 == c.Model() {
		t.Fatal("LoadPath returned the primary model")
	}
	if !c.Model().Equal(m2) {
		t.Fatal("blank models differ")
	}
}

func TestAutoSaveDisabledSimple(t *testing.T) {
	c := newController(t)
	_ = c.SetAutoSave(false)
	if c.AutoSave() {
		t.Fatal("AutoSave() = true after disabling")
	}

	_, _ = c.Model().CreateAccount("Checking Account")
	if !c.Dirty() {
		t.Fatal("mutation without autosave did not mark dirty")
	}
	if c.Model().Equal(reload(t, c)) {
		t.Fatal("unsaved change visible after reload")
	}
}

func TestAutoSaveDisabledComplex(t *testing.T) {
	c := newController(t)
	m1 := c.Model()
	a1, _ := m1.CreateAccount("Checking Account")
	t1, _ := a1.AddTransaction(amount("-10"), "Description 1", civil.Date{})

	if !m1.Equal(reload(t, c)) {
		t.Fatal("autosaved model differs from reload")
	}

	_ = c.SetAutoSave(false)
	_, _ = a1.AddTransaction(amount("-10"), "Description 3", civil.Date{})
	m3 := reload(t, c)
	if m3 == m1 || m1.Equal(m3) {
		t.Fatal("unsaved transaction visible after reload")
	}

	if err := m1.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if c.Dirty() {
		t.Fatal("still dirty after Save")
	}
	if !m1.Equal(reload(t, c)) {
		t.Fatal("saved model differs from reload")
	}

	_ = t1.SetDescription("Description 2")
	if m1.Equal(reload(t, c)) {
		t.Fatal("unsaved description visible after reload")
	}
	_ = m1.Save()
	if !m1.Equal(reload(t, c)) {
		t.Fatal("saved description missing after reload")
	}
}

func TestEnablingAutoSaveSaves(t *testing.T) {
	c := newController(t)
	_ = c.SetAutoSave(false)
	_, _ = c.Model().CreateAccount("A")

	if c.Model().Equal(reload(t, c)) {
		t.Fatal("unsaved account visible after reload")
	}
	if err := c.SetAutoSave(true); err != nil {
		t.Fatalf("SetAutoSave(true): %v", err)
	}
	if c.Dirty() {
		t.Fatal("still dirty after enabling autosave")
	}
	if !c.Model().Equal(reload(t, c)) {
		t.Fatal("enabling autosave did not save")
	}
}

func TestSaveEventSaves(t *testing.T) {
	c := newController(t)
	_ = c.SetAutoSave(false)
	m1 := c.Model()
	_, _ = m1.CreateAccount("Hello!")

	m2 := reload(t, c)
	if len(m2.Accounts()) != 0 {
		t.Fatalf("reloaded %d accounts before save, want 0", len(m2.Accounts()))
	}

	c.Bus().Publish(TopicUserSaved, nil)

	m3 := reload(t, c)
	if len(m3.Accounts()) != 1 || !m1.Equal(m3) || m2.Equal(m3) {
		t.Fatal("user.saved did not persist the model")
	}
}

func TestMutationsAreStored(t *testing.T) {
	c := newController(t)
	m := c.Model()
	a, _ := m.CreateAccount("A")
	_ = a.SetName("B")
	tx, _ := a.AddTransaction(amount("-1.25"), "", civil.Date{})
	_ = tx.SetDescription("new")
	_ = tx.SetAmount(amount("-1.50"))
	_ = tx.AddTags("food")

	m2 := reload(t, c)
	if !m.Equal(m2) {
		t.Fatal("autosaved mutations missing after reload")
	}
	b, err := m2.Account("B")
	if err != nil {
		t.Fatalf("renamed account missing: %v", err)
	}
	if !b.Balance().Equal(a.Balance()) {
		t.Fatalf("Balance = %s, want %s", b.Balance(), a.Balance())
	}
}

func TestSecondaryModelMutationsIgnored(t *testing.T) {
	c := newController(t)
	_ = c.SetAutoSave(false)
	m2 := reload(t, c)
	_, _ = m2.CreateAccount("elsewhere")
	if c.Dirty() {
		t.Fatal("mutation of a secondary model marked the controller dirty")
	}
}

func TestDirtyExitWarns(t *testing.T) {
	c := newController(t)
	_ = c.SetAutoSave(false)
	a, _ := c.Model().CreateAccount("Unwarned!")

	c.Bus().Subscribe(TopicDirtyExit, func(string, any) {
		_ = a.SetName("Warned")
	})
	c.Bus().Publish(TopicExiting, nil)

	if a.Name() != "Warned" {
		t.Fatalf("Name = %q, want Warned", a.Name())
	}
	if !c.Closed() {
		t.Fatal("exiting did not close the controller")
	}
}

func TestDirtyExitSaveIsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	c, err := New(path, WithAutoSave(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _ = c.Model().CreateAccount("Keep me")

	var warned int
	c.Bus().Subscribe(TopicDirtyExit, func(_ string, p any) {
		warned++
		if err := p.(*DirtyExit).Model.Save(); err != nil {
			t.Errorf("Save from warning: %v", err)
		}
	})
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if warned != 1 {
		t.Fatalf("warnings = %d, want 1", warned)
	}

	c2, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c2.Close()
	if _, err := c2.Model().Account("Keep me"); err != nil {
		t.Fatalf("saved account missing: %v", err)
	}
}

func TestDirtyExitCancel(t *testing.T) {
	c := newController(t, WithAutoSave(false))
	_, _ = c.Model().CreateAccount("A")

	sub := c.Bus().Subscribe(TopicDirtyExit, func(_ string, p any) {
		p.(*DirtyExit).Cancel = true
	})
	if err := c.Close(); !errors.Is(err, ErrCloseCancelled) {
		t.Fatalf("Close err = %v, want ErrCloseCancelled", err)
	}
	if c.Closed() || c.Model().Closed() {
		t.Fatal("cancelled close still closed the controller")
	}
	c.Bus().Unsubscribe(sub)
}

func TestCleanCloseDoesNotWarn(t *testing.T) {
	c := newController(t)
	_, _ = c.Model().CreateAccount("A")

	warned := false
	c.Bus().Subscribe(TopicDirtyExit, func(string, any) { warned = true })
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if warned {
		t.Fatal("clean close published a dirty-exit warning")
	}
	if _, err := c.Model().CreateAccount("B"); !errors.Is(err, ledger.ErrClosed) {
		t.Fatalf("mutation after close err = %v, want ErrClosed", err)
	}
}

func TestLoadPathMissing(t *testing.T) {
	c := newController(t)
	_, err := c.LoadPath(filepath.Join(t.TempDir(), "nope.db"))
	var serr *ledger.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("LoadPath(missing) err = %v, want StorageError", err)
	}
}

func TestSharedBusIsInjectable(t *testing.T) {
	bus := event.New()
	var created int
	bus.Subscribe(ledger.TopicAccountCreated, func(string, any) { created++ })

	c := newController(t, WithBus(bus), WithClock(func() time.Time {
		return time.Date(2026, time.May, 1, 9, 0, 0, 0, time.Local)
	}))
	a, _ := c.Model().CreateAccount("A")
	tx, _ := a.AddTransaction(amount("1"), "", civil.Date{})

	if created != 1 {
		t.Fatalf("account.created seen %d times, want 1", created)
	}
	if tx.Date() != (civil.Date{Year: 2026, Month: time.May, Day: 1}) {
		t.Fatalf("default date = %s", tx.Date())
	}
}

type failingSource struct{}

func (failingSource) Login(context.Context, mint.Credentials) error {
	return errors.New("bad password")
}

func (failingSource) Balances(context.Context) (map[string]decimal.Decimal, error) {
	return nil, nil
}

func TestSyncFailureDisablesFeature(t *testing.T) {
	c := newController(t, WithSync(failingSource{}, mint.Credentials{Username: "u", Password: "p"}))

	var disabled int
	c.Bus().Subscribe(mint.TopicDisabled, func(string, any) { disabled++ })

	if err := c.Model().SetMintEnabled(true); err != nil {
		t.Fatalf("SetMintEnabled: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !c.WaitSync(ctx) {
		t.Fatal("sync result was not delivered")
	}
	if disabled != 1 || c.Model().MintEnabled() {
		t.Fatalf("disabled events %d, MintEnabled %v", disabled, c.Model().MintEnabled())
	}
	if reload(t, c).MintEnabled() {
		t.Fatal("disabled sync not persisted")
	}
}

func TestFailedAutoSaveStaysDirty(t *testing.T) {
	c := newController(t)
	var failed []any
	c.Bus().Subscribe(TopicSaveFailed, func(_ string, p any) { failed = append(failed, p) })

	if err := c.store.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}
	if _, err := c.Model().CreateAccount("Unsaved"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if !c.Dirty() {
		t.Fatal("failed autosave left the controller clean")
	}
	if len(failed) != 1 {
		t.Fatalf("%s published %d times, want 1", TopicSaveFailed, len(failed))
	}
	var serr *ledger.StorageError
	if err := c.Save(); !errors.As(err, &serr) {
		t.Fatalf("Save() err = %v, want *ledger.StorageError", err)
	}
	if !c.Dirty() {
		t.Fatal("failed Save cleared the dirty flag")
	}
}

func TestBatchSavesOnce(t *testing.T) {
	c := newController(t)
	a, _ := c.Model().CreateAccount("Checking")

	saves := 0
	c.Bus().Subscribe(ledger.TopicModelSaved, func(string, any) { saves++ })

	const n = 3000
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "2026/01/%02d;%d.25;row %d\n", i%28+1, i, i)
	}

	start := time.Now()
	err := c.Batch(func() error {
		_, err := csvimport.Import(strings.NewReader(b.String()), a, csvimport.DefaultSettings())
		return err
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Second {
		t.Fatalf("importing %d rows took %s", n, elapsed)
	}

	if saves != 1 {
		t.Fatalf("saves during batch = %d, want 1", saves)
	}
	if c.Dirty() {
		t.Fatal("dirty after batch with autosave on")
	}
	if got := len(reload(t, c).Transactions()); got != n {
		t.Fatalf("reloaded %d transactions, want %d", got, n)
	}
}

func TestBatchWithoutAutoSaveOnlyMarksDirty(t *testing.T) {
	c := newController(t)
	_ = c.SetAutoSave(false)
	err := c.Batch(func() error {
		_, err := c.Model().CreateAccount("A")
		return err
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if !c.Dirty() {
		t.Fatal("batch without autosave did not mark dirty")
	}
	if len(reload(t, c).Accounts()) != 0 {
		t.Fatal("batch saved with autosave off")
	}
}

func TestBatchKeepsPartialWork(t *testing.T) {
	c := newController(t)
	boom := errors.New("boom")
	err := c.Batch(func() error {
		if _, err := c.Model().CreateAccount("Kept"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Batch err = %v, want boom", err)
	}
	if _, err := reload(t, c).Account("Kept"); err != nil {
		t.Fatalf("work before the failure was not saved: %v", err)
	}
}
