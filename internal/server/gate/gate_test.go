package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
)

type fakeOracle struct {
	balances map[string]int64
	err      error
	failures int // fail this many calls before succeeding
	calls    int
}

func (f *fakeOracle) GetTokenBalance(_ context.Context, wallet string) (int64, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return 0, common.ErrOracleUnavailable
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[wallet], nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestGate(o *fakeOracle) *Gate {
	g := New(o, testLogger())
	g.attemptTimeout = time.Second
	return g
}

func TestIsAuthorized_PositiveBalance(t *testing.T) {
	g := newTestGate(&fakeOracle{balances: map[string]int64{"w1": 100}})

	ok, weight := g.IsAuthorized(context.Background(), "w1")
	assert.True(t, ok)
	assert.Equal(t, int64(100), weight)
}

func TestIsAuthorized_ZeroBalance(t *testing.T) {
	g := newTestGate(&fakeOracle{balances: map[string]int64{}})

	ok, weight := g.IsAuthorized(context.Background(), "w1")
	assert.False(t, ok)
	assert.Zero(t, weight)
}

func TestIsAuthorized_FailsClosedAfterRetries(t *testing.T) {
	o := &fakeOracle{err: errors.New("rpc down")}
	g := newTestGate(o)

	ok, weight := g.IsAuthorized(context.Background(), "w1")
	assert.False(t, ok)
	assert.Zero(t, weight)
	assert.Equal(t, int(defaultMaxRetries)+1, o.calls, "bounded retry, then give up")
}

func TestIsAuthorized_RecoversWithinRetryBudget(t *testing.T) {
	o := &fakeOracle{balances: map[string]int64{"w1": 42}, failures: 2}
	g := newTestGate(o)

	ok, weight := g.IsAuthorized(context.Background(), "w1")
	assert.True(t, ok)
	assert.Equal(t, int64(42), weight)
}
