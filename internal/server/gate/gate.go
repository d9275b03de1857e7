// Package gate implements the balance-based authorization check gating
// governance writes.
package gate

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/metrics"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/oracle"
)

const (
	defaultAttemptTimeout = 3 * time.Second
	defaultMaxRetries     = 2
)

// Gate decides whether a wallet may perform governance actions, and with
// what weight, from a live balance read. Transient oracle failures are
// retried a bounded number of times and then treated as a zero balance:
// the gate fails closed, never stale-open.
type Gate struct {
	oracle         oracle.BalanceOracle
	logger         logging.Logger
	attemptTimeout time.Duration
	maxRetries     uint64
}

func New(o oracle.BalanceOracle, logger logging.Logger) *Gate {
	return &Gate{
		oracle:         o,
		logger:         logger.With("module", "gate"),
		attemptTimeout: defaultAttemptTimeout,
		maxRetries:     defaultMaxRetries,
	}
}

// IsAuthorized reports whether the wallet currently holds governance tokens
// and the weight (the balance) backing that decision. The weight is read at
// call time; callers wanting weight-at-vote-time semantics call this again
// when the vote is cast.
func (g *Gate) IsAuthorized(ctx context.Context, walletAddress string) (bool, int64) {
	weight := g.balance(ctx, walletAddress)
	return weight > 0, weight
}

func (g *Gate) balance(ctx context.Context, walletAddress string) int64 {
	var balance int64

	backoff := retry.WithMaxRetries(g.maxRetries, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()

		b, err := g.oracle.GetTokenBalance(attemptCtx, walletAddress)
		if err != nil {
			return retry.RetryableError(err)
		}
		balance = b
		return nil
	})

	if err != nil {
		metrics.OracleFailures.Inc()
		g.logger.Warn(ctx, "balance read failed, treating as zero", "error", err.Error())
		return 0
	}

	return balance
}
