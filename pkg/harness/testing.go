/*
Package harness contains the common base for integration test cases run
against a live Neo node: RPC access, block waiting, transaction building and
signing with testbed accounts and checks of execution results.
*/
package harness

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/neo"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
	"go.uber.org/zap"
)

const (
	// DefaultFee is the default system and network fee of test transactions
	// (0.1 GAS).
	DefaultFee int64 = 1_0000000
	// DefaultPollInterval is the block height polling interval.
	DefaultPollInterval = 3 * time.Second
	// DefaultMaxWait limits waiting for the next block.
	DefaultMaxWait = 5 * time.Minute
	// ValidUntilBlockIncrement is added to the current height to get
	// ValidUntilBlock of test transactions.
	ValidUntilBlockIncrement = 10
)

// ErrWaitTimeout is returned when no new block appears in time.
var ErrWaitTimeout = errors.New("timeout waiting for the next block")

// Testing is the context of a single test case, cases embed it to get access
// to the network and helpers. It's not safe for concurrent use.
type Testing struct {
	Env    *config.Env
	Client RPCClient
	Log    *zap.Logger

	DefaultSysFee int64
	DefaultNetFee int64
	PollInterval  time.Duration
	MaxWait       time.Duration

	name string
	base *zap.Logger
}

// New creates Testing for the given testbed and client with default fees and
// waiting parameters.
func New(env *config.Env, client RPCClient, log *zap.Logger) *Testing {
	if log == nil {
		log = zap.NewNop()
	}
	return &Testing{
		Env:           env,
		Client:        client,
		Log:           log.Named("Testing"),
		DefaultSysFee: DefaultFee,
		DefaultNetFee: DefaultFee,
		PollInterval:  DefaultPollInterval,
		MaxWait:       DefaultMaxWait,
		name:          "Testing",
		base:          log,
	}
}

// Named returns a copy of t for the case with the given name.
func (t *Testing) Named(name string) *Testing {
	c := *t
	c.name = name
	c.Log = t.base.Named(name)
	return &c
}

// Name returns the name of the case.
func (t *Testing) Name() string {
	return t.name
}

// Harness implements the Case interface.
func (t *Testing) Harness() *Testing {
	return t
}

// PreTest implements the Case interface, it does nothing.
func (t *Testing) PreTest(context.Context) error {
	return nil
}

// PostTest implements the Case interface, it does nothing.
func (t *Testing) PostTest(context.Context) error {
	return nil
}

// BlockIndex returns the index of the latest block.
func (t *Testing) BlockIndex() (uint32, error) {
	count, err := t.Client.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get block count: %w", err)
	}
	if count == 0 {
		return 0, errors.New("node has no blocks")
	}
	return count - 1, nil
}

// ValidUntilBlock returns ValidUntilBlock value for a new transaction.
func (t *Testing) ValidUntilBlock() (uint32, error) {
	index, err := t.BlockIndex()
	if err != nil {
		return 0, err
	}
	return index + ValidUntilBlockIncrement, nil
}

// WaitNextBlock polls the node until a block after current appears and
// returns its index. while describes what's being waited for in logs.
func (t *Testing) WaitNextBlock(ctx context.Context, current uint32, while string) (uint32, error) {
	var (
		start  = time.Now()
		ticker = time.NewTicker(t.PollInterval)
	)
	defer ticker.Stop()
	for {
		index, err := t.BlockIndex()
		if err != nil {
			return 0, err
		}
		if index > current {
			t.Log.Info("waited for the next block",
				zap.Uint32("current", current),
				zap.Uint32("index", index),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("while", while))
			return index, nil
		}
		if time.Since(start) > t.MaxWait {
			return 0, fmt.Errorf("%w: block after %d not seen in %s", ErrWaitTimeout, current, t.MaxWait)
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
		t.Log.Debug("waiting for the next block",
			zap.Uint32("current", current),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("while", while))
	}
}

// Invoker returns signer-less invoker over the client.
func (t *Testing) Invoker() *invoker.Invoker {
	return invoker.New(t.Client, nil)
}

// NEOBalance returns NEO balance of the account.
func (t *Testing) NEOBalance(account util.Uint160) (*big.Int, error) {
	b, err := neo.NewReader(t.Invoker()).BalanceOf(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get NEO balance of %s: %w", account.StringLE(), err)
	}
	return b, nil
}

// GASBalance returns GAS balance of the account.
func (t *Testing) GASBalance(account util.Uint160) (*big.Int, error) {
	b, err := gas.NewReader(t.Invoker()).BalanceOf(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get GAS balance of %s: %w", account.StringLE(), err)
	}
	return b, nil
}

// Send submits the transaction to the node.
func (t *Testing) Send(tx *transaction.Transaction) (util.Uint256, error) {
	h, err := t.Client.SendRawTransaction(tx)
	if err != nil {
		return util.Uint256{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	if !h.Equals(tx.Hash()) {
		return util.Uint256{}, fmt.Errorf("node returned %s hash for transaction %s", h.StringLE(), tx.Hash().StringLE())
	}
	t.Log.Info("transaction sent", zap.String("hash", h.StringLE()))
	return h, nil
}

// LogMempool logs whether the transaction is in the verified mempool. The
// transaction may already be in a block at this moment, so it's not an error
// if it's missing. Unverified transactions are not logged since the client
// only requests the short getrawmempool form.
func (t *Testing) LogMempool(h util.Uint256) {
	pool, err := t.Client.GetRawMemPool()
	if err != nil {
		t.Log.Warn("failed to get mempool", zap.Error(err))
		return
	}
	t.Log.Info("mempool",
		zap.Int("verified", len(pool)),
		zap.Bool("contains", slices.Contains(pool, h)))
}

// ApplicationLog fetches application log of the transaction.
func (t *Testing) ApplicationLog(h util.Uint256) (*result.ApplicationLog, error) {
	aer, err := t.Client.GetApplicationLog(h, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get application log of %s: %w", h.StringLE(), err)
	}
	t.Log.Info("application log", zap.String("hash", h.StringLE()), zap.Any("log", aer))
	return aer, nil
}

// SendAndWait sends the transaction, waits for the next block and returns the
// transaction's application log.
func (t *Testing) SendAndWait(ctx context.Context, tx *transaction.Transaction, while string) (*result.ApplicationLog, error) {
	h, err := t.Send(tx)
	if err != nil {
		return nil, err
	}
	t.LogMempool(h)
	index, err := t.BlockIndex()
	if err != nil {
		return nil, err
	}
	_, err = t.WaitNextBlock(ctx, index, while)
	if err != nil {
		return nil, err
	}
	return t.ApplicationLog(h)
}
