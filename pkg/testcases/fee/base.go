// Package fee contains transaction fee cases.
package fee

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"go.uber.org/zap"
)

var errNoOthers = errors.New("testbed has no other accounts")

// FeeTesting is the base of fee cases, it reads current Policy values
// before the test.
type FeeTesting struct {
	*harness.Testing

	ExecFeeFactor int64
	FeePerByte    int64
}

// PreTest implements the harness.Case interface.
func (f *FeeTesting) PreTest(ctx context.Context) error {
	if err := f.Testing.PreTest(ctx); err != nil {
		return err
	}
	r := policy.NewReader(f.Invoker())
	v, err := r.GetExecFeeFactor()
	if err != nil {
		return fmt.Errorf("failed to get exec fee factor: %w", err)
	}
	f.ExecFeeFactor = v
	v, err = r.GetFeePerByte()
	if err != nil {
		return fmt.Errorf("failed to get fee per byte: %w", err)
	}
	f.FeePerByte = v
	f.Log.Info("policy", zap.Int64("exec fee factor", f.ExecFeeFactor), zap.Int64("fee per byte", f.FeePerByte))
	return nil
}

// checkConsumed checks the persisted transaction to HALT with the stack
// after consuming exactly gas.
func (f *FeeTesting) checkConsumed(tx *transaction.Transaction, gas int64, stack []stackitem.Item) error {
	log, err := f.ApplicationLog(tx.Hash())
	if err != nil {
		return err
	}
	exec, err := harness.CheckApplicationLog(log, tx.Hash())
	if err != nil {
		return err
	}
	f.Log.Info("system fee consumed", zap.String("hash", tx.Hash().StringLE()), zap.Int64("gas", exec.GasConsumed))
	if exec.GasConsumed != gas {
		return fmt.Errorf("gas consumed %d, expected %d", exec.GasConsumed, gas)
	}
	return harness.CheckExecutionResult(exec, stack, "")
}
