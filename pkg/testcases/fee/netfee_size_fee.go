package fee

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/policy"
	"go.uber.org/zap"
)

// FeePerByteIncrement is added to the fee per byte for the second
// network fee check.
const FeePerByteIncrement = 100

// NetworkFeeSizeFee checks that network fee grows with the transaction size:
// two transactions differing in one script byte must have network fees
// differing by the fee per byte, both before and after the committee changes
// it. The original fee per byte is restored after the test.
type NetworkFeeSizeFee struct {
	FeeTesting

	updated int64
}

// NewNetworkFeeSizeFee creates NetworkFeeSizeFee case.
func NewNetworkFeeSizeFee(t *harness.Testing) *NetworkFeeSizeFee {
	return &NetworkFeeSizeFee{FeeTesting: FeeTesting{Testing: t.Named("NetworkFeeSizeFee")}}
}

// PreTest implements the harness.Case interface.
func (c *NetworkFeeSizeFee) PreTest(ctx context.Context) error {
	if err := c.FeeTesting.PreTest(ctx); err != nil {
		return err
	}
	c.updated = c.FeePerByte + FeePerByteIncrement
	return nil
}

// RunTest implements the harness.Case interface. Transactions are never
// sent, only their network fee is calculated.
func (c *NetworkFeeSizeFee) RunTest(ctx context.Context) error {
	if len(c.Env.Others) == 0 {
		return errNoOthers
	}
	vub, err := c.ValidUntilBlock()
	if err != nil {
		return err
	}
	var (
		acc   = c.Env.Others[0]
		short = c.MakeTx(acc, []byte{byte(opcode.PUSH1)}, 0, 0, vub)
		long  = c.MakeTx(acc, []byte{byte(opcode.PUSH1), byte(opcode.RET)}, 0, 0, vub)
	)
	if err := c.checkSizeFee(short, long, c.FeePerByte); err != nil {
		return err
	}
	if err := policy.SetFeePerByte(ctx, c.Testing, c.updated); err != nil {
		return fmt.Errorf("fee per byte update: %w", err)
	}
	return c.checkSizeFee(short, long, c.updated)
}

// PostTest implements the harness.Case interface, it restores the original
// fee per byte.
func (c *NetworkFeeSizeFee) PostTest(ctx context.Context) error {
	return policy.SetFeePerByte(ctx, c.Testing, c.FeePerByte)
}

func (c *NetworkFeeSizeFee) checkSizeFee(short, long *transaction.Transaction, feePerByte int64) error {
	f1, err := c.NetworkFee(short)
	if err != nil {
		return err
	}
	f2, err := c.NetworkFee(long)
	if err != nil {
		return err
	}
	var (
		sizeDiff = int64(long.Size() - short.Size())
		expected = f1 + feePerByte*sizeDiff
	)
	c.Log.Info("network fee", zap.Int64("short", f1), zap.Int64("long", f2), zap.Int64("fee per byte", feePerByte))
	if f2 != expected {
		return fmt.Errorf("fee per byte %d: network fee %d for %d more bytes, expected %d", feePerByte, f2, sizeDiff, expected)
	}
	return nil
}
