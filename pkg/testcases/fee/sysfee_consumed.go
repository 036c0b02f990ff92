package fee

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
)

// PricePUSH1 is the base price of PUSH1 instruction.
const PricePUSH1 = 1

// SystemFeeConsumed checks that consumed system fee depends on the executed
// instructions only: RET costs nothing and PUSH1 costs PricePUSH1 multiplied
// by the exec fee factor.
type SystemFeeConsumed struct {
	FeeTesting
}

// NewSystemFeeConsumed creates SystemFeeConsumed case.
func NewSystemFeeConsumed(t *harness.Testing) *SystemFeeConsumed {
	return &SystemFeeConsumed{FeeTesting{Testing: t.Named("SystemFeeConsumed")}}
}

// RunTest implements the harness.Case interface. Both transactions are sent
// before waiting, so they're usually included into the same block.
func (c *SystemFeeConsumed) RunTest(ctx context.Context) error {
	if len(c.Env.Others) == 0 {
		return errNoOthers
	}
	vub, err := c.ValidUntilBlock()
	if err != nil {
		return err
	}
	var (
		acc  = c.Env.Others[0]
		ret  = c.MakeTx(acc, []byte{byte(opcode.RET)}, c.DefaultSysFee, c.DefaultNetFee, vub)
		push = c.MakeTx(acc, []byte{byte(opcode.PUSH1)}, c.DefaultSysFee, c.DefaultNetFee, vub)
	)
	for _, tx := range []*transaction.Transaction{ret, push} {
		if _, err := c.Send(tx); err != nil {
			return err
		}
	}
	index, err := c.BlockIndex()
	if err != nil {
		return err
	}
	if _, err := c.WaitNextBlock(ctx, index, "RET and PUSH1 transactions"); err != nil {
		return err
	}

	if err := c.checkConsumed(ret, 0, nil); err != nil {
		return fmt.Errorf("RET: %w", err)
	}
	err = c.checkConsumed(push, c.ExecFeeFactor*PricePUSH1, []stackitem.Item{stackitem.Make(1)})
	if err != nil {
		return fmt.Errorf("PUSH1: %w", err)
	}
	return nil
}
