package fee

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/policy"
)

// ExecFeeFactorIncrement is added to the exec fee factor for the second
// PUSH1 transaction.
const ExecFeeFactorIncrement = 10

// SystemFeeExecFactor checks that consumed system fee follows the exec fee
// factor: PUSH1 costs PricePUSH1 multiplied by the current factor both
// before and after the committee changes it. The original factor is
// restored after the test.
type SystemFeeExecFactor struct {
	FeeTesting

	updated int64
}

// NewSystemFeeExecFactor creates SystemFeeExecFactor case.
func NewSystemFeeExecFactor(t *harness.Testing) *SystemFeeExecFactor {
	return &SystemFeeExecFactor{FeeTesting: FeeTesting{Testing: t.Named("SystemFeeExecFactor")}}
}

// PreTest implements the harness.Case interface.
func (c *SystemFeeExecFactor) PreTest(ctx context.Context) error {
	if err := c.FeeTesting.PreTest(ctx); err != nil {
		return err
	}
	c.updated = c.ExecFeeFactor + ExecFeeFactorIncrement
	return nil
}

// RunTest implements the harness.Case interface.
func (c *SystemFeeExecFactor) RunTest(ctx context.Context) error {
	if err := c.push1(ctx, c.ExecFeeFactor); err != nil {
		return fmt.Errorf("PUSH1 with factor %d: %w", c.ExecFeeFactor, err)
	}
	if err := policy.SetExecFeeFactor(ctx, c.Testing, c.updated); err != nil {
		return fmt.Errorf("exec fee factor update: %w", err)
	}
	if err := c.push1(ctx, c.updated); err != nil {
		return fmt.Errorf("PUSH1 with factor %d: %w", c.updated, err)
	}
	return nil
}

// PostTest implements the harness.Case interface, it restores the original
// exec fee factor.
func (c *SystemFeeExecFactor) PostTest(ctx context.Context) error {
	return policy.SetExecFeeFactor(ctx, c.Testing, c.ExecFeeFactor)
}

func (c *SystemFeeExecFactor) push1(ctx context.Context, factor int64) error {
	if len(c.Env.Others) == 0 {
		return errNoOthers
	}
	vub, err := c.ValidUntilBlock()
	if err != nil {
		return err
	}
	tx := c.MakeTx(c.Env.Others[0], []byte{byte(opcode.PUSH1)}, c.DefaultSysFee, c.DefaultNetFee, vub)
	if _, err := c.SendAndWait(ctx, tx, "PUSH1 transaction"); err != nil {
		return err
	}
	return c.checkConsumed(tx, factor*PricePUSH1, []stackitem.Item{stackitem.Make(1)})
}
