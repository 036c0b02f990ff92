package policy

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"go.uber.org/zap"
)

const (
	// MinMaxTraceableBlocks is the minimal allowed MaxTraceableBlocks.
	MinMaxTraceableBlocks = 1
	// MaxMaxTraceableBlocks is the maximal allowed MaxTraceableBlocks (one
	// year of 15-second blocks).
	MaxMaxTraceableBlocks = 2102400
	// MaxTraceableBlocksDecrement is subtracted from the current value to get
	// the updated one.
	MaxTraceableBlocksDecrement = 100

	cantIncreaseMsg         = "MaxTraceableBlocks can not be increased"
	notLargerThanVUBIncrMsg = "MaxTraceableBlocks must be larger than MaxValidUntilBlockIncrement"
)

var maxTraceableBlocks = setting{name: "MaxTraceableBlocks", min: MinMaxTraceableBlocks, max: MaxMaxTraceableBlocks}

// MaxTraceableBlocks checks getMaxTraceableBlocks/setMaxTraceableBlocks
// Policy methods. Besides the usual permission and range checks the value
// can only be decreased and must stay larger than MaxValidUntilBlockIncrement.
// Since it can't be increased back, the original value is not restored.
type MaxTraceableBlocks struct {
	settingCase
}

// NewMaxTraceableBlocks creates MaxTraceableBlocks case.
func NewMaxTraceableBlocks(t *harness.Testing) *MaxTraceableBlocks {
	return &MaxTraceableBlocks{newSettingCase(t, maxTraceableBlocks)}
}

// PreTest implements the harness.Case interface, the setter only exists
// after Echidna hardfork.
func (c *MaxTraceableBlocks) PreTest(ctx context.Context) error {
	if err := c.Testing.PreTest(ctx); err != nil {
		return err
	}
	index, err := c.BlockIndex()
	if err != nil {
		return err
	}
	if !c.Env.Hardforks.IsActive(config.HFEchidna, index) {
		return fmt.Errorf("%s is not active at block %d", config.HFEchidna, index)
	}
	return nil
}

// RunTest implements the harness.Case interface.
func (c *MaxTraceableBlocks) RunTest(ctx context.Context) error {
	if err := c.readOriginal(-MaxTraceableBlocksDecrement); err != nil {
		return err
	}
	if err := c.checkAccess(ctx); err != nil {
		return err
	}
	if err := c.update(ctx, c.updated, harness.Void); err != nil {
		return fmt.Errorf("committee update: %w", err)
	}
	if err := c.update(ctx, c.updated+1, harness.Fails(cantIncreaseMsg)); err != nil {
		return fmt.Errorf("increase to %d: %w", c.updated+1, err)
	}

	vubIncrement, err := policy.NewReader(c.Invoker()).GetMaxValidUntilBlockIncrement()
	if err != nil {
		return fmt.Errorf("failed to get MaxValidUntilBlockIncrement: %w", err)
	}
	c.Log.Info("MaxValidUntilBlockIncrement", zap.Int64("value", vubIncrement))
	if err := c.update(ctx, vubIncrement-1, harness.Fails(notLargerThanVUBIncrMsg)); err != nil {
		return fmt.Errorf("update to %d: %w", vubIncrement-1, err)
	}
	return c.expect(c.updated)
}

// PostTest implements the harness.Case interface, it does nothing.
func (c *MaxTraceableBlocks) PostTest(context.Context) error {
	return nil
}
