package policy

import (
	"context"

	"github.com/nspcc-dev/neo-testbed/pkg/harness"
)

const (
	// MinFeePerByte is the minimal allowed fee per transaction byte.
	MinFeePerByte = 0
	// MaxFeePerByte is the maximal allowed fee per transaction byte (1 GAS).
	MaxFeePerByte = 1_00000000
	// FeePerByteIncrement is added to the current value to get the updated
	// one.
	FeePerByteIncrement = 500
)

var feePerByte = setting{name: "FeePerByte", min: MinFeePerByte, max: MaxFeePerByte}

// FeePerByte checks getFeePerByte/setFeePerByte Policy methods the same way
// ExecFeeFactor does it for the exec fee factor.
type FeePerByte struct {
	settingCase
}

// NewFeePerByte creates FeePerByte case.
func NewFeePerByte(t *harness.Testing) *FeePerByte {
	return &FeePerByte{newSettingCase(t, feePerByte)}
}

// RunTest implements the harness.Case interface.
func (c *FeePerByte) RunTest(ctx context.Context) error {
	return c.checkUpdate(ctx, FeePerByteIncrement)
}

// SetFeePerByte changes the fee per byte on behalf of the committee and
// checks the new value to be persisted.
func SetFeePerByte(ctx context.Context, t *harness.Testing, v int64) error {
	c := settingCase{Testing: t, setting: feePerByte}
	return c.update(ctx, v, harness.Void)
}
