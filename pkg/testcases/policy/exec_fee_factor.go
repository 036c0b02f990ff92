// Package policy contains Policy native contract cases.
package policy

import (
	"context"

	"github.com/nspcc-dev/neo-testbed/pkg/harness"
)

const (
	// MinExecFeeFactor is the minimal allowed execution fee factor.
	MinExecFeeFactor = 1
	// MaxExecFeeFactor is the maximal allowed execution fee factor.
	MaxExecFeeFactor = 100
	// ExecFeeFactorIncrement is added to the current value to get the
	// updated one.
	ExecFeeFactorIncrement = 10
)

var execFeeFactor = setting{name: "ExecFeeFactor", min: MinExecFeeFactor, max: MaxExecFeeFactor}

// ExecFeeFactor checks getExecFeeFactor/setExecFeeFactor Policy methods:
// only committee can change the value, test invocations don't persist
// anything and the value must be in [MinExecFeeFactor, MaxExecFeeFactor]
// range. The original value is restored after the test.
type ExecFeeFactor struct {
	settingCase
}

// NewExecFeeFactor creates ExecFeeFactor case.
func NewExecFeeFactor(t *harness.Testing) *ExecFeeFactor {
	return &ExecFeeFactor{newSettingCase(t, execFeeFactor)}
}

// RunTest implements the harness.Case interface.
func (c *ExecFeeFactor) RunTest(ctx context.Context) error {
	return c.checkUpdate(ctx, ExecFeeFactorIncrement)
}

// SetExecFeeFactor changes the exec fee factor on behalf of the committee
// and checks the new value to be persisted.
func SetExecFeeFactor(ctx context.Context, t *harness.Testing, v int64) error {
	c := settingCase{Testing: t, setting: execFeeFactor}
	return c.update(ctx, v, harness.Void)
}
