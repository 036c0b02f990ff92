package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"go.uber.org/zap"
)

const committeeSignatureMsg = "Invalid committee signature"

// setting is an integer Policy value with get<name>/set<name> methods and
// the range accepted by the setter.
type setting struct {
	name     string
	min, max int64
}

func (s setting) getter() string { return "get" + s.name }
func (s setting) setter() string { return "set" + s.name }

func (s setting) rangeMsg() string {
	return fmt.Sprintf("%s must be between [%d, %d]", s.name, s.min, s.max)
}

// settingCase is the base of cases changing a Policy setting. original is
// read by readOriginal, updated is the value the case sets.
type settingCase struct {
	*harness.Testing
	setting

	original int64
	updated  int64
	read     bool
}

func newSettingCase(t *harness.Testing, s setting) settingCase {
	return settingCase{Testing: t.Named(s.name), setting: s}
}

func (c *settingCase) get() (int64, error) {
	v, err := unwrap.Int64(c.Invoker().Call(policy.Hash, c.getter()))
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", c.getter(), err)
	}
	return v, nil
}

func (c *settingCase) expect(v int64) error {
	actual, err := c.get()
	if err != nil {
		return err
	}
	if actual != v {
		return fmt.Errorf("%s: expected %d, got %d", c.name, v, actual)
	}
	return nil
}

func (c *settingCase) readOriginal(delta int64) error {
	var err error
	c.original, err = c.get()
	if err != nil {
		return err
	}
	c.read = true
	c.updated = c.original + delta
	c.Log.Info(c.name, zap.Int64("original", c.original), zap.Int64("updated", c.updated))
	return nil
}

// checkAccess runs the checks every setter must pass: test invocations and
// transactions from other accounts don't change the value, the committee
// can't set anything out of range.
func (c *settingCase) checkAccess(ctx context.Context) error {
	if err := c.checkTestInvocation(); err != nil {
		return fmt.Errorf("test invocation: %w", err)
	}
	if err := c.checkNoPermission(ctx); err != nil {
		return fmt.Errorf("non-committee update: %w", err)
	}
	for _, v := range []int64{c.min - 1, c.max + 1} {
		if err := c.update(ctx, v, harness.Fails(c.rangeMsg())); err != nil {
			return fmt.Errorf("out of range update to %d: %w", v, err)
		}
	}
	return nil
}

// checkTestInvocation calls the setter via invokefunction, the result of
// such call is never persisted.
func (c *settingCase) checkTestInvocation() error {
	res, err := c.Invoker().Call(policy.Hash, c.setter(), c.updated)
	if err != nil {
		return err
	}
	c.Log.Info(c.setter()+" invocation", zap.String("state", res.State), zap.String("exception", res.FaultException))
	return c.expect(c.original)
}

func (c *settingCase) checkNoPermission(ctx context.Context) error {
	if len(c.Env.Others) == 0 {
		return errors.New("testbed has no other accounts")
	}
	_, err := c.CallAs(ctx, c.Env.Others[0], harness.Fails(committeeSignatureMsg), policy.Hash, c.setter(), c.updated)
	if err != nil {
		return err
	}
	return c.expect(c.original)
}

// update sends the setter transaction signed by the committee. The value is
// checked to be persisted if exp is a successful result.
func (c *settingCase) update(ctx context.Context, v int64, exp harness.Expected) error {
	if _, err := c.CommitteeCall(ctx, exp, policy.Hash, c.setter(), v); err != nil {
		return err
	}
	if exp.Exception != "" {
		return nil
	}
	return c.expect(v)
}

// checkUpdate is the whole test of a setting that can be freely changed by
// the committee.
func (c *settingCase) checkUpdate(ctx context.Context, delta int64) error {
	if err := c.readOriginal(delta); err != nil {
		return err
	}
	if err := c.checkAccess(ctx); err != nil {
		return err
	}
	if err := c.update(ctx, c.updated, harness.Void); err != nil {
		return fmt.Errorf("committee update: %w", err)
	}
	return nil
}

// PostTest implements the harness.Case interface, it restores the original
// value.
func (c *settingCase) PostTest(ctx context.Context) error {
	if !c.read {
		return nil
	}
	return c.update(ctx, c.original, harness.Void)
}
