package harness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Case is a single integration test. Cases usually embed *Testing, so they
// only need to implement RunTest.
type Case interface {
	Name() string
	Harness() *Testing
	PreTest(ctx context.Context) error
	RunTest(ctx context.Context) error
	PostTest(ctx context.Context) error
}

// StartIndex is the block index to wait for before starting any case.
const StartIndex = 1

// Run waits for the network to produce blocks after StartIndex and runs the
// case. PostTest is always called once PreTest succeeds, its error is joined
// with the RunTest one.
func Run(ctx context.Context, c Case) error {
	var (
		name = c.Name()
		t    = c.Harness()
	)
	index, err := t.WaitNextBlock(ctx, StartIndex, "starting "+name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	t.Log.Info("current block index", zap.Uint32("index", index))

	if err := c.PreTest(ctx); err != nil {
		return fmt.Errorf("%s: pre-test: %w", name, err)
	}
	err = c.RunTest(ctx)
	if err != nil {
		err = fmt.Errorf("%s: %w", name, err)
	}
	if pErr := c.PostTest(ctx); pErr != nil {
		err = errors.Join(err, fmt.Errorf("%s: post-test: %w", name, pErr))
	}
	if err != nil {
		return err
	}
	t.Log.Info("test passed")
	return nil
}
