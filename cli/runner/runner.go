package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/nspcc-dev/neo-testbed/cli/options"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns 'run' and 'list' commands.
func NewCommands() []cli.Command {
	runFlags := []cli.Flag{
		options.Testbed,
		options.Debug,
		options.LogPath,
		options.Quiet,
		cli.DurationFlag{
			Name:  "poll-interval",
			Value: harness.DefaultPollInterval,
			Usage: "block height polling interval",
		},
		cli.DurationFlag{
			Name:  "max-wait",
			Value: harness.DefaultMaxWait,
			Usage: "maximum time to wait for the next block",
		},
		cli.BoolFlag{
			Name:  "keep-going, k",
			Usage: "run remaining cases after a failure",
		},
	}
	runFlags = append(runFlags, options.RPC...)
	return []cli.Command{
		{
			Name:      "run",
			Usage:     "run test cases against the testbed network",
			UsageText: "neo-testbed run [--testbed <file>] [-r <endpoint>] [-s <timeout>] [-d] [-q] [--log-path <file>] CASE...",
			Description: `Runs the given cases one by one in the order specified. Initial case
   should be run first on a fresh network to fund accounts used by other cases.
   Use 'list' command to get available case names.`,
			Action: run,
			Flags:  runFlags,
		},
		{
			Name:   "list",
			Usage:  "list available test cases",
			Action: list,
		},
	}
}

func list(ctx *cli.Context) error {
	for _, name := range testcases.Names() {
		fmt.Fprintln(ctx.App.Writer, name)
	}
	return nil
}

func run(ctx *cli.Context) error {
	names := ctx.Args()
	if len(names) == 0 {
		return cli.NewExitError("no test cases given, see 'list' command", 1)
	}
	known := testcases.Names()
	for _, name := range names {
		if !slices.Contains(known, name) {
			return cli.NewExitError(fmt.Errorf("unknown test case %q", name), 1)
		}
	}

	env, exitErr := options.GetTestbed(ctx)
	if exitErr != nil {
		return exitErr
	}
	var filter options.FilterFunc
	if ctx.Bool("quiet") {
		filter = options.QuietFilter
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), ctx.String("log-path"), filter)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	grace, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, exitErr := options.GetRPCClient(grace, ctx, env)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	h := harness.New(env, c, log)
	h.PollInterval = ctx.Duration("poll-interval")
	h.MaxWait = ctx.Duration("max-wait")

	var (
		failed []error
		start  = time.Now()
	)
	for _, name := range names {
		tc, _ := testcases.New(name, h)
		log.Info("running test case", zap.String("case", name))
		err := harness.Run(grace, tc)
		if err != nil {
			log.Error("test case failed", zap.String("case", name), zap.Error(err))
			failed = append(failed, err)
			if !ctx.Bool("keep-going") || grace.Err() != nil {
				break
			}
			continue
		}
		log.Info("test case passed", zap.String("case", name))
	}
	log.Info("done", zap.Int("failed", len(failed)), zap.Duration("elapsed", time.Since(start)))
	if len(failed) != 0 {
		return cli.NewExitError(errors.Join(failed...), 1)
	}
	return nil
}
