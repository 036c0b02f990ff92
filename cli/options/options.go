/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the default timeout used for RPC requests.
const DefaultTimeout = 10 * time.Second

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// Testbed is a flag for commands that use testbed file.
var Testbed = cli.StringFlag{
	Name:  "testbed",
	Usage: "path to the testbed file (JSON or YAML), " + config.EnvTestbed + " variable or " + config.DefaultTestbedPath + " is used if not specified",
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides testbed's " + config.KeyRPCEndpoint + ")",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for RPC requests",
	},
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging",
}

// Quiet is a flag for commands that can suppress test case logs.
var Quiet = cli.BoolFlag{
	Name:  "quiet, q",
	Usage: "only log warnings, errors and test case results",
}

// LogPath is a flag for commands that can log to file.
var LogPath = cli.StringFlag{
	Name:  "log-path",
	Usage: "write logs to the file instead of stderr",
}

// GetTestbed loads testbed given by the context flags. RPC endpoint from the
// command line overrides the one from the file.
func GetTestbed(ctx *cli.Context) (*config.Env, cli.ExitCoder) {
	env, err := config.Load(ctx.String(Testbed.Name))
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		env.RPCEndpoint = endpoint
	}
	return env, nil
}

// GetTimeout returns RPC request timeout set by user or the default one.
func GetTimeout(ctx *cli.Context) time.Duration {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return dur
}

// GetRPCClient returns an RPC client for the testbed node. The node must
// serve the testbed network.
func GetRPCClient(gctx context.Context, ctx *cli.Context, env *config.Env) (*rpcclient.Client, cli.ExitCoder) {
	c, err := harness.Dial(gctx, env.RPCEndpoint, GetTimeout(ctx))
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	err = harness.CheckNetwork(c, env.Network)
	if err != nil {
		c.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// HandleLoggingParams creates a console logger with info level (or debug
// one if requested). If logPath is set, the function creates a dir and a file
// for logging. Non-nil filter is applied to every entry.
func HandleLoggingParams(debug bool, logPath string, filter FilterFunc) (*zap.Logger, *zap.AtomicLevel, error) {
	var level = zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, nil, err
		}
		cc.OutputPaths = []string{logPath}
	}

	var opts []zap.Option
	if filter != nil {
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return NewFilteringCore(c, filter)
		}))
	}
	log, err := cc.Build(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, &cc.Level, nil
}
