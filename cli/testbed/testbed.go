package testbed

import (
	"fmt"
	"text/tabwriter"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/neo-testbed/cli/options"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/urfave/cli"
)

// NewCommands returns 'testbed' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "testbed",
		Usage: "inspect and create testbed files",
		Subcommands: []cli.Command{
			{
				Name:      "show",
				Usage:     "print testbed in canonical form",
				UsageText: "neo-testbed testbed show [--testbed <file>] [--yaml]",
				Action:    show,
				Flags: []cli.Flag{
					options.Testbed,
					cli.BoolFlag{Name: "yaml", Usage: "print YAML instead of JSON"},
				},
			},
			{
				Name:      "check",
				Usage:     "validate testbed and print accounts",
				UsageText: "neo-testbed testbed check [--testbed <file>]",
				Action:    check,
				Flags:     []cli.Flag{options.Testbed},
			},
			{
				Name:      "generate",
				Usage:     "create testbed with new random keys",
				UsageText: "neo-testbed testbed generate --out <file> [--validators N] [--others N] [-r <endpoint>] [--network <magic>]",
				Action:    generate,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "out, o", Usage: "output file (.json, .yml or .yaml)"},
					cli.IntFlag{Name: "validators", Value: 4, Usage: "number of validator accounts"},
					cli.IntFlag{Name: "others", Value: 2, Usage: "number of other accounts"},
					cli.StringFlag{Name: options.RPCEndpointFlag + ", r", Value: config.DefaultRPCEndpoint, Usage: "RPC node address"},
					cli.UintFlag{Name: "network", Value: uint(config.DefaultNetwork), Usage: "network magic"},
				},
			},
		},
	}}
}

func show(ctx *cli.Context) error {
	env, exitErr := options.GetTestbed(ctx)
	if exitErr != nil {
		return exitErr
	}
	data, err := env.Encode(ctx.Bool("yaml"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	_, _ = ctx.App.Writer.Write(data)
	return nil
}

func check(ctx *cli.Context) error {
	env, exitErr := options.GetTestbed(ctx)
	if exitErr != nil {
		return exitErr
	}
	h := harness.New(env, nil, nil)
	bft, err := h.BFTAddress()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	committee, err := h.CommitteeAddress()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RPC endpoint:\t%s\n", env.RPCEndpoint)
	fmt.Fprintf(w, "Network:\t%d\n", uint32(env.Network))
	for _, name := range config.HardforkNames() {
		height, _ := env.Hardforks.Height(name)
		fmt.Fprintf(w, "%s:\t%d\n", name, height)
	}
	fmt.Fprintf(w, "BFT account:\t%s\n", address.Uint160ToString(bft))
	fmt.Fprintf(w, "Committee account:\t%s\n", address.Uint160ToString(committee))
	for i, acc := range env.Validators {
		fmt.Fprintf(w, "Validator #%d:\t%s\t%s\n", i, acc.Address, acc.PrivateKey().PublicKey().StringCompressed())
	}
	for i, acc := range env.Others {
		fmt.Fprintf(w, "Other #%d:\t%s\t%s\n", i, acc.Address, acc.PrivateKey().PublicKey().StringCompressed())
	}
	return w.Flush()
}

func generate(ctx *cli.Context) error {
	out := ctx.String("out")
	if out == "" {
		return cli.NewExitError("output file is missing", 1)
	}
	var (
		nValidators = ctx.Int("validators")
		nOthers     = ctx.Int("others")
	)
	if nValidators < 1 {
		return cli.NewExitError("at least one validator is required", 1)
	}
	if nOthers < 0 {
		return cli.NewExitError("negative number of other accounts", 1)
	}
	validators, err := newAccounts(nValidators)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	others, err := newAccounts(nOthers)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	env := &config.Env{
		RPCEndpoint: ctx.String(options.RPCEndpointFlag),
		Network:     netmode.Magic(ctx.Uint("network")),
		Hardforks:   config.DefaultHardfork(),
		Validators:  validators,
		Others:      others,
	}
	if err := env.WriteFile(out); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Testbed written to %s\n", out)
	return nil
}

func newAccounts(n int) ([]*wallet.Account, error) {
	var accs = make([]*wallet.Account, 0, n)
	for range n {
		p, err := keys.NewPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
		accs = append(accs, wallet.NewAccountFromPrivateKey(p))
	}
	return accs, nil
}
