/*
Package testcases lists all cases that can be run against a testbed. Cases
are run by name, Initial is expected to be the first one for a fresh network.
*/
package testcases

import (
	"fmt"
	"slices"

	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/basics"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/fee"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/policy"
)

// Constructor creates a case with the given harness.
type Constructor func(t *harness.Testing) harness.Case

var registry = map[string]Constructor{
	"Initial":                func(t *harness.Testing) harness.Case { return NewInitial(t) },
	"BasicsInitial":          func(t *harness.Testing) harness.Case { return basics.NewBasicsInitial(t) },
	"NeoRPCTransferMultisig": func(t *harness.Testing) harness.Case { return basics.NewNeoRPCTransferMultisig(t) },
	"GasRPCTransferMultisig": func(t *harness.Testing) harness.Case { return basics.NewGasRPCTransferMultisig(t) },
	"NeoRPCTransfer":         func(t *harness.Testing) harness.Case { return basics.NewNeoRPCTransfer(t) },
	"GasRPCTransfer":         func(t *harness.Testing) harness.Case { return basics.NewGasRPCTransfer(t) },
	"ExecFeeFactor":          func(t *harness.Testing) harness.Case { return policy.NewExecFeeFactor(t) },
	"FeePerByte":             func(t *harness.Testing) harness.Case { return policy.NewFeePerByte(t) },
	"MaxTraceableBlocks":     func(t *harness.Testing) harness.Case { return policy.NewMaxTraceableBlocks(t) },
	"SystemFeeConsumed":      func(t *harness.Testing) harness.Case { return fee.NewSystemFeeConsumed(t) },
	"SystemFeeExecFactor":    func(t *harness.Testing) harness.Case { return fee.NewSystemFeeExecFactor(t) },
	"NetworkFeeSizeFee":      func(t *harness.Testing) harness.Case { return fee.NewNetworkFeeSizeFee(t) },
}

// Names returns sorted names of all known cases.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the case with the given name.
func New(name string, t *harness.Testing) (harness.Case, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown test case %q", name)
	}
	return c(t), nil
}
