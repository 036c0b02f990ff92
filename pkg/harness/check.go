package harness

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

// TransferEventName is the name of NEP-17 transfer notification.
const TransferEventName = "Transfer"

// CheckApplicationLog checks that the log belongs to the transaction and has
// exactly one execution, this execution is returned.
func CheckApplicationLog(log *result.ApplicationLog, txid util.Uint256) (*state.Execution, error) {
	if log == nil {
		return nil, errors.New("no application log")
	}
	if !log.Container.Equals(txid) {
		return nil, fmt.Errorf("application log container %s, expected %s", log.Container.StringLE(), txid.StringLE())
	}
	if len(log.Executions) != 1 {
		return nil, fmt.Errorf("expected 1 execution, got %d", len(log.Executions))
	}
	return &log.Executions[0], nil
}

// CheckExecutionResult checks Application-triggered execution. Empty
// exception means HALT is expected, otherwise the execution must FAULT with
// an exception containing the given string. The resulting stack is compared
// with the expected one via CheckStack.
func CheckExecutionResult(exec *state.Execution, stack []stackitem.Item, exception string) error {
	if exec.Trigger != trigger.Application {
		return fmt.Errorf("trigger %s, expected %s", exec.Trigger, trigger.Application)
	}
	if exception == "" {
		if exec.VMState != vmstate.Halt {
			return fmt.Errorf("VM state %s, expected %s (exception: %q)", exec.VMState, vmstate.Halt, exec.FaultException)
		}
		if exec.FaultException != "" {
			return fmt.Errorf("unexpected exception: %q", exec.FaultException)
		}
	} else {
		if exec.VMState != vmstate.Fault {
			return fmt.Errorf("VM state %s, expected %s", exec.VMState, vmstate.Fault)
		}
		if !strings.Contains(exec.FaultException, exception) {
			return fmt.Errorf("exception %q doesn't contain %q", exec.FaultException, exception)
		}
	}
	return CheckStack(exec.Stack, stack)
}

// CheckStack compares items with the expected ones. Types must match
// exactly, values are compared with Equals for non-null items.
func CheckStack(items []stackitem.Item, expected []stackitem.Item) error {
	if len(items) != len(expected) {
		return fmt.Errorf("expected %d stack items, got %d", len(expected), len(items))
	}
	for i, exp := range expected {
		got := items[i]
		if got.Type() != exp.Type() {
			return fmt.Errorf("stack item #%d: expected %s, got %s", i, exp.Type(), got.Type())
		}
		if exp.Type() == stackitem.AnyT {
			continue
		}
		if !got.Equals(exp) {
			return fmt.Errorf("stack item #%d: expected %v, got %v", i, exp.Value(), got.Value())
		}
	}
	return nil
}

// CheckNEP17Transfer checks NEP-17 Transfer notification. Nil from (to) means
// minting (burning), nil amount is not checked.
func CheckNEP17Transfer(ev state.NotificationEvent, contract util.Uint160, from, to *util.Uint160, amount *big.Int) error {
	if !ev.ScriptHash.Equals(contract) {
		return fmt.Errorf("notification from %s, expected %s", ev.ScriptHash.StringLE(), contract.StringLE())
	}
	if ev.Name != TransferEventName {
		return fmt.Errorf("event %q, expected %q", ev.Name, TransferEventName)
	}
	if ev.Item == nil {
		return errors.New("notification has no state")
	}
	arr, ok := ev.Item.Value().([]stackitem.Item)
	if !ok || len(arr) != 3 {
		return fmt.Errorf("notification state is not a 3-element array: %v", ev.Item.Value())
	}
	if err := checkAccountItem(arr[0], from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := checkAccountItem(arr[1], to); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if arr[2].Type() != stackitem.IntegerT {
		return fmt.Errorf("amount: expected %s, got %s", stackitem.IntegerT, arr[2].Type())
	}
	if amount != nil {
		actual, err := arr[2].TryInteger()
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if actual.Cmp(amount) != 0 {
			return fmt.Errorf("amount: expected %s, got %s", amount, actual)
		}
	}
	return nil
}

func checkAccountItem(item stackitem.Item, expected *util.Uint160) error {
	if expected == nil {
		if item.Type() != stackitem.AnyT {
			return fmt.Errorf("expected %s, got %s", stackitem.AnyT, item.Type())
		}
		return nil
	}
	if item.Type() != stackitem.ByteArrayT {
		return fmt.Errorf("expected %s, got %s", stackitem.ByteArrayT, item.Type())
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	if !bytes.Equal(b, expected.BytesBE()) {
		return fmt.Errorf("expected %s, got %x", expected.StringLE(), b)
	}
	return nil
}
