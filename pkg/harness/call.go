package harness

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Expected is the expected result of a contract call. Empty Exception means
// HALT with Stack, otherwise the call must FAULT with an exception
// containing Exception.
type Expected struct {
	Stack     []stackitem.Item
	Exception string
}

// Void is the result of a successful call to a method returning nothing.
var Void = Expected{Stack: []stackitem.Item{stackitem.Null{}}}

// Fails returns Expected FAULT with the given exception.
func Fails(exception string) Expected {
	return Expected{Exception: exception}
}

// CallAs sends a transaction calling the contract method on behalf of the
// account, waits for it to be persisted and checks its execution against
// exp. The execution is returned for further checks.
func (t *Testing) CallAs(ctx context.Context, acc *wallet.Account, exp Expected, contract util.Uint160, method string, args ...any) (*state.Execution, error) {
	script, err := CallScript(contract, method, callflag.States, args...)
	if err != nil {
		return nil, err
	}
	vub, err := t.ValidUntilBlock()
	if err != nil {
		return nil, err
	}
	tx := t.MakeTx(acc, script, t.DefaultSysFee, t.DefaultNetFee, vub)
	return t.sendCall(ctx, tx, exp, fmt.Sprintf("%s call by %s", method, acc.Address))
}

// CommitteeCall is CallAs with the committee multisignature account.
func (t *Testing) CommitteeCall(ctx context.Context, exp Expected, contract util.Uint160, method string, args ...any) (*state.Execution, error) {
	script, err := CallScript(contract, method, callflag.States, args...)
	if err != nil {
		return nil, err
	}
	vub, err := t.ValidUntilBlock()
	if err != nil {
		return nil, err
	}
	tx, err := t.MakeMultisigTx(script, t.DefaultSysFee, t.DefaultNetFee, vub, true)
	if err != nil {
		return nil, err
	}
	return t.sendCall(ctx, tx, exp, fmt.Sprintf("committee %s%v", method, args))
}

func (t *Testing) sendCall(ctx context.Context, tx *transaction.Transaction, exp Expected, while string) (*state.Execution, error) {
	log, err := t.SendAndWait(ctx, tx, while)
	if err != nil {
		return nil, err
	}
	exec, err := CheckApplicationLog(log, tx.Hash())
	if err != nil {
		return nil, err
	}
	if err := CheckExecutionResult(exec, exp.Stack, exp.Exception); err != nil {
		return nil, err
	}
	return exec, nil
}

// NetworkFee asks the node for the network fee of the transaction.
func (t *Testing) NetworkFee(tx *transaction.Transaction) (int64, error) {
	fee, err := t.Client.CalculateNetworkFee(tx)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate network fee: %w", err)
	}
	t.Log.Info("network fee",
		zap.Int("size", tx.Size()),
		zap.Int64("fee", fee))
	return fee, nil
}
