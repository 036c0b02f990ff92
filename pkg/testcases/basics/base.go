/*
Package basics contains NEO and GAS transfer cases. Multisignature ones
initialize others[0] account balances from the BFT account, NeoRPCTransfer
and GasRPCTransfer need them to be run first.
*/
package basics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/neo"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"go.uber.org/zap"
)

// BasicsTesting is the common base of transfer cases.
type BasicsTesting struct {
	*harness.Testing
}

// transferParams describes a transfer. Nil sender means the transaction is
// signed by validators on behalf of the BFT account.
type transferParams struct {
	token  util.Uint160
	from   util.Uint160
	to     util.Uint160
	amount int64
	sender *wallet.Account
}

type transferResult struct {
	txid       util.Uint256
	log        *result.ApplicationLog
	exec       *state.Execution
	fromBefore *big.Int
	toBefore   *big.Int
	fromAfter  *big.Int
	toAfter    *big.Int
}

func (b *BasicsTesting) balance(token, acc util.Uint160) (*big.Int, error) {
	if token.Equals(neo.Hash) {
		return b.NEOBalance(acc)
	}
	return b.GASBalance(acc)
}

func tokenName(token util.Uint160) string {
	if token.Equals(neo.Hash) {
		return "NEO"
	}
	return "GAS"
}

// transfer sends transfer(from, to, amount, null) transaction with default
// fees, waits for it to be accepted and returns balances before and after
// along with the application log.
func (b *BasicsTesting) transfer(ctx context.Context, p transferParams) (*transferResult, error) {
	var (
		res  = new(transferResult)
		name = tokenName(p.token)
		err  error
	)
	script, err := harness.TransferScript(p.token, p.from, p.to, big.NewInt(p.amount))
	if err != nil {
		return nil, err
	}

	if res.fromBefore, err = b.balance(p.token, p.from); err != nil {
		return nil, err
	}
	if res.toBefore, err = b.balance(p.token, p.to); err != nil {
		return nil, err
	}
	b.Log.Info("balances before transfer",
		zap.String("token", name),
		zap.String("from", p.from.StringLE()),
		zap.Stringer("from balance", res.fromBefore),
		zap.String("to", p.to.StringLE()),
		zap.Stringer("to balance", res.toBefore))

	vub, err := b.ValidUntilBlock()
	if err != nil {
		return nil, err
	}
	tx, err := b.makeTx(p.sender, script, vub)
	if err != nil {
		return nil, err
	}
	res.txid = tx.Hash()
	res.log, err = b.SendAndWait(ctx, tx, name+" transfer")
	if err != nil {
		return nil, err
	}

	if res.fromAfter, err = b.balance(p.token, p.from); err != nil {
		return nil, err
	}
	if res.toAfter, err = b.balance(p.token, p.to); err != nil {
		return nil, err
	}
	b.Log.Info("balances after transfer",
		zap.String("token", name),
		zap.Stringer("from balance", res.fromAfter),
		zap.Stringer("from difference", new(big.Int).Sub(res.fromAfter, res.fromBefore)),
		zap.Stringer("to balance", res.toAfter))

	res.exec, err = harness.CheckApplicationLog(res.log, res.txid)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (b *BasicsTesting) makeTx(sender *wallet.Account, script []byte, vub uint32) (*transaction.Transaction, error) {
	if sender != nil {
		return b.MakeTx(sender, script, b.DefaultSysFee, b.DefaultNetFee, vub), nil
	}
	return b.MakeMultisigTx(script, b.DefaultSysFee, b.DefaultNetFee, vub, false)
}

// checkBalance compares actual balance with before+delta.
func checkBalance(what string, actual, before *big.Int, delta int64) error {
	expected := new(big.Int).Add(before, big.NewInt(delta))
	if actual.Cmp(expected) != 0 {
		return fmt.Errorf("%s balance: expected %s, got %s", what, expected, actual)
	}
	return nil
}

// CheckNEOTransferApplicationLog checks the execution of successful NEO
// transfer. It has 3 notifications: NEO transfer itself and GAS bonus
// mints for both accounts.
func CheckNEOTransferApplicationLog(log *result.ApplicationLog, txid util.Uint256, from, to util.Uint160, amount int64) error {
	exec, err := harness.CheckApplicationLog(log, txid)
	if err != nil {
		return err
	}
	err = harness.CheckExecutionResult(exec, []stackitem.Item{stackitem.NewBool(true)}, "")
	if err != nil {
		return err
	}
	if len(exec.Events) != 3 {
		return fmt.Errorf("expected 3 notifications, got %d", len(exec.Events))
	}
	if err := harness.CheckNEP17Transfer(exec.Events[0], neo.Hash, &from, &to, big.NewInt(amount)); err != nil {
		return fmt.Errorf("NEO transfer: %w", err)
	}
	// TODO: check bonus amounts once GAS generation parameters are part of the testbed.
	if err := harness.CheckNEP17Transfer(exec.Events[1], gas.Hash, nil, &from, nil); err != nil {
		return fmt.Errorf("GAS bonus for sender: %w", err)
	}
	if err := harness.CheckNEP17Transfer(exec.Events[2], gas.Hash, nil, &to, nil); err != nil {
		return fmt.Errorf("GAS bonus for receiver: %w", err)
	}
	return nil
}

// CheckGASTransferApplicationLog checks the execution of successful GAS
// transfer with the only Transfer notification.
func CheckGASTransferApplicationLog(exec *state.Execution, from, to util.Uint160, amount int64) error {
	err := harness.CheckExecutionResult(exec, []stackitem.Item{stackitem.NewBool(true)}, "")
	if err != nil {
		return err
	}
	if len(exec.Events) != 1 {
		return fmt.Errorf("expected 1 notification, got %d", len(exec.Events))
	}
	return harness.CheckNEP17Transfer(exec.Events[0], gas.Hash, &from, &to, big.NewInt(amount))
}
