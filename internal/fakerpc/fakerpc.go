/*
Package fakerpc implements an in-memory node answering the RPC calls used by
test cases. Transactions are "executed" by a callback
provided by the test, Emulator returns one that knows Policy setters and
simple scripts.
*/
package fakerpc

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

// ExecFunc executes the transaction accepted by the node.
type ExecFunc func(tx *transaction.Transaction) state.Execution

// Node is a fake RPC node. Every GetBlockCount call adds Step blocks to the
// chain.
type Node struct {
	Network                     netmode.Magic
	Step                        uint32
	ExecFeeFactor               int64
	FeePerByte                  int64
	MaxTraceableBlocks          uint32
	MaxValidUntilBlockIncrement uint32
	MillisecondsPerBlock        int

	// Execute is called for every sent transaction. Default one halts with
	// an empty stack.
	Execute ExecFunc
	// SendErr is returned from SendRawTransaction when set.
	SendErr error
	// VersionErr is returned from GetVersion when set.
	VersionErr error

	mtx      sync.Mutex
	count    uint32
	balances map[util.Uint160]map[util.Uint160]*big.Int
	logs     map[util.Uint256]*result.ApplicationLog
	mempool  []util.Uint256
	sent     []*transaction.Transaction
	calls    []Call
}

// New creates a node for the given network with two blocks and default
// policy values.
func New(network netmode.Magic) *Node {
	return &Node{
		Network:                     network,
		Step:                        1,
		ExecFeeFactor:               30,
		FeePerByte:                  1000,
		MaxTraceableBlocks:          MaxMaxTraceableBlocks,
		MaxValidUntilBlockIncrement: 5760,
		MillisecondsPerBlock:        15000,
		count:                       2,
		balances:                    make(map[util.Uint160]map[util.Uint160]*big.Int),
		logs:                        make(map[util.Uint256]*result.ApplicationLog),
	}
}

// Halt returns successful Application execution.
func Halt(gas int64, stack []stackitem.Item, events ...state.NotificationEvent) state.Execution {
	if stack == nil {
		stack = []stackitem.Item{}
	}
	return state.Execution{
		Trigger:     trigger.Application,
		VMState:     vmstate.Halt,
		GasConsumed: gas,
		Stack:       stack,
		Events:      events,
	}
}

// Fault returns failed Application execution.
func Fault(gas int64, exception string) state.Execution {
	return state.Execution{
		Trigger:        trigger.Application,
		VMState:        vmstate.Fault,
		GasConsumed:    gas,
		Stack:          []stackitem.Item{},
		FaultException: exception,
	}
}

// Transfer returns NEP-17 Transfer notification, nil accounts become Null.
func Transfer(token util.Uint160, from, to *util.Uint160, amount int64) state.NotificationEvent {
	account := func(u *util.Uint160) stackitem.Item {
		if u == nil {
			return stackitem.Null{}
		}
		return stackitem.NewByteArray(u.BytesBE())
	}
	return state.NotificationEvent{
		ScriptHash: token,
		Name:       "Transfer",
		Item: stackitem.NewArray([]stackitem.Item{
			account(from),
			account(to),
			stackitem.NewBigInteger(big.NewInt(amount)),
		}),
	}
}

// SetBalance sets token balance of the account.
func (n *Node) SetBalance(token, account util.Uint160, amount *big.Int) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.balances[token] == nil {
		n.balances[token] = make(map[util.Uint160]*big.Int)
	}
	n.balances[token][account] = new(big.Int).Set(amount)
}

// AddBalance adds delta (which can be negative) to the token balance.
func (n *Node) AddBalance(token, account util.Uint160, delta int64) {
	b := n.Balance(token, account)
	n.SetBalance(token, account, b.Add(b, big.NewInt(delta)))
}

// Balance returns token balance of the account.
func (n *Node) Balance(token, account util.Uint160) *big.Int {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if b, ok := n.balances[token][account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Sent returns all transactions accepted by the node.
func (n *Node) Sent() []*transaction.Transaction {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]*transaction.Transaction(nil), n.sent...)
}

// SetBlockCount sets the current block count.
func (n *Node) SetBlockCount(count uint32) {
	n.mtx.Lock()
	n.count = count
	n.mtx.Unlock()
}

// Calls returns contract calls of all accepted transactions, scripts that
// are not a single contract call are skipped.
func (n *Node) Calls() []Call {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]Call(nil), n.calls...)
}

// GetVersion implements the RPC client interface.
func (n *Node) GetVersion() (*result.Version, error) {
	if n.VersionErr != nil {
		return nil, n.VersionErr
	}
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return &result.Version{
		UserAgent: "/fakerpc/",
		Protocol: result.Protocol{
			Network:                     n.Network,
			MillisecondsPerBlock:        n.MillisecondsPerBlock,
			MaxTraceableBlocks:          n.MaxTraceableBlocks,
			MaxValidUntilBlockIncrement: n.MaxValidUntilBlockIncrement,
		},
	}, nil
}

// CalculateNetworkFee implements the RPC client interface. Every signer is
// treated as a simple signature account.
func (n *Node) CalculateNetworkFee(tx *transaction.Transaction) (int64, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return int64(tx.Size())*n.FeePerByte + int64(len(tx.Signers))*CheckSigPrice*n.ExecFeeFactor, nil
}

// GetBlockCount implements the RPC client interface.
func (n *Node) GetBlockCount() (uint32, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	count := n.count
	n.count += n.Step
	if n.Step != 0 {
		n.mempool = n.mempool[:0]
	}
	return count, nil
}

// GetRawMemPool implements the RPC client interface.
func (n *Node) GetRawMemPool() ([]util.Uint256, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]util.Uint256(nil), n.mempool...), nil
}

// SendRawTransaction implements the RPC client interface.
func (n *Node) SendRawTransaction(tx *transaction.Transaction) (util.Uint256, error) {
	if n.SendErr != nil {
		return util.Uint256{}, n.SendErr
	}
	exec := Halt(0, nil)
	if n.Execute != nil {
		exec = n.Execute(tx)
	}
	h := tx.Hash()

	n.mtx.Lock()
	defer n.mtx.Unlock()
	if _, ok := n.logs[h]; ok {
		return util.Uint256{}, errors.New("already exists")
	}
	n.sent = append(n.sent, tx)
	if c, err := ParseCall(tx.Script); err == nil {
		if len(tx.Signers) != 0 {
			c.Signer = tx.Signers[0].Account
		}
		n.calls = append(n.calls, c)
	}
	n.mempool = append(n.mempool, h)
	n.logs[h] = &result.ApplicationLog{
		Container:  h,
		Executions: []state.Execution{exec},
	}
	return h, nil
}

// GetApplicationLog implements the RPC client interface.
func (n *Node) GetApplicationLog(h util.Uint256, _ *trigger.Type) (*result.ApplicationLog, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	log, ok := n.logs[h]
	if !ok {
		return nil, fmt.Errorf("unknown transaction %s", h.StringLE())
	}
	return log, nil
}

// InvokeFunction implements the RPC client interface. It knows balanceOf of
// any contract and policy getters, calls to other methods halt with an empty
// stack since nothing is persisted anyway.
func (n *Node) InvokeFunction(contract util.Uint160, operation string, params []smartcontract.Parameter, _ []transaction.Signer) (*result.Invoke, error) {
	var item stackitem.Item
	switch operation {
	case "balanceOf":
		if len(params) != 1 {
			return fault("invalid params count"), nil
		}
		acc, ok := params[0].Value.(util.Uint160)
		if !ok {
			return fault("invalid account"), nil
		}
		item = stackitem.NewBigInteger(n.Balance(contract, acc))
	case "getExecFeeFactor":
		n.mtx.Lock()
		item = stackitem.Make(n.ExecFeeFactor)
		n.mtx.Unlock()
	case "getFeePerByte":
		n.mtx.Lock()
		item = stackitem.Make(n.FeePerByte)
		n.mtx.Unlock()
	case "getMaxTraceableBlocks":
		n.mtx.Lock()
		item = stackitem.Make(n.MaxTraceableBlocks)
		n.mtx.Unlock()
	case "getMaxValidUntilBlockIncrement":
		n.mtx.Lock()
		item = stackitem.Make(n.MaxValidUntilBlockIncrement)
		n.mtx.Unlock()
	case "getMillisecondsPerBlock":
		n.mtx.Lock()
		item = stackitem.Make(n.MillisecondsPerBlock)
		n.mtx.Unlock()
	default:
		return &result.Invoke{State: vmstate.Halt.String(), Stack: []stackitem.Item{}}, nil
	}
	return &result.Invoke{State: vmstate.Halt.String(), Stack: []stackitem.Item{item}}, nil
}

// SetExecFeeFactor changes the value returned by getExecFeeFactor.
func (n *Node) SetExecFeeFactor(v int64) {
	n.mtx.Lock()
	n.ExecFeeFactor = v
	n.mtx.Unlock()
}

// InvokeScript implements the RPC client interface.
func (n *Node) InvokeScript(script []byte, _ []transaction.Signer) (*result.Invoke, error) {
	return &result.Invoke{State: vmstate.Halt.String(), Script: script, Stack: []stackitem.Item{}}, nil
}

// InvokeContractVerify implements the RPC client interface.
func (n *Node) InvokeContractVerify(util.Uint160, []smartcontract.Parameter, []transaction.Signer, ...transaction.Witness) (*result.Invoke, error) {
	return &result.Invoke{State: vmstate.Halt.String(), Stack: []stackitem.Item{stackitem.NewBool(true)}}, nil
}

// TerminateSession implements the RPC client interface. Sessions are never
// opened, so there is nothing to terminate.
func (n *Node) TerminateSession(uuid.UUID) (bool, error) {
	return false, nil
}

// TraverseIterator implements the RPC client interface.
func (n *Node) TraverseIterator(id, _ uuid.UUID, _ int) ([]stackitem.Item, error) {
	return nil, fmt.Errorf("unknown session %s", id)
}

func fault(exception string) *result.Invoke {
	return &result.Invoke{State: vmstate.Fault.String(), FaultException: exception, Stack: []stackitem.Item{}}
}
