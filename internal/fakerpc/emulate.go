package fakerpc

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm"
	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Policy limits and prices used by the emulated Policy contract.
const (
	MaxExecFeeFactor      = 100
	MaxFeePerByte         = 100_000_000
	MaxMaxTraceableBlocks = 2102400

	PolicySetterPrice = 1 << 15
	PushPrice         = 1
	CheckSigPrice     = 1 << 15
)

// Emulator returns ExecFunc that executes Policy setters signed by the
// committee and scripts made of PUSH0-PUSH16 and RET instructions. Errors
// are reported with the messages of the reference node.
func (n *Node) Emulator(committee util.Uint160) ExecFunc {
	return func(tx *transaction.Transaction) state.Execution {
		c, err := ParseCall(tx.Script)
		if err != nil {
			return n.execPlain(tx.Script)
		}
		if !c.Contract.Equals(policy.Hash) {
			return Fault(0, fmt.Sprintf("unknown contract %s", c.Contract.StringLE()))
		}
		return n.execPolicy(c, tx.Signers[0].Account.Equals(committee))
	}
}

func (n *Node) execPlain(script []byte) state.Execution {
	var (
		ctx   = vm.NewContext(script)
		stack []stackitem.Item
		price int64
	)
	for ctx.NextIP() < len(script) {
		op, _, err := ctx.Next()
		if err != nil {
			return Fault(0, err.Error())
		}
		if op == opcode.RET {
			break
		}
		if op < opcode.PUSH0 || op > opcode.PUSH16 {
			return Fault(0, fmt.Sprintf("unsupported instruction %s", op))
		}
		stack = append(stack, stackitem.Make(int(op-opcode.PUSH0)))
		price += PushPrice
	}
	return Halt(price*n.execFeeFactor(), stack)
}

func (n *Node) execPolicy(c Call, byCommittee bool) state.Execution {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	var gas = PolicySetterPrice * n.ExecFeeFactor
	v, err := c.IntArg(0)
	if err != nil {
		return Fault(gas, err.Error())
	}
	var apply func()
	switch c.Method {
	case "setExecFeeFactor":
		if v <= 0 || v > MaxExecFeeFactor {
			return Fault(gas, fmt.Sprintf("ExecFeeFactor must be between [1, %d], got %d", MaxExecFeeFactor, v))
		}
		apply = func() { n.ExecFeeFactor = v }
	case "setFeePerByte":
		if v < 0 || v > MaxFeePerByte {
			return Fault(gas, fmt.Sprintf("FeePerByte must be between [0, %d], got %d", MaxFeePerByte, v))
		}
		apply = func() { n.FeePerByte = v }
	case "setMaxTraceableBlocks":
		if v <= 0 || v > MaxMaxTraceableBlocks {
			return Fault(gas, fmt.Sprintf("MaxTraceableBlocks must be between [1, %d], got %d", MaxMaxTraceableBlocks, v))
		}
		if v > int64(n.MaxTraceableBlocks) {
			return Fault(gas, fmt.Sprintf("MaxTraceableBlocks can not be increased (old %d, new %d)", n.MaxTraceableBlocks, v))
		}
		if v <= int64(n.MaxValidUntilBlockIncrement) {
			return Fault(gas, fmt.Sprintf("MaxTraceableBlocks must be larger than MaxValidUntilBlockIncrement (%d), got %d", n.MaxValidUntilBlockIncrement, v))
		}
		apply = func() { n.MaxTraceableBlocks = uint32(v) }
	default:
		return Fault(gas, fmt.Sprintf("method %s is not supported", c.Method))
	}
	if !byCommittee {
		return Fault(gas, "Invalid committee signature")
	}
	apply()
	return Halt(gas, []stackitem.Item{stackitem.Null{}})
}

func (n *Node) execFeeFactor() int64 {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.ExecFeeFactor
}
