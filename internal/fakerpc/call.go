package fakerpc

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm"
	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
)

var contractCallID = interopnames.ToID([]byte(interopnames.SystemContractCall))

// Call is a contract call decoded from a transaction script.
type Call struct {
	// Signer is the first signer of the transaction.
	Signer   util.Uint160
	Contract util.Uint160
	Method   string
	// Args are *big.Int, []byte, bool or nil values.
	Args []any
}

// IntArg returns i-th argument as int64.
func (c Call) IntArg(i int) (int64, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("%s: no argument #%d", c.Method, i)
	}
	n, ok := c.Args[i].(*big.Int)
	if !ok || !n.IsInt64() {
		return 0, fmt.Errorf("%s: argument #%d is not an integer", c.Method, i)
	}
	return n.Int64(), nil
}

// ParseCall decodes script made by emit.AppCall with simple arguments.
func ParseCall(script []byte) (Call, error) {
	var (
		ctx   = vm.NewContext(script)
		stack []any
	)
	pop := func() (any, error) {
		if len(stack) == 0 {
			return nil, errors.New("stack is empty")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	for ctx.NextIP() < len(script) {
		op, param, err := ctx.Next()
		if err != nil {
			return Call{}, err
		}
		switch {
		case op == opcode.PUSHM1 || (op >= opcode.PUSH0 && op <= opcode.PUSH16):
			stack = append(stack, big.NewInt(int64(op)-int64(opcode.PUSH0)))
		case op <= opcode.PUSHINT256:
			stack = append(stack, bigint.FromBytes(param))
		case op == opcode.PUSHDATA1 || op == opcode.PUSHDATA2 || op == opcode.PUSHDATA4:
			stack = append(stack, param)
		case op == opcode.PUSHT || op == opcode.PUSHF:
			stack = append(stack, op == opcode.PUSHT)
		case op == opcode.PUSHNULL:
			stack = append(stack, nil)
		case op == opcode.NEWARRAY0:
			stack = append(stack, []any{})
		case op == opcode.PACK:
			v, err := pop()
			if err != nil {
				return Call{}, err
			}
			n, ok := v.(*big.Int)
			if !ok || !n.IsInt64() || n.Int64() < 0 || n.Int64() > int64(len(stack)) {
				return Call{}, fmt.Errorf("bad PACK count %v", v)
			}
			arr := make([]any, n.Int64())
			for i := range arr {
				arr[i], _ = pop()
			}
			stack = append(stack, arr)
		case op == opcode.SYSCALL:
			return finishCall(param, stack)
		default:
			return Call{}, fmt.Errorf("unsupported instruction %s", op)
		}
	}
	return Call{}, errors.New("no contract call")
}

func finishCall(param []byte, stack []any) (Call, error) {
	r := io.NewBinReaderFromBuf(param)
	if id := r.ReadU32LE(); r.Err != nil || id != contractCallID {
		return Call{}, errors.New("not a contract call")
	}
	if len(stack) != 4 {
		return Call{}, fmt.Errorf("unexpected stack size %d", len(stack))
	}
	hash, ok := stack[3].([]byte)
	if !ok {
		return Call{}, errors.New("contract hash is missing")
	}
	contract, err := util.Uint160DecodeBytesBE(hash)
	if err != nil {
		return Call{}, err
	}
	method, ok := stack[2].([]byte)
	if !ok {
		return Call{}, errors.New("method is missing")
	}
	args, ok := stack[0].([]any)
	if !ok {
		return Call{}, errors.New("arguments are missing")
	}
	return Call{Contract: contract, Method: string(method), Args: args}, nil
}
