package fee_test

import (
	"context"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/vm/opcode"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-testbed/internal/fakerpc"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/fee"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testNet netmode.Magic = 1234567890

func newTesting(t *testing.T) (*harness.Testing, *fakerpc.Node) {
	node := fakerpc.New(testNet)
	h := harness.New(fakerpc.NewEnv(testNet, 1, 1), node, zaptest.NewLogger(t))
	h.PollInterval = time.Millisecond
	h.MaxWait = time.Second
	return h, node
}

// emulate makes the node execute simple scripts and Policy setters.
func emulate(t *testing.T, h *harness.Testing, node *fakerpc.Node) {
	committee, err := h.CommitteeAddress()
	require.NoError(t, err)
	node.Execute = node.Emulator(committee)
}

func TestFeeTestingPreTest(t *testing.T) {
	h, node := newTesting(t)
	node.ExecFeeFactor = 20
	node.FeePerByte = 500

	f := &fee.FeeTesting{Testing: h}
	require.NoError(t, f.PreTest(context.Background()))
	require.EqualValues(t, 20, f.ExecFeeFactor)
	require.EqualValues(t, 500, f.FeePerByte)
}

func TestSystemFeeConsumed(t *testing.T) {
	for _, factor := range []int64{1, 30, 100} {
		h, node := newTesting(t)
		node.ExecFeeFactor = factor
		emulate(t, h, node)

		c := fee.NewSystemFeeConsumed(h)
		require.NoError(t, harness.Run(context.Background(), c))
		require.Equal(t, factor, c.ExecFeeFactor)

		sent := node.Sent()
		require.Len(t, sent, 2)
		require.Equal(t, []byte{byte(opcode.RET)}, sent[0].Script)
		require.Equal(t, []byte{byte(opcode.PUSH1)}, sent[1].Script)
	}

	t.Run("wrong price", func(t *testing.T) {
		h, node := newTesting(t)
		node.Execute = func(tx *transaction.Transaction) state.Execution {
			if tx.Script[0] == byte(opcode.PUSH1) {
				return fakerpc.Halt(node.ExecFeeFactor+1, []stackitem.Item{stackitem.Make(1)})
			}
			return fakerpc.Halt(0, nil)
		}
		err := harness.Run(context.Background(), fee.NewSystemFeeConsumed(h))
		require.ErrorContains(t, err, "PUSH1")
	})
	t.Run("RET costs something", func(t *testing.T) {
		h, node := newTesting(t)
		node.Execute = func(*transaction.Transaction) state.Execution {
			return fakerpc.Halt(1, nil)
		}
		err := harness.Run(context.Background(), fee.NewSystemFeeConsumed(h))
		require.ErrorContains(t, err, "RET")
	})
}
