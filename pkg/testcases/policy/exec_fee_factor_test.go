package policy_test

import (
	"context"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-testbed/internal/fakerpc"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/policy"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testNet netmode.Magic = 1234567890

func newTesting(t *testing.T) (*harness.Testing, *fakerpc.Node) {
	node := fakerpc.New(testNet)
	h := harness.New(fakerpc.NewEnv(testNet, 4, 1), node, zaptest.NewLogger(t))
	h.PollInterval = time.Millisecond
	h.MaxWait = time.Second
	return h, node
}

// emulate makes the node execute Policy setters signed by the committee.
func emulate(t *testing.T, h *harness.Testing, node *fakerpc.Node) {
	committee, err := h.CommitteeAddress()
	require.NoError(t, err)
	node.Execute = node.Emulator(committee)
}

// setterArgs returns arguments of all sent calls of the method.
func setterArgs(t *testing.T, node *fakerpc.Node, method string) []int64 {
	var res []int64
	for _, c := range node.Calls() {
		if c.Method != method {
			continue
		}
		v, err := c.IntArg(0)
		require.NoError(t, err)
		res = append(res, v)
	}
	return res
}

func TestExecFeeFactor(t *testing.T) {
	h, node := newTesting(t)
	emulate(t, h, node)

	require.NoError(t, harness.Run(context.Background(), policy.NewExecFeeFactor(h)))
	require.Equal(t, []int64{40, 0, 101, 40, 30}, setterArgs(t, node, "setExecFeeFactor"))
	require.EqualValues(t, 30, node.ExecFeeFactor)

	sent := node.Sent()
	require.Len(t, sent, 5)
	require.Equal(t, h.Env.Others[0].ScriptHash(), sent[0].Signers[0].Account)
	committee, err := h.CommitteeAddress()
	require.NoError(t, err)
	for _, tx := range sent[1:] {
		require.Equal(t, committee, tx.Signers[0].Account)
	}
}

func TestExecFeeFactorBrokenNode(t *testing.T) {
	t.Run("non-committee update succeeds", func(t *testing.T) {
		h, node := newTesting(t)
		node.Execute = func(*transaction.Transaction) state.Execution {
			return fakerpc.Halt(0, []stackitem.Item{stackitem.Null{}})
		}
		err := harness.Run(context.Background(), policy.NewExecFeeFactor(h))
		require.ErrorContains(t, err, "non-committee update")
		// Post-test still restores the original value.
		require.Len(t, node.Sent(), 2)
	})
	t.Run("range not enforced", func(t *testing.T) {
		h, node := newTesting(t)
		committee, err := h.CommitteeAddress()
		require.NoError(t, err)
		node.Execute = func(tx *transaction.Transaction) state.Execution {
			if !tx.Signers[0].Account.Equals(committee) {
				return fakerpc.Fault(0, "Invalid committee signature")
			}
			return fakerpc.Halt(0, []stackitem.Item{stackitem.Null{}})
		}
		err = harness.Run(context.Background(), policy.NewExecFeeFactor(h))
		require.ErrorContains(t, err, "out of range update to 0")
	})
	t.Run("update not persisted", func(t *testing.T) {
		h, node := newTesting(t)
		committee, err := h.CommitteeAddress()
		require.NoError(t, err)
		exec := node.Emulator(committee)
		node.Execute = func(tx *transaction.Transaction) state.Execution {
			res := exec(tx)
			node.SetExecFeeFactor(30)
			return res
		}
		err = harness.Run(context.Background(), policy.NewExecFeeFactor(h))
		require.ErrorContains(t, err, "ExecFeeFactor: expected 40, got 30")
	})
}

func TestSetExecFeeFactor(t *testing.T) {
	h, node := newTesting(t)
	emulate(t, h, node)

	require.NoError(t, policy.SetExecFeeFactor(context.Background(), h, 50))
	require.EqualValues(t, 50, node.ExecFeeFactor)
	require.ErrorContains(t, policy.SetExecFeeFactor(context.Background(), h, 500), "ExecFeeFactor must be between [1, 100]")
	require.EqualValues(t, 50, node.ExecFeeFactor)
}
