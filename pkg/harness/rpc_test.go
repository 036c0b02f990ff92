package harness_test

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-testbed/internal/fakerpc"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/stretchr/testify/require"
)

func TestCheckNetwork(t *testing.T) {
	node := fakerpc.New(testNet)
	require.NoError(t, harness.CheckNetwork(node, testNet))

	err := harness.CheckNetwork(node, netmode.MainNet)
	require.ErrorContains(t, err, "node network 42")
	require.ErrorContains(t, err, "doesn't match testbed network 860833102")

	node.VersionErr = errors.New("connection refused")
	err = harness.CheckNetwork(node, testNet)
	require.ErrorContains(t, err, "failed to get node version")
	require.ErrorContains(t, err, "connection refused")
}
