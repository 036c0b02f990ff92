package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// RPCClient is a set of RPC methods used by test cases. It's implemented by
// *rpcclient.Client, the node must have ApplicationLogs plugin enabled for
// GetApplicationLog to work.
type RPCClient interface {
	invoker.RPCInvoke

	CalculateNetworkFee(tx *transaction.Transaction) (int64, error)
	GetApplicationLog(hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error)
	GetBlockCount() (uint32, error)
	GetRawMemPool() ([]util.Uint256, error)
	SendRawTransaction(tx *transaction.Transaction) (util.Uint256, error)
}

// VersionGetter is implemented by RPC clients able to query node version.
type VersionGetter interface {
	GetVersion() (*result.Version, error)
}

var (
	_ RPCClient     = (*rpcclient.Client)(nil)
	_ VersionGetter = (*rpcclient.Client)(nil)
)

// Dial creates and initializes an RPC client for the given endpoint. Endpoints
// without scheme are treated as plain HTTP ones.
func Dial(ctx context.Context, endpoint string, timeout time.Duration) (*rpcclient.Client, error) {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	c, err := rpcclient.New(ctx, endpoint, rpcclient.Options{
		DialTimeout:    timeout,
		RequestTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}
	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to init RPC client: %w", err)
	}
	return c, nil
}

// CheckNetwork ensures that the node serves the network the testbed is made
// for, transactions signed for other magic would be rejected anyway.
func CheckNetwork(c VersionGetter, expected netmode.Magic) error {
	v, err := c.GetVersion()
	if err != nil {
		return fmt.Errorf("failed to get node version: %w", err)
	}
	if magic := v.Protocol.Network; magic != expected {
		return fmt.Errorf("node network %d (%s) doesn't match testbed network %d", uint32(magic), magic, uint32(expected))
	}
	return nil
}
