package testcases

import (
	"context"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/nspcc-dev/neo-testbed/pkg/testcases/basics"
	"go.uber.org/zap"
)

// CommitteeGASAmount is transferred from the BFT account to the committee
// one to pay for committee transactions (10000 GAS).
const CommitteeGASAmount = 10000_00000000

// Initial prepares a fresh network for other cases: others[0] gets NEO and
// GAS, the committee account gets GAS.
type Initial struct {
	*harness.Testing
}

// NewInitial creates Initial case.
func NewInitial(t *harness.Testing) *Initial {
	return &Initial{t.Named("Initial")}
}

// RunTest implements the harness.Case interface.
func (c *Initial) RunTest(ctx context.Context) error {
	if err := harness.Run(ctx, basics.NewNeoRPCTransferMultisig(c.Testing)); err != nil {
		return err
	}
	if err := harness.Run(ctx, basics.NewGasRPCTransferMultisig(c.Testing)); err != nil {
		return err
	}
	return c.fundCommittee(ctx)
}

func (c *Initial) fundCommittee(ctx context.Context) error {
	bft, err := c.BFTAddress()
	if err != nil {
		return err
	}
	committee, err := c.CommitteeAddress()
	if err != nil {
		return err
	}
	script, err := harness.TransferScript(gas.Hash, bft, committee, big.NewInt(CommitteeGASAmount))
	if err != nil {
		return err
	}
	before, err := c.GASBalance(committee)
	if err != nil {
		return err
	}
	vub, err := c.ValidUntilBlock()
	if err != nil {
		return err
	}
	tx, err := c.MakeMultisigTx(script, c.DefaultSysFee, c.DefaultNetFee, vub, false)
	if err != nil {
		return err
	}
	if _, err := c.SendAndWait(ctx, tx, "committee GAS transfer"); err != nil {
		return err
	}
	after, err := c.GASBalance(committee)
	if err != nil {
		return err
	}
	c.Log.Info("committee GAS balance",
		zap.String("committee", committee.StringLE()),
		zap.Stringer("balance", after),
		zap.Stringer("difference", new(big.Int).Sub(after, before)))

	expected := new(big.Int).Add(before, big.NewInt(CommitteeGASAmount))
	if after.Cmp(expected) != 0 {
		return fmt.Errorf("committee GAS balance: expected %s, got %s", expected, after)
	}
	return nil
}
