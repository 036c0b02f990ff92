package basics

import (
	"context"
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/neo"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
)

const (
	// MultisigNEOAmount is transferred from the BFT account to others[0].
	MultisigNEOAmount = 1000
	// MultisigGASAmount is transferred from the BFT account to others[0]
	// (10000 GAS).
	MultisigGASAmount = 10000_00000000
	// NEOAmount is transferred from others[0] to others[1].
	NEOAmount = 1
	// GASAmount is transferred from others[0] to others[1] (0.1 GAS).
	GASAmount = 1_0000000
)

var errNotEnoughOthers = errors.New("testbed needs at least 2 other accounts")

// NeoRPCTransferMultisig transfers 1000 NEO from the BFT account to others[0].
type NeoRPCTransferMultisig struct {
	BasicsTesting
}

// NewNeoRPCTransferMultisig creates NeoRPCTransferMultisig case.
func NewNeoRPCTransferMultisig(t *harness.Testing) *NeoRPCTransferMultisig {
	return &NeoRPCTransferMultisig{BasicsTesting{t.Named("NeoRPCTransferMultisig")}}
}

// RunTest implements the harness.Case interface.
func (c *NeoRPCTransferMultisig) RunTest(ctx context.Context) error {
	if len(c.Env.Others) == 0 {
		return errNotEnoughOthers
	}
	bft, err := c.BFTAddress()
	if err != nil {
		return err
	}
	to := c.Env.Others[0].ScriptHash()
	res, err := c.transfer(ctx, transferParams{
		token:  neo.Hash,
		from:   bft,
		to:     to,
		amount: MultisigNEOAmount,
	})
	if err != nil {
		return err
	}
	if err := checkBalance("source NEO", res.fromAfter, res.fromBefore, -MultisigNEOAmount); err != nil {
		return err
	}
	if err := checkBalance("destination NEO", res.toAfter, res.toBefore, MultisigNEOAmount); err != nil {
		return err
	}
	return CheckNEOTransferApplicationLog(res.log, res.txid, bft, to, MultisigNEOAmount)
}

// GasRPCTransferMultisig transfers 10000 GAS from the BFT account to
// others[0].
type GasRPCTransferMultisig struct {
	BasicsTesting
}

// NewGasRPCTransferMultisig creates GasRPCTransferMultisig case.
func NewGasRPCTransferMultisig(t *harness.Testing) *GasRPCTransferMultisig {
	return &GasRPCTransferMultisig{BasicsTesting{t.Named("GasRPCTransferMultisig")}}
}

// RunTest implements the harness.Case interface. Source balance isn't
// checked since the BFT account pays fees too.
func (c *GasRPCTransferMultisig) RunTest(ctx context.Context) error {
	if len(c.Env.Others) == 0 {
		return errNotEnoughOthers
	}
	bft, err := c.BFTAddress()
	if err != nil {
		return err
	}
	to := c.Env.Others[0].ScriptHash()
	res, err := c.transfer(ctx, transferParams{
		token:  gas.Hash,
		from:   bft,
		to:     to,
		amount: MultisigGASAmount,
	})
	if err != nil {
		return err
	}
	if err := checkBalance("destination GAS", res.toAfter, res.toBefore, MultisigGASAmount); err != nil {
		return err
	}
	return CheckGASTransferApplicationLog(res.exec, bft, to, MultisigGASAmount)
}

// NeoRPCTransfer transfers 1 NEO from others[0] to others[1].
type NeoRPCTransfer struct {
	BasicsTesting
}

// NewNeoRPCTransfer creates NeoRPCTransfer case.
func NewNeoRPCTransfer(t *harness.Testing) *NeoRPCTransfer {
	return &NeoRPCTransfer{BasicsTesting{t.Named("NeoRPCTransfer")}}
}

// RunTest implements the harness.Case interface.
func (c *NeoRPCTransfer) RunTest(ctx context.Context) error {
	if len(c.Env.Others) < 2 {
		return errNotEnoughOthers
	}
	var (
		sender = c.Env.Others[0]
		from   = sender.ScriptHash()
		to     = c.Env.Others[1].ScriptHash()
	)
	res, err := c.transfer(ctx, transferParams{
		token:  neo.Hash,
		from:   from,
		to:     to,
		amount: NEOAmount,
		sender: sender,
	})
	if err != nil {
		return err
	}
	if err := checkBalance("source NEO", res.fromAfter, res.fromBefore, -NEOAmount); err != nil {
		return err
	}
	if err := checkBalance("destination NEO", res.toAfter, res.toBefore, NEOAmount); err != nil {
		return err
	}
	return CheckNEOTransferApplicationLog(res.log, res.txid, from, to, NEOAmount)
}

// GasRPCTransfer transfers 0.1 GAS from others[0] to others[1].
type GasRPCTransfer struct {
	BasicsTesting
}

// NewGasRPCTransfer creates GasRPCTransfer case.
func NewGasRPCTransfer(t *harness.Testing) *GasRPCTransfer {
	return &GasRPCTransfer{BasicsTesting{t.Named("GasRPCTransfer")}}
}

// RunTest implements the harness.Case interface. The sender pays the whole
// system and network fees.
func (c *GasRPCTransfer) RunTest(ctx context.Context) error {
	if len(c.Env.Others) < 2 {
		return errNotEnoughOthers
	}
	var (
		sender = c.Env.Others[0]
		from   = sender.ScriptHash()
		to     = c.Env.Others[1].ScriptHash()
	)
	res, err := c.transfer(ctx, transferParams{
		token:  gas.Hash,
		from:   from,
		to:     to,
		amount: GASAmount,
		sender: sender,
	})
	if err != nil {
		return err
	}
	spent := GASAmount + c.DefaultSysFee + c.DefaultNetFee
	if err := checkBalance("source GAS", res.fromAfter, res.fromBefore, -spent); err != nil {
		return err
	}
	if err := checkBalance("destination GAS", res.toAfter, res.toBefore, GASAmount); err != nil {
		return err
	}
	return CheckGASTransferApplicationLog(res.exec, from, to, GASAmount)
}

// BasicsInitial runs NeoRPCTransferMultisig and GasRPCTransferMultisig to
// fund others[0].
type BasicsInitial struct {
	BasicsTesting
}

// NewBasicsInitial creates BasicsInitial case.
func NewBasicsInitial(t *harness.Testing) *BasicsInitial {
	return &BasicsInitial{BasicsTesting{t.Named("BasicsInitial")}}
}

// RunTest implements the harness.Case interface.
func (c *BasicsInitial) RunTest(ctx context.Context) error {
	if err := harness.Run(ctx, NewNeoRPCTransferMultisig(c.Testing)); err != nil {
		return err
	}
	return harness.Run(ctx, NewGasRPCTransferMultisig(c.Testing))
}
