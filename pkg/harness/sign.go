package harness

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/emit"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

// KeySignature is a signature along with the public key to check it.
type KeySignature struct {
	Key       *keys.PublicKey
	Signature []byte
}

var errNoValidators = errors.New("testbed has no validators")

func (t *Testing) validatorKeys() (keys.PublicKeys, error) {
	if len(t.Env.Validators) == 0 {
		return nil, errNoValidators
	}
	var pubs = make(keys.PublicKeys, 0, len(t.Env.Validators))
	for _, v := range t.Env.Validators {
		pubs = append(pubs, v.PrivateKey().PublicKey())
	}
	return pubs, nil
}

// BFTVerificationScript returns verification script of the validators
// multisignature account (n - (n-1)/3 signatures required).
func (t *Testing) BFTVerificationScript() ([]byte, error) {
	pubs, err := t.validatorKeys()
	if err != nil {
		return nil, err
	}
	return smartcontract.CreateDefaultMultiSigRedeemScript(pubs)
}

// CommitteeVerificationScript returns verification script of the validators
// majority multisignature account (n - (n-1)/2 signatures required).
func (t *Testing) CommitteeVerificationScript() ([]byte, error) {
	pubs, err := t.validatorKeys()
	if err != nil {
		return nil, err
	}
	return smartcontract.CreateMajorityMultiSigRedeemScript(pubs)
}

// BFTAddress returns script hash of the validators multisignature account.
func (t *Testing) BFTAddress() (util.Uint160, error) {
	script, err := t.BFTVerificationScript()
	if err != nil {
		return util.Uint160{}, err
	}
	return hash.Hash160(script), nil
}

// CommitteeAddress returns script hash of the committee multisignature
// account.
func (t *Testing) CommitteeAddress() (util.Uint160, error) {
	script, err := t.CommitteeVerificationScript()
	if err != nil {
		return util.Uint160{}, err
	}
	return hash.Hash160(script), nil
}

// Sign signs the transaction for the testbed network.
func (t *Testing) Sign(p *keys.PrivateKey, tx *transaction.Transaction) []byte {
	return p.SignHashable(uint32(t.Env.Network), tx)
}

// MakeWitness creates a standard signature witness.
func MakeWitness(sig []byte, pub *keys.PublicKey) transaction.Witness {
	w := io.NewBufBinWriter()
	emit.Bytes(w.BinWriter, sig)
	return transaction.Witness{
		InvocationScript:   w.Bytes(),
		VerificationScript: pub.GetVerificationScript(),
	}
}

// MakeMultisigWitness creates multisignature witness from the given
// signatures. Pairs are sorted by public key and the first m signatures are
// used, m is the BFT or committee threshold for len(pairs) keys.
func MakeMultisigWitness(pairs []KeySignature, committee bool) (transaction.Witness, error) {
	if len(pairs) == 0 {
		return transaction.Witness{}, errors.New("no signatures")
	}
	sorted := slices.Clone(pairs)
	slices.SortFunc(sorted, func(a, b KeySignature) int {
		return a.Key.Cmp(b.Key)
	})

	var m = smartcontract.GetDefaultHonestNodeCount(len(sorted))
	if committee {
		m = smartcontract.GetMajorityHonestNodeCount(len(sorted))
	}

	var (
		pubs = make(keys.PublicKeys, 0, len(sorted))
		w    = io.NewBufBinWriter()
	)
	for i, p := range sorted {
		pubs = append(pubs, p.Key)
		if i < m {
			emit.Bytes(w.BinWriter, p.Signature)
		}
	}
	verif, err := smartcontract.CreateMultiSigRedeemScript(m, pubs)
	if err != nil {
		return transaction.Witness{}, fmt.Errorf("failed to create multisig script: %w", err)
	}
	return transaction.Witness{
		InvocationScript:   w.Bytes(),
		VerificationScript: verif,
	}, nil
}

func newTx(script []byte, sysfee, netfee int64, validUntil uint32, sender util.Uint160) *transaction.Transaction {
	tx := transaction.New(script, sysfee)
	tx.Nonce = rand.Uint32()
	tx.NetworkFee = netfee
	tx.ValidUntilBlock = validUntil
	tx.Signers = []transaction.Signer{{
		Account: sender,
		Scopes:  transaction.CalledByEntry,
	}}
	return tx
}

// MakeTx creates a transaction signed by the given account. Fees are used
// as is, nothing is calculated or checked.
func (t *Testing) MakeTx(acc *wallet.Account, script []byte, sysfee, netfee int64, validUntil uint32) *transaction.Transaction {
	var (
		priv = acc.PrivateKey()
		tx   = newTx(script, sysfee, netfee, validUntil, acc.ScriptHash())
	)
	tx.Scripts = []transaction.Witness{MakeWitness(t.Sign(priv, tx), priv.PublicKey())}
	return tx
}

// MakeMultisigTx creates a transaction sent from the BFT (or committee)
// account signed by all validators.
func (t *Testing) MakeMultisigTx(script []byte, sysfee, netfee int64, validUntil uint32, committee bool) (*transaction.Transaction, error) {
	var (
		sender util.Uint160
		err    error
	)
	if committee {
		sender, err = t.CommitteeAddress()
	} else {
		sender, err = t.BFTAddress()
	}
	if err != nil {
		return nil, err
	}

	tx := newTx(script, sysfee, netfee, validUntil, sender)
	var pairs = make([]KeySignature, 0, len(t.Env.Validators))
	for _, v := range t.Env.Validators {
		priv := v.PrivateKey()
		pairs = append(pairs, KeySignature{Key: priv.PublicKey(), Signature: t.Sign(priv, tx)})
	}
	w, err := MakeMultisigWitness(pairs, committee)
	if err != nil {
		return nil, err
	}
	tx.Scripts = []transaction.Witness{w}
	return tx, nil
}

// CallScript creates a script calling the contract method with the given
// flags and arguments.
func CallScript(contract util.Uint160, method string, f callflag.CallFlag, args ...any) ([]byte, error) {
	w := io.NewBufBinWriter()
	emit.AppCall(w.BinWriter, contract, method, f, args...)
	if w.Err != nil {
		return nil, fmt.Errorf("failed to create %s call script: %w", method, w.Err)
	}
	return w.Bytes(), nil
}

// TransferScript creates NEP-17 transfer(from, to, amount, null) script.
func TransferScript(token, from, to util.Uint160, amount *big.Int) ([]byte, error) {
	return CallScript(token, "transfer", callflag.All, from, to, amount, nil)
}
