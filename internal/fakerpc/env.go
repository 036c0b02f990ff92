package fakerpc

import (
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
)

// NewEnv creates a testbed with random validator and other accounts. It
// panics if keys can't be generated.
func NewEnv(network netmode.Magic, validators, others int) *config.Env {
	return &config.Env{
		RPCEndpoint: config.DefaultRPCEndpoint,
		Network:     network,
		Hardforks:   config.DefaultHardfork(),
		Validators:  newAccounts(validators),
		Others:      newAccounts(others),
	}
}

func newAccounts(n int) []*wallet.Account {
	var accs = make([]*wallet.Account, 0, n)
	for range n {
		p, err := keys.NewPrivateKey()
		if err != nil {
			panic(err)
		}
		accs = append(accs, wallet.NewAccountFromPrivateKey(p))
	}
	return accs
}
