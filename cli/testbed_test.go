package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
	"github.com/nspcc-dev/neo-testbed/pkg/harness"
	"github.com/stretchr/testify/require"
)

func TestTestbedShow(t *testing.T) {
	expected, err := config.Load(testbedPath)
	require.NoError(t, err)

	for _, asYAML := range []bool{false, true} {
		e := newExecutor()
		args := []string{"neo-testbed", "testbed", "show", "--testbed", testbedPath}
		if asYAML {
			args = append(args, "--yaml")
		}
		e.Run(t, args...)

		doc, err := config.ParseDocument(e.Out.Bytes(), asYAML)
		require.NoError(t, err)
		actual, err := config.FromDocument(doc)
		require.NoError(t, err)
		require.True(t, expected.Equal(actual))
	}

	t.Run("env variable", func(t *testing.T) {
		t.Setenv(config.EnvTestbed, testbedPath)
		e := newExecutor()
		e.Run(t, "neo-testbed", "testbed", "show")
		e.checkNextLine(t, `^{$`)
		e.checkNextLine(t, `^  "rpc_endpoint": "127.0.0.1:10332",$`)
		e.checkNextLine(t, `^  "network": 1234567890,$`)
	})
	t.Run("broken", func(t *testing.T) {
		e := newExecutor()
		e.RunWithError(t, "neo-testbed", "testbed", "show", "--testbed", "../pkg/config/testdata/broken.json")
	})
}

func TestTestbedCheck(t *testing.T) {
	env, err := config.Load(testbedPath)
	require.NoError(t, err)
	h := harness.New(env, nil, nil)
	bft, err := h.BFTAddress()
	require.NoError(t, err)
	committee, err := h.CommitteeAddress()
	require.NoError(t, err)

	e := newExecutor()
	e.Run(t, "neo-testbed", "testbed", "check", "--testbed", testbedPath)
	out := e.Out.String()
	require.Contains(t, out, address.Uint160ToString(bft))
	require.Contains(t, out, address.Uint160ToString(committee))
	for _, acc := range append(env.Validators, env.Others...) {
		require.Contains(t, out, acc.Address)
	}
	require.Equal(t, 2+len(config.HardforkNames())+2+len(env.Validators)+len(env.Others), strings.Count(out, "\n"))

	e.RunWithError(t, "neo-testbed", "testbed", "check", "--testbed", "../pkg/config/testdata/no_network.json")
}

func TestTestbedGenerate(t *testing.T) {
	dir := t.TempDir()
	t.Run("json", func(t *testing.T) {
		out := filepath.Join(dir, "sub", "testbed.json")
		e := newExecutor()
		e.Run(t, "neo-testbed", "testbed", "generate", "--out", out, "--validators", "7", "--others", "1")
		e.checkNextLine(t, "^Testbed written to ")

		env, err := config.Load(out)
		require.NoError(t, err)
		require.Len(t, env.Validators, 7)
		require.Len(t, env.Others, 1)
		require.Equal(t, config.DefaultNetwork, env.Network)
		require.Equal(t, config.DefaultRPCEndpoint, env.RPCEndpoint)
		require.Equal(t, config.DefaultHardfork(), env.Hardforks)
	})
	t.Run("yaml", func(t *testing.T) {
		out := filepath.Join(dir, "testbed.yml")
		e := newExecutor()
		e.Run(t, "neo-testbed", "testbed", "generate", "-o", out, "-r", "http://10.0.0.1:30333", "--network", "56753")

		env, err := config.Load(out)
		require.NoError(t, err)
		require.Len(t, env.Validators, 4)
		require.Len(t, env.Others, 2)
		require.EqualValues(t, 56753, env.Network)
		require.Equal(t, "http://10.0.0.1:30333", env.RPCEndpoint)
	})
	t.Run("errors", func(t *testing.T) {
		e := newExecutor()
		e.RunWithError(t, "neo-testbed", "testbed", "generate")
		e.RunWithError(t, "neo-testbed", "testbed", "generate", "--out", filepath.Join(dir, "x.json"), "--validators", "0")
		e.RunWithError(t, "neo-testbed", "testbed", "generate", "--out", filepath.Join(dir, "x.json"), "--others", "-1")
	})
}
