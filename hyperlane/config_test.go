package hyperlane

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validAddressHex = "0x742d35cc6634c0532925a3b844bc454e4438f44e"

func mustAddress(t *testing.T) Address {
	t.Helper()
	addr, err := AddressFromHex(validAddressHex)
	require.NoError(t, err)
	return addr
}

func sampleCoreConfig(t *testing.T) CoreConfig {
	addr := mustAddress(t)
	return CoreConfig{
		DefaultHook: DefaultHook{
			Address: addr,
			Type:    "merkleTreeHook",
		},
		DefaultIsm: DefaultIsm{
			Address: addr,
			Relayer: addr,
			Type:    "trustedRelayerIsm",
		},
		Owner: addr,
		RequiredHook: RequiredHook{
			Address:        addr,
			Beneficiary:    addr,
			MaxProtocolFee: "100000000000000000",
			Owner:          addr,
			ProtocolFee:    "0",
			Type:           "protocolFee",
		},
	}
}

func sampleWarpRouteConfig(t *testing.T) WarpRouteConfig {
	addr := mustAddress(t)
	return WarpRouteConfig{
		Chains: map[string]ChainConfig{
			"chain1": {
				InterchainSecurityModule: InterchainSecurityModule{
					Relayer: addr,
					Type:    "trustedRelayerIsm",
				},
				IsNft:                  false,
				Mailbox:                addr,
				InterchainGasPaymaster: &addr,
				Owner:                  addr,
				Type:                   TokenTypeSynthetic,
				Token:                  &addr,
			},
		},
	}
}

func TestCoreConfig_RoundTripJSON(t *testing.T) {
	cfg := sampleCoreConfig(t)

	b, err := cfg.ToJSON()
	require.NoError(t, err)

	parsed, err := CoreConfigFromJSON(string(b))
	require.NoError(t, err)
	require.Equal(t, cfg, parsed)
}

func TestCoreConfig_RoundTripYAML(t *testing.T) {
	cfg := sampleCoreConfig(t)

	b, err := cfg.ToYAML()
	require.NoError(t, err)

	parsed, err := CoreConfigFromYAML(string(b))
	require.NoError(t, err)
	require.Equal(t, cfg, parsed)
}

func TestWarpRouteConfig_RoundTripJSON(t *testing.T) {
	cfg := sampleWarpRouteConfig(t)

	b, err := cfg.ToJSON()
	require.NoError(t, err)

	parsed, err := WarpRouteConfigFromJSON(string(b))
	require.NoError(t, err)
	require.Equal(t, cfg, parsed)
}

func TestWarpRouteConfig_RoundTripYAML(t *testing.T) {
	cfg := sampleWarpRouteConfig(t)

	b, err := cfg.ToYAML()
	require.NoError(t, err)

	parsed, err := WarpRouteConfigFromYAML(string(b))
	require.NoError(t, err)
	require.Equal(t, cfg, parsed)
}

func TestWarpRouteConfig_FromJSON(t *testing.T) {
	doc := `
	{
		"chain1": {
			"interchainSecurityModule": {
				"relayer": "0x742d35cc6634c0532925a3b844bc454e4438f44e",
				"type": "trustedRelayerIsm"
			},
			"isNft": false,
			"mailbox": "0x742d35cc6634c0532925a3b844bc454e4438f44e",
			"interchainGasPaymaster": "0x742d35cc6634c0532925a3b844bc454e4438f44e",
			"owner": "0x742d35cc6634c0532925a3b844bc454e4438f44e",
			"type": "synthetic",
			"token": "0x742d35cc6634c0532925a3b844bc454e4438f44e"
		}
	}`

	cfg, err := WarpRouteConfigFromJSON(doc)
	require.NoError(t, err)
	require.Len(t, cfg.Chains, 1)

	chain, ok := cfg.Chains["chain1"]
	require.True(t, ok)
	require.Equal(t, TokenTypeSynthetic, chain.Type)
	require.NotNil(t, chain.Token)
	require.Equal(t, mustAddress(t), *chain.Token)
}

func TestWarpRouteConfig_ParseBytesYAML(t *testing.T) {
	doc := `
chain1:
  interchainSecurityModule:
    relayer: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
    type: "trustedRelayerIsm"
  isNft: false
  mailbox: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  interchainGasPaymaster: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "synthetic"
  token: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
`
	cfg, err := ParseWarpRouteConfig([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cfg.Chains, 1)
	require.Contains(t, cfg.Chains, "chain1")
}

func TestCoreConfig_ParseBytesYAML(t *testing.T) {
	doc := `
defaultHook:
  address: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "merkleTreeHook"
defaultIsm:
  address: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  relayer: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "trustedRelayerIsm"
owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
requiredHook:
  address: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  beneficiary: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  maxProtocolFee: "100000000000000000"
  owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  protocolFee: "0"
  type: "protocolFee"
`
	cfg, err := ParseCoreConfig([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, mustAddress(t), cfg.Owner)
	require.Equal(t, "merkleTreeHook", cfg.DefaultHook.Type)
}

func TestParse_InvalidUTF8(t *testing.T) {
	invalid := []byte{0x00, 0x9F, 0x92, 0x96}

	_, err := ParseCoreConfig(invalid)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = ParseWarpRouteConfig(invalid)
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestWarpRouteConfig_Rejection(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing mailbox",
			doc: `
chain1:
  interchainSecurityModule:
    relayer: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
    type: "trustedRelayerIsm"
  isNft: false
  owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "synthetic"
`,
		},
		{
			name: "unknown token type",
			doc: `
chain1:
  interchainSecurityModule:
    relayer: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
    type: "trustedRelayerIsm"
  isNft: false
  mailbox: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "wrapped"
`,
		},
		{
			name: "malformed address",
			doc: `
chain1:
  interchainSecurityModule:
    relayer: "0x1234"
    type: "trustedRelayerIsm"
  isNft: false
  mailbox: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "synthetic"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WarpRouteConfigFromYAML(tt.doc)
			var deserr *DeserializationError
			require.ErrorAs(t, err, &deserr)
		})
	}
}

func TestCoreConfig_FeeValidation(t *testing.T) {
	tests := []struct {
		name           string
		protocolFee    string
		maxProtocolFee string
		wantErr        bool
	}{
		{name: "zero fee", protocolFee: "0", maxProtocolFee: "100000000000000000"},
		{name: "fee equals max", protocolFee: "100", maxProtocolFee: "100"},
		{name: "fee exceeds max", protocolFee: "101", maxProtocolFee: "100", wantErr: true},
		{name: "negative fee", protocolFee: "-1", maxProtocolFee: "100", wantErr: true},
		{name: "non-integer fee", protocolFee: "1.5", maxProtocolFee: "100", wantErr: true},
		{name: "missing max fee", protocolFee: "0", maxProtocolFee: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleCoreConfig(t)
			cfg.RequiredHook.ProtocolFee = tt.protocolFee
			cfg.RequiredHook.MaxProtocolFee = tt.maxProtocolFee

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCoreConfig_RejectsMissingField(t *testing.T) {
	doc := `
defaultHook:
  type: "merkleTreeHook"
defaultIsm:
  address: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  relayer: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  type: "trustedRelayerIsm"
owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
requiredHook:
  address: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  beneficiary: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  maxProtocolFee: "100000000000000000"
  owner: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  protocolFee: "0"
  type: "protocolFee"
`
	_, err := CoreConfigFromYAML(doc)
	var deserr *DeserializationError
	require.ErrorAs(t, err, &deserr)
	require.Contains(t, err.Error(), "defaultHook.address")
}

func TestCoreConfig_UpdateOwner(t *testing.T) {
	cfg := sampleCoreConfig(t)
	newOwner, err := AddressFromHex("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)

	cfg.UpdateOwner(newOwner)
	require.Equal(t, newOwner, cfg.Owner)
}

func TestWarpRouteConfig_UpdateChainConfig(t *testing.T) {
	cfg := sampleWarpRouteConfig(t)
	original := cfg.Chains["chain1"]
	addr := mustAddress(t)

	added := ChainConfig{
		InterchainSecurityModule: InterchainSecurityModule{Relayer: addr, Type: "newIsm"},
		IsNft:                    true,
		Mailbox:                  addr,
		Owner:                    addr,
		Type:                     TokenTypeCollateral,
	}
	cfg.UpdateChainConfig("chain2", added)
	require.Len(t, cfg.Chains, 2)
	require.Equal(t, original, cfg.Chains["chain1"])
	require.Equal(t, added, cfg.Chains["chain2"])

	// replacing an entry swaps it wholesale, no field-level merge
	replacement := added
	replacement.IsNft = false
	replacement.Type = TokenTypeNative
	cfg.UpdateChainConfig("chain1", replacement)
	require.Equal(t, replacement, cfg.Chains["chain1"])
}

func TestChainConfig_TokenOmittedWhenAbsent(t *testing.T) {
	cfg := sampleWarpRouteConfig(t)
	chain := cfg.Chains["chain1"]
	chain.Token = nil
	chain.InterchainGasPaymaster = nil
	cfg.Chains["chain1"] = chain

	jsonBytes, err := cfg.ToJSON()
	require.NoError(t, err)
	require.NotContains(t, string(jsonBytes), "token")
	require.NotContains(t, string(jsonBytes), "interchainGasPaymaster")

	yamlBytes, err := cfg.ToYAML()
	require.NoError(t, err)
	require.NotContains(t, string(yamlBytes), "token")
	require.NotContains(t, string(yamlBytes), "interchainGasPaymaster")
	require.NotContains(t, string(yamlBytes), "null")
}

func TestAddress_SerializesQuotedInYAML(t *testing.T) {
	cfg := sampleCoreConfig(t)

	b, err := cfg.ToYAML()
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), `"0x742d35Cc6634C0532925a3b844Bc454e4438f44e"`),
		"addresses must serialize as double quoted scalars, got:\n%s", string(b))
}

func TestAddressFromHex_Invalid(t *testing.T) {
	for _, s := range []string{"", "0x1234", "742d", "0xzz2d35cc6634c0532925a3b844bc454e4438f44e"} {
		_, err := AddressFromHex(s)
		require.Error(t, err, "address %q should be rejected", s)
	}
}

func TestDeserializationError_Unwrap(t *testing.T) {
	_, err := CoreConfigFromJSON("{")
	var deserr *DeserializationError
	require.ErrorAs(t, err, &deserr)
	require.Equal(t, "core config", deserr.Doc)
	require.Error(t, errors.Unwrap(err))
}
