package hyperlane

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// InterchainSecurityModule is one chain's ISM entry in a warp route.
type InterchainSecurityModule struct {
	Relayer Address `json:"relayer" yaml:"relayer"`
	Type    string  `json:"type" yaml:"type"`
}

// ChainConfig describes one chain's participation in a warp route. Token is
// present on the wire only for collateral-family standards; a nil Token
// serializes as an omitted field, never an explicit null.
type ChainConfig struct {
	InterchainSecurityModule InterchainSecurityModule `json:"interchainSecurityModule" yaml:"interchainSecurityModule"`
	IsNft                    bool                     `json:"isNft" yaml:"isNft"`
	Mailbox                  Address                  `json:"mailbox" yaml:"mailbox"`
	InterchainGasPaymaster   *Address                 `json:"interchainGasPaymaster,omitempty" yaml:"interchainGasPaymaster,omitempty"`
	Owner                    Address                  `json:"owner" yaml:"owner"`
	Type                     TokenType                `json:"type" yaml:"type"`
	Token                    *Address                 `json:"token,omitempty" yaml:"token,omitempty"`
}

// Validate checks required fields. A zero address is treated as missing.
func (c ChainConfig) Validate() error {
	if c.InterchainSecurityModule.Relayer.IsZero() {
		return fmt.Errorf("missing required address field interchainSecurityModule.relayer")
	}
	if c.InterchainSecurityModule.Type == "" {
		return fmt.Errorf("missing required field interchainSecurityModule.type")
	}
	if c.Mailbox.IsZero() {
		return fmt.Errorf("missing required address field mailbox")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("missing required address field owner")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("missing or unknown token type %q", string(c.Type))
	}
	return nil
}

// WarpRouteConfig is the full multi-chain route definition, keyed by chain
// name. The document form inlines the mapping at the top level.
type WarpRouteConfig struct {
	Chains map[string]ChainConfig
}

// ParseWarpRouteConfig decodes a warp route document from raw caller-supplied
// bytes. The production path delivers YAML, which also accepts JSON input.
func ParseWarpRouteConfig(b []byte) (WarpRouteConfig, error) {
	if !utf8.Valid(b) {
		return WarpRouteConfig{}, ErrInvalidEncoding
	}
	return WarpRouteConfigFromYAML(string(b))
}

// WarpRouteConfigFromJSON decodes and validates a JSON warp route document.
func WarpRouteConfigFromJSON(s string) (WarpRouteConfig, error) {
	var c WarpRouteConfig
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return WarpRouteConfig{}, &DeserializationError{Doc: "warp route config", Err: err}
	}
	if err := c.Validate(); err != nil {
		return WarpRouteConfig{}, &DeserializationError{Doc: "warp route config", Err: err}
	}
	return c, nil
}

// WarpRouteConfigFromYAML decodes and validates a YAML warp route document.
func WarpRouteConfigFromYAML(s string) (WarpRouteConfig, error) {
	var c WarpRouteConfig
	if err := yaml.Unmarshal([]byte(s), &c); err != nil {
		return WarpRouteConfig{}, &DeserializationError{Doc: "warp route config", Err: err}
	}
	if err := c.Validate(); err != nil {
		return WarpRouteConfig{}, &DeserializationError{Doc: "warp route config", Err: err}
	}
	return c, nil
}

// ToJSON renders the document form the hyperlane CLI accepts.
func (c WarpRouteConfig) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// ToYAML renders the document form the hyperlane CLI accepts.
func (c WarpRouteConfig) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c WarpRouteConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Chains)
}

func (c *WarpRouteConfig) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &c.Chains)
}

func (c WarpRouteConfig) MarshalYAML() (interface{}, error) {
	return c.Chains, nil
}

func (c *WarpRouteConfig) UnmarshalYAML(value *yaml.Node) error {
	return value.Decode(&c.Chains)
}

// UpdateChainConfig upserts the entry for chain: an existing entry is
// replaced entirely, a new one is inserted.
func (c *WarpRouteConfig) UpdateChainConfig(chain string, cfg ChainConfig) {
	if c.Chains == nil {
		c.Chains = make(map[string]ChainConfig)
	}
	c.Chains[chain] = cfg
}

// Validate checks every chain entry.
func (c WarpRouteConfig) Validate() error {
	for name, chain := range c.Chains {
		if err := chain.Validate(); err != nil {
			return fmt.Errorf("chain %s: %w", name, err)
		}
	}
	return nil
}
