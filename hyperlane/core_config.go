package hyperlane

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	sdkmath "cosmossdk.io/math"
	"gopkg.in/yaml.v3"
)

// DefaultHook identifies the default post-dispatch hook for a chain.
type DefaultHook struct {
	Address Address `json:"address" yaml:"address"`
	Type    string  `json:"type" yaml:"type"`
}

// DefaultIsm identifies the default interchain security module and its
// trusted relayer.
type DefaultIsm struct {
	Address Address `json:"address" yaml:"address"`
	Relayer Address `json:"relayer" yaml:"relayer"`
	Type    string  `json:"type" yaml:"type"`
}

// RequiredHook models the protocol fee hook. Fee amounts stay base-10
// integer strings on the wire to avoid precision loss.
type RequiredHook struct {
	Address        Address `json:"address" yaml:"address"`
	Beneficiary    Address `json:"beneficiary" yaml:"beneficiary"`
	MaxProtocolFee string  `json:"maxProtocolFee" yaml:"maxProtocolFee"`
	Owner          Address `json:"owner" yaml:"owner"`
	ProtocolFee    string  `json:"protocolFee" yaml:"protocolFee"`
	Type           string  `json:"type" yaml:"type"`
}

// CoreConfig is the shared messaging infrastructure configuration for one
// chain: default hook, default ISM, owner and the required protocol fee hook.
type CoreConfig struct {
	DefaultHook  DefaultHook  `json:"defaultHook" yaml:"defaultHook"`
	DefaultIsm   DefaultIsm   `json:"defaultIsm" yaml:"defaultIsm"`
	Owner        Address      `json:"owner" yaml:"owner"`
	RequiredHook RequiredHook `json:"requiredHook" yaml:"requiredHook"`
}

// ParseCoreConfig decodes a core config document from raw caller-supplied
// bytes. The production path delivers YAML, which also accepts JSON input.
func ParseCoreConfig(b []byte) (CoreConfig, error) {
	if !utf8.Valid(b) {
		return CoreConfig{}, ErrInvalidEncoding
	}
	return CoreConfigFromYAML(string(b))
}

// CoreConfigFromJSON decodes and validates a JSON core config document.
func CoreConfigFromJSON(s string) (CoreConfig, error) {
	var c CoreConfig
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return CoreConfig{}, &DeserializationError{Doc: "core config", Err: err}
	}
	if err := c.Validate(); err != nil {
		return CoreConfig{}, &DeserializationError{Doc: "core config", Err: err}
	}
	return c, nil
}

// CoreConfigFromYAML decodes and validates a YAML core config document.
func CoreConfigFromYAML(s string) (CoreConfig, error) {
	var c CoreConfig
	if err := yaml.Unmarshal([]byte(s), &c); err != nil {
		return CoreConfig{}, &DeserializationError{Doc: "core config", Err: err}
	}
	if err := c.Validate(); err != nil {
		return CoreConfig{}, &DeserializationError{Doc: "core config", Err: err}
	}
	return c, nil
}

// ToJSON renders the document form the hyperlane CLI accepts.
func (c CoreConfig) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// ToYAML renders the document form the hyperlane CLI accepts.
func (c CoreConfig) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// UpdateOwner replaces the owner address.
func (c *CoreConfig) UpdateOwner(owner Address) {
	c.Owner = owner
}

// Validate checks required fields and fee invariants. A zero address is
// treated as a missing field.
func (c CoreConfig) Validate() error {
	for _, f := range []struct {
		name string
		addr Address
	}{
		{"defaultHook.address", c.DefaultHook.Address},
		{"defaultIsm.address", c.DefaultIsm.Address},
		{"defaultIsm.relayer", c.DefaultIsm.Relayer},
		{"owner", c.Owner},
		{"requiredHook.address", c.RequiredHook.Address},
		{"requiredHook.beneficiary", c.RequiredHook.Beneficiary},
		{"requiredHook.owner", c.RequiredHook.Owner},
	} {
		if f.addr.IsZero() {
			return fmt.Errorf("missing required address field %s", f.name)
		}
	}
	for _, f := range []struct {
		name string
		tag  string
	}{
		{"defaultHook.type", c.DefaultHook.Type},
		{"defaultIsm.type", c.DefaultIsm.Type},
		{"requiredHook.type", c.RequiredHook.Type},
	} {
		if f.tag == "" {
			return fmt.Errorf("missing required field %s", f.name)
		}
	}

	maxFee, err := parseFee("requiredHook.maxProtocolFee", c.RequiredHook.MaxProtocolFee)
	if err != nil {
		return err
	}
	fee, err := parseFee("requiredHook.protocolFee", c.RequiredHook.ProtocolFee)
	if err != nil {
		return err
	}
	if fee.GT(maxFee) {
		return fmt.Errorf("requiredHook.protocolFee %s exceeds maxProtocolFee %s",
			c.RequiredHook.ProtocolFee, c.RequiredHook.MaxProtocolFee)
	}
	return nil
}

func parseFee(field, v string) (sdkmath.Int, error) {
	n, ok := sdkmath.NewIntFromString(v)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("%s: %q is not a base-10 integer", field, v)
	}
	if n.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("%s: %q must not be negative", field, v)
	}
	return n, nil
}
