package hyperlane

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Address is a 20-byte chain address. It wraps the go-ethereum address so
// that malformed input is rejected at the decoding boundary for both JSON
// and YAML documents, instead of flowing through as a bare string.
type Address struct {
	common.Address
}

// AddressFromHex parses a hex address, with or without the 0x prefix,
// checksummed or raw.
func AddressFromHex(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}
	return Address{Address: common.HexToAddress(s)}, nil
}

// IsZero reports whether the address is the zero address, which is how a
// missing address field decodes.
func (a Address) IsZero() bool {
	return a.Address == (common.Address{})
}

// MarshalText renders the EIP-55 checksummed form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Address.Hex()), nil
}

// MarshalYAML renders the address as a double quoted scalar so the CLI's
// YAML parser never misreads it as a number.
func (a Address) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: a.Address.Hex(),
		Style: yaml.DoubleQuotedStyle,
	}, nil
}

func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := AddressFromHex(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
