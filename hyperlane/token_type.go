package hyperlane

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TokenType is the warp route token standard for one chain, in the camelCase
// wire form the hyperlane CLI expects.
type TokenType string

const (
	TokenTypeSynthetic       TokenType = "synthetic"
	TokenTypeFastSynthetic   TokenType = "fastSynthetic"
	TokenTypeSyntheticURI    TokenType = "syntheticUri"
	TokenTypeCollateral      TokenType = "collateral"
	TokenTypeCollateralVault TokenType = "collateralVault"
	TokenTypeXERC20          TokenType = "xErc20"
	TokenTypeXERC20Lockbox   TokenType = "xErc20Lockbox"
	TokenTypeCollateralFiat  TokenType = "collateralFiat"
	TokenTypeFastCollateral  TokenType = "fastCollateral"
	TokenTypeCollateralURI   TokenType = "collateralUri"
	TokenTypeNative          TokenType = "native"
	TokenTypeNativeScaled    TokenType = "nativeScaled"
)

var tokenTypes = map[TokenType]struct{}{
	TokenTypeSynthetic:       {},
	TokenTypeFastSynthetic:   {},
	TokenTypeSyntheticURI:    {},
	TokenTypeCollateral:      {},
	TokenTypeCollateralVault: {},
	TokenTypeXERC20:          {},
	TokenTypeXERC20Lockbox:   {},
	TokenTypeCollateralFiat:  {},
	TokenTypeFastCollateral:  {},
	TokenTypeCollateralURI:   {},
	TokenTypeNative:          {},
	TokenTypeNativeScaled:    {},
}

// Valid reports whether t is one of the known token standards.
func (t TokenType) Valid() bool {
	_, ok := tokenTypes[t]
	return ok
}

func (t *TokenType) UnmarshalText(b []byte) error {
	tt := TokenType(b)
	if !tt.Valid() {
		return fmt.Errorf("unknown token type %q", string(b))
	}
	*t = tt
	return nil
}

func (t *TokenType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}
