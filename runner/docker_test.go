package runner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImage_Ref(t *testing.T) {
	require.Equal(t, "hyperlane-cli:latest", Image{Repository: "hyperlane-cli"}.Ref())
	require.Equal(t, "hyperlane-cli:v1.2.3", Image{Repository: "hyperlane-cli", Version: "v1.2.3"}.Ref())
}

func TestSanitizeResourceName(t *testing.T) {
	require.Equal(t, "core-read---chain-holesky", sanitizeResourceName("core read --chain holesky"))
	require.Equal(t, "warp-deploy", sanitizeResourceName("warp deploy"))
}
