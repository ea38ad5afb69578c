package payment

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(128)
	transfer := testRecipient().Transfer(decimal.RequireFromString("39.98"), "ivv-intern-JaneDoe-abc123def456")

	code, err := r.Render(transfer)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code.Payload, "BCD\n"))
	assert.True(t, bytes.HasPrefix(code.PNG, pngMagic))

	uri := code.DataURI()
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, code.PNG, decoded)
}

func TestRenderer_RejectsInvalidTransfer(t *testing.T) {
	r := NewRenderer(0)
	transfer := testRecipient().Transfer(decimal.Zero, "ref")

	_, err := r.Render(transfer)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}
