package drive

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func TestCursor_EncodeDecodeRoundTrip(t *testing.T) {
	c := &Cursor{Version: CursorVersion, StartPageToken: "token-123"}

	encoded := c.Encode()
	require.NotEmpty(t, encoded)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, c.StartPageToken, decoded.StartPageToken)
	assert.Equal(t, c.Version, decoded.Version)
}

func TestDecodeCursor_EmptyReturnsFreshCursor(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, CursorVersion, c.Version)
}

func TestDecodeCursor_MalformedIsExpired(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.ErrorIs(t, err, domain.ErrDeltaExpired)

	garbage := base64.StdEncoding.EncodeToString([]byte("not json"))
	_, err = DecodeCursor(garbage)
	assert.ErrorIs(t, err, domain.ErrDeltaExpired)
}

func TestDecodeCursor_FutureVersionIsExpired(t *testing.T) {
	future := &Cursor{Version: CursorVersion + 1, StartPageToken: "token"}
	_, err := DecodeCursor(future.Encode())
	assert.ErrorIs(t, err, domain.ErrDeltaExpired)
}
