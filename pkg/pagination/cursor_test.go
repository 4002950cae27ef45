package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 45, 600*int(time.Millisecond), time.UTC)
	token, err := Encode(From(at, "user-42"))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", c.ID)
	assert.True(t, c.Before().Equal(at), "millisecond precision survives the round trip")
}

func TestEmptyTokenIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.True(t, c.Before().IsZero())
	assert.Empty(t, c.ID)
}

func TestInvalidTokens(t *testing.T) {
	for _, token := range []string{"not base64!!", "%%%", "aGVsbG8="} {
		_, err := Decode(token)
		assert.Error(t, err, "token %q", token)
	}
}
