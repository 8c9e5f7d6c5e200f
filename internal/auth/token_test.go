package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret-key", time.Hour)

	token, expiresAt, err := codec.Issue("session-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	sid, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sid)
}

func TestTokenTamperRejected(t *testing.T) {
	codec := NewTokenCodec("secret-key", time.Hour)

	token, _, err := codec.Issue("session-123")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = codec.Parse(tampered)
	assert.Error(t, err)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenCodec("secret-key", time.Hour)
	verifier := NewTokenCodec("other-key", time.Hour)

	token, _, err := issuer.Issue("session-123")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestTokenExpiryRejected(t *testing.T) {
	codec := NewTokenCodec("secret-key", time.Millisecond)

	token, _, err := codec.Issue("session-123")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = codec.Parse(token)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	codec := NewTokenCodec("secret-key", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Parse(input)
		assert.Error(t, err, "input %q must not parse", input)
	}
}
