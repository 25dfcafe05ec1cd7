package token_test

import (
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwave/profiler/internal/token"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := token.New(testKey(t))

	tok, err := codec.Issue("profile-123", nil, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)

	assert.Equal(t, "profile-123", claims.Subject)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Expiry, 5*time.Second)
}

func TestIssueVerify_ExtraClaims(t *testing.T) {
	t.Parallel()

	codec := token.New(testKey(t))

	tok, err := codec.Issue("p1", map[string]any{"role": "parent"}, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "parent", claims.Extra["role"])
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := token.New(testKey(t))

	tok, err := codec.Issue("p1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(tok)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := token.New(testKey(t))

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, token.ErrTokenInvalid, "input %q", raw)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	t.Parallel()

	issuer := token.New(testKey(t))
	verifier := token.New(testKey(t))

	tok, err := issuer.Issue("p1", nil, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestLoadOrGenerateKey_PersistsAcrossLoads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "signing.pem")

	first, err := token.LoadOrGenerateKey(path)
	require.NoError(t, err)

	second, err := token.LoadOrGenerateKey(path)
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "reloaded key should match the generated one")
}

func TestLoadOrGenerateKey_TokensSurviveReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "signing.pem")

	key, err := token.LoadOrGenerateKey(path)
	require.NoError(t, err)

	tok, err := token.New(key).Issue("p1", nil, time.Hour)
	require.NoError(t, err)

	reloaded, err := token.LoadOrGenerateKey(path)
	require.NoError(t, err)

	claims, err := token.New(reloaded).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.Subject)
}
