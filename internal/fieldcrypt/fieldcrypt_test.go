package fieldcrypt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw, err := New(context.Background(), "test-master-key")
	require.NoError(t, err)
	return gw
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	gw := newTestGateway(t)
	inputs := []string{
		"",
		"hello",
		"OAuth2 rollout plan: rotate the signing keys before GA",
		"unicode ✓ and newlines\nare fine",
	}
	for _, plain := range inputs {
		cipher, err := gw.Encrypt(plain, "org-a")
		require.NoError(t, err)
		got, err := gw.Decrypt(cipher, "org-a")
		require.NoError(t, err)
		require.Equal(t, plain, got)
	}
}

func TestDecryptWrongOrgFails(t *testing.T) {
	gw := newTestGateway(t)
	cipher, err := gw.Encrypt("secret design note", "org-a")
	require.NoError(t, err)

	_, err = gw.Decrypt(cipher, "org-b")
	require.ErrorIs(t, err, appErr.ErrDecryption)
}

func TestDecryptCorruptCiphertext(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.Decrypt("not base64 at all!!!", "org-a")
	require.ErrorIs(t, err, appErr.ErrDecryption)

	_, err = gw.Decrypt("AAAA", "org-a")
	require.ErrorIs(t, err, appErr.ErrDecryption)
}

func TestDeriveKeyDeterministicPerOrg(t *testing.T) {
	gw := newTestGateway(t)
	keyA1 := gw.DeriveKey("org-a")
	keyA2 := gw.DeriveKey("org-a")
	keyB := gw.DeriveKey("org-b")
	require.Equal(t, keyA1, keyA2)
	require.NotEqual(t, keyA1, keyB)
	require.Len(t, keyA1, 32)
}

func TestDifferentMasterKeysDiverge(t *testing.T) {
	gw1, err := New(context.Background(), "master-one")
	require.NoError(t, err)
	gw2, err := New(context.Background(), "master-two")
	require.NoError(t, err)

	cipher, err := gw1.Encrypt("payload", "org-a")
	require.NoError(t, err)
	_, err = gw2.Decrypt(cipher, "org-a")
	require.ErrorIs(t, err, appErr.ErrDecryption)
}
