package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("org-a", "user-1", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "org-a", claims.OrgID)
	require.Equal(t, "user-1", claims.UserID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("org-a", "user-1", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("other-secret"))
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("org-a", "user-1", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.Error(t, err)
}

func TestParseTokenMissingOrg(t *testing.T) {
	token, err := GenerateToken("", "user-1", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.Error(t, err)
}
