// Package fieldcrypt provides per-organization field-level encryption. Keys are
// derived from a single master secret, so no per-org key storage is required
// and compromise of one derived key does not expose another organization.
package fieldcrypt

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"

	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

const (
	kdfIterations = 100000
	keyLength     = 32
	saltLength    = 16
	keyCacheSize  = 1024
)

type Gateway struct {
	masterKey string
	keys      *lru.Cache[string, []byte]
}

// New builds a gateway from the configured master key. An empty master key
// generates an ephemeral one and logs it; data encrypted under an ephemeral
// key is unreadable after restart, so this is only acceptable for local runs.
func New(ctx context.Context, masterKey string) (*Gateway, error) {
	if masterKey == "" {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate ephemeral master key: %w", err)
		}
		masterKey = hex.EncodeToString(raw)
		logutil.GetLogger(ctx).Warn("no encryption key configured, generated ephemeral master key; "+
			"encrypted fields will be unreadable after restart",
			zap.String("encryption_key", masterKey))
	}
	keys, err := lru.New[string, []byte](keyCacheSize)
	if err != nil {
		return nil, err
	}
	return &Gateway{masterKey: masterKey, keys: keys}, nil
}

// DeriveKey returns the organization key, deterministic for a fixed master
// key. The salt is the org id truncated/right-padded to 16 bytes, matching the
// layout existing ciphertexts were produced under.
func (g *Gateway) DeriveKey(orgID string) []byte {
	if key, ok := g.keys.Get(orgID); ok {
		return key
	}
	password := []byte(g.masterKey + ":" + orgID)
	salt := make([]byte, saltLength)
	copy(salt, orgID)
	for i := len(orgID); i < saltLength; i++ {
		salt[i] = '0'
	}
	key := pbkdf2.Key(password, salt, kdfIterations, keyLength, sha256.New)
	g.keys.Add(orgID, key)
	return key
}

func (g *Gateway) Encrypt(plaintext, orgID string) (string, error) {
	block, err := aes.NewCipher(g.DeriveKey(orgID))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

func (g *Gateway) Decrypt(ciphertext, orgID string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", appErr.ErrDecryption
	}
	block, err := aes.NewCipher(g.DeriveKey(orgID))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", appErr.ErrDecryption
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", appErr.ErrDecryption
	}
	return string(plaintext), nil
}
