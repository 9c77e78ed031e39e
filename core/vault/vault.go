package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/gekaluck/couple-moments-sub000/core/errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	masterKeySize = 32
	saltSize      = 16
	nonceSize     = chacha20poly1305.NonceSize
	minBlobSize   = saltSize + nonceSize + chacha20poly1305.Overhead
)

var hkdfInfo = []byte("couple-moments/credential-vault/v1")

// Vault seals provider credentials for storage at rest. Every Seal derives a
// fresh subkey from a random salt via HKDF-SHA256 and encrypts under
// ChaCha20-Poly1305, so two blobs for the same plaintext never match. The
// vault knows nothing about what it protects.
//
// Blob layout: salt (16) | nonce (12) | ciphertext+tag.
type Vault struct {
	masterKey []byte
}

// New builds a Vault from the base64-encoded master key. The key is injected
// here rather than read from the environment so tests can supply
// deterministic keys.
func New(encodedKey string) (*Vault, error) {
	if encodedKey == "" {
		return nil, errors.NewAppError(errors.ErrConfiguration,
			"credential master key is not configured", nil)
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrConfiguration,
			"credential master key is not valid base64", err)
	}
	if len(key) != masterKeySize {
		return nil, errors.NewAppError(errors.ErrConfiguration,
			"credential master key must decode to exactly 32 bytes", nil)
	}
	return &Vault{masterKey: key}, nil
}

func (v *Vault) subkey(salt []byte) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, v.masterKey, salt, hkdfInfo)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal encrypts plaintext into an opaque blob.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate salt", err)
	}

	key, err := v.subkey(salt)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to derive blob key", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to initialize cipher", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate nonce", err)
	}

	blob := make([]byte, 0, minBlobSize+len(plaintext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	return aead.Seal(blob, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal, verifying its authentication tag.
func (v *Vault) Open(blob []byte) ([]byte, error) {
	if len(blob) < minBlobSize {
		return nil, errors.NewAppError(errors.ErrCorruptedCredential,
			"credential blob is too short", nil)
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	ciphertext := blob[saltSize+nonceSize:]

	key, err := v.subkey(salt)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to derive blob key", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to initialize cipher", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCorruptedCredential,
			"credential blob failed authentication", err)
	}
	return plaintext, nil
}
