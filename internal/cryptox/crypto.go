// Package cryptox seals small values persisted on disk (session credentials)
// with AES-256-GCM under a key derived from a per-install secret.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of keys returned by DeriveKey (AES-256).
const KeySize = 32

// DeriveKey expands secret into a KeySize key bound to info using HKDF-SHA256.
// Different info strings yield independent keys from the same secret.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with AES-GCM and returns nonce||ciphertext.
// A fresh random nonce is used for every call. The optional aad is
// authenticated but not encrypted; callers pass the storage key so a value
// cannot be moved under a different key unnoticed.
func Seal(key, plaintext, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. It returns common.ErrSealedValueCorrupted when the
// input is too short or fails authentication.
func Open(key, sealed, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns+aesgcm.Overhead() {
		return nil, common.ErrSealedValueCorrupted
	}

	plaintext, err := aesgcm.Open(nil, sealed[:ns], sealed[ns:], aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSealedValueCorrupted, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
