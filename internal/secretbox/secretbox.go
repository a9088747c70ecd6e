// Package secretbox replaces the base64 placeholder the spec's current
// source uses for OLT password storage with AES-GCM keyed from
// SESSION_SECRET via HKDF (spec §6/§9). The AEAD itself comes from the
// standard library (crypto/aes, crypto/cipher) and only the key
// derivation from golang.org/x/crypto/hkdf; see DESIGN.md for why: no
// ecosystem AEAD wrapper appears anywhere in the retrieval pack.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32 // AES-256

// Box derives a single AES-GCM key from a secret via HKDF-SHA256 and
// uses it to seal/open OLT credential passwords at rest.
type Box struct {
	aead cipher.AEAD
}

// New derives the AEAD key from secret. secret must be at least 32 bytes
// (spec §6: "SESSION_SECRET (≥32 chars)").
func New(secret string) (*Box, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("secretbox: secret must be at least 32 bytes, got %d", len(secret))
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("ma5801-olt-manager/credential-password"))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("secretbox: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: new GCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Seal encrypts plaintext, prefixing the ciphertext with a fresh nonce.
func (b *Box) Seal(plaintext string) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secretbox: nonce: %w", err)
	}
	return b.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Open reverses Seal.
func (b *Box) Open(ciphertext []byte) (string, error) {
	n := b.aead.NonceSize()
	if len(ciphertext) < n {
		return "", fmt.Errorf("secretbox: ciphertext too short")
	}
	nonce, sealed := ciphertext[:n], ciphertext[n:]
	plaintext, err := b.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: open: %w", err)
	}
	return string(plaintext), nil
}
