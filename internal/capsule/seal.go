// Package capsule seals and opens time-capsule bodies with a passphrase.
// scrypt stretches the passphrase, chacha20poly1305 authenticates the body,
// and salt+nonce travel with the ciphertext so a sealed capsule is one
// self-contained blob.
package capsule

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const saltLen = 16

var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted capsule")

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
}

// Seal encrypts plain with a key derived from the passphrase.
// Layout: salt (16) | nonce (12) | ciphertext.
func Seal(plain []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("new aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}

	out := make([]byte, 0, saltLen+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, nil), nil
}

// Open reverses Seal. Returns ErrWrongPassphrase when authentication fails.
func Open(sealed []byte, passphrase string) ([]byte, error) {
	if len(sealed) < saltLen+chacha20poly1305.NonceSize {
		return nil, ErrWrongPassphrase
	}
	salt := sealed[:saltLen]
	nonce := sealed[saltLen : saltLen+chacha20poly1305.NonceSize]
	ciphertext := sealed[saltLen+chacha20poly1305.NonceSize:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("new aead: %w", err)
	}

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plain, nil
}
