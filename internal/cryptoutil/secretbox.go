package cryptoutil

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// SecretBoxKeySize is the ChaCha20-Poly1305 key size in bytes.
	SecretBoxKeySize = chacha20poly1305.KeySize
	// SecretBoxNonceSize is the ChaCha20-Poly1305 nonce size in bytes.
	SecretBoxNonceSize = chacha20poly1305.NonceSize

	selfTestPlaintext = "jqopenclaw-self-test"
)

var (
	errInvalidKeySize   = errors.New("cryptoutil: invalid secretbox key size")
	errInvalidNonceSize = errors.New("cryptoutil: invalid secretbox nonce size")
)

// GenerateSecretBoxKey returns a fresh random 32-byte ChaCha20-Poly1305 key.
func GenerateSecretBoxKey() ([]byte, error) {
	key := make([]byte, SecretBoxKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptoutil: generate secretbox key: %w", err)
	}
	return key, nil
}

// SecretBoxEncrypt seals plaintext under key with a fresh random nonce,
// returning the nonce and the ciphertext with the 16-byte Poly1305 tag
// appended.
func SecretBoxEncrypt(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	if len(key) != SecretBoxKeySize {
		return nil, nil, errInvalidKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptoutil: init secretbox cipher: %w", err)
	}
	nonce = make([]byte, SecretBoxNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("cryptoutil: generate secretbox nonce: %w", err)
	}
	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// SecretBoxDecrypt opens a ciphertext produced by SecretBoxEncrypt. It fails
// on wrong key/nonce sizes, short ciphertext, or a tag mismatch (including
// any tampering of ciphertext, tag, or nonce).
func SecretBoxDecrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(key) != SecretBoxKeySize {
		return nil, errInvalidKeySize
	}
	if len(nonce) != SecretBoxNonceSize {
		return nil, errInvalidNonceSize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: init secretbox cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: secretbox decrypt: %w", err)
	}
	return plaintext, nil
}

// SecretBoxSelfTest encrypts and decrypts a fixed literal, asserting
// round-trip equality. It is run once at startup; failure is fatal.
func SecretBoxSelfTest() error {
	key, err := GenerateSecretBoxKey()
	if err != nil {
		return err
	}
	plain := []byte(selfTestPlaintext)
	nonce, ciphertext, err := SecretBoxEncrypt(key, plain)
	if err != nil {
		return fmt.Errorf("cryptoutil: secretbox self-test encrypt: %w", err)
	}
	decoded, err := SecretBoxDecrypt(key, nonce, ciphertext)
	if err != nil {
		return fmt.Errorf("cryptoutil: secretbox self-test decrypt: %w", err)
	}
	if string(decoded) != selfTestPlaintext {
		return errors.New("cryptoutil: secretbox self-test round-trip mismatch")
	}
	return nil
}
