package cryptoutil

import "testing"

func TestSecretBoxRoundTrip(t *testing.T) {
	key, err := GenerateSecretBoxKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	nonce, ciphertext, err := SecretBoxEncrypt(key, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if len(nonce) != SecretBoxNonceSize {
		t.Fatalf("nonce size = %d, want %d", len(nonce), SecretBoxNonceSize)
	}
	decrypted, err := SecretBoxDecrypt(key, nonce, ciphertext)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", decrypted, plaintext)
	}
}

func TestSecretBoxDecryptDetectsTampering(t *testing.T) {
	key, err := GenerateSecretBoxKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	nonce, ciphertext, err := SecretBoxEncrypt(key, []byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tamperedCiphertext := append([]byte(nil), ciphertext...)
	tamperedCiphertext[0] ^= 0xff
	if _, err := SecretBoxDecrypt(key, nonce, tamperedCiphertext); err == nil {
		t.Fatalf("expected error decrypting tampered ciphertext")
	}

	tamperedNonce := append([]byte(nil), nonce...)
	tamperedNonce[0] ^= 0xff
	if _, err := SecretBoxDecrypt(key, tamperedNonce, ciphertext); err == nil {
		t.Fatalf("expected error decrypting with tampered nonce")
	}

	wrongKey, err := GenerateSecretBoxKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if _, err := SecretBoxDecrypt(wrongKey, nonce, ciphertext); err == nil {
		t.Fatalf("expected error decrypting with wrong key")
	}
}

func TestSecretBoxRejectsBadSizes(t *testing.T) {
	if _, _, err := SecretBoxEncrypt(make([]byte, 10), []byte("x")); err != errInvalidKeySize {
		t.Fatalf("expected errInvalidKeySize, got %v", err)
	}
	key, err := GenerateSecretBoxKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if _, err := SecretBoxDecrypt(key, make([]byte, 4), []byte("ct")); err != errInvalidNonceSize {
		t.Fatalf("expected errInvalidNonceSize, got %v", err)
	}
}

func TestSecretBoxSelfTest(t *testing.T) {
	if err := SecretBoxSelfTest(); err != nil {
		t.Fatalf("self test: %v", err)
	}
}
