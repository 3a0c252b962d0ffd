package backup

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := deriveKey("mypassphrase", salt)
	key2 := deriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
}

func TestDeriveKeyDifferentPassphrases(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := deriveKey("password1", salt)
	key2 := deriveKey("password2", salt)

	if bytes.Equal(key1, key2) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	original := []byte(`{"pantry":[{"name":"Latte","quantity":1}]}`)

	sealed, err := Encrypt(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if bytes.Contains(sealed, []byte("Latte")) {
		t.Error("ciphertext leaks plaintext content")
	}
	if len(sealed) < saltSize+nonceSize {
		t.Fatalf("sealed length = %d, too small", len(sealed))
	}

	plaintext, err := Decrypt(sealed, "test-passphrase-123")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(original, plaintext) {
		t.Error("decrypted content should match original")
	}
}

func TestEncryptFreshSaltPerSnapshot(t *testing.T) {
	sealed1, err := Encrypt([]byte("same content"), "password")
	if err != nil {
		t.Fatalf("encrypt 1: %v", err)
	}
	sealed2, err := Encrypt([]byte("same content"), "password")
	if err != nil {
		t.Fatalf("encrypt 2: %v", err)
	}

	if bytes.Equal(sealed1[:saltSize], sealed2[:saltSize]) {
		t.Error("two snapshots should use different salts")
	}
	if bytes.Equal(sealed1, sealed2) {
		t.Error("identical plaintext should not produce identical ciphertext")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt([]byte("secret data"), "correct-password")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := Decrypt(sealed, "wrong-password"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	sealed, err := Encrypt([]byte("secret data"), "password")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	sealed[saltSize+nonceSize+1] ^= 0xFF

	if _, err := Decrypt(sealed, "password"); err == nil {
		t.Fatal("expected error with tampered ciphertext")
	}
}

func TestDecryptTooSmall(t *testing.T) {
	if _, err := Decrypt([]byte("too short"), "password"); err == nil {
		t.Fatal("expected error with input too small")
	}
}
