package crypto

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := make([]byte, 32)
	plaintext := []byte("Hello, Oracle!")

	encrypted, err := EncryptCBC(key, plaintext, false)
	if err != nil {
		t.Fatalf("EncryptCBC: %v", err)
	}
	decrypted, err := DecryptCBC(key, encrypted)
	if err != nil {
		t.Fatalf("DecryptCBC: %v", err)
	}

	if !bytes.HasPrefix(decrypted, plaintext) {
		t.Fatalf("decrypted %x does not start with plaintext %x", decrypted, plaintext)
	}
}

func TestEncryptDecryptRoundtripAES192(t *testing.T) {
	key := make([]byte, 24)
	plaintext := []byte("exactly16bytes!!")

	encrypted, err := EncryptCBC(key, plaintext, true)
	if err != nil {
		t.Fatalf("EncryptCBC: %v", err)
	}
	decrypted, err := DecryptCBC(key, encrypted)
	if err != nil {
		t.Fatalf("DecryptCBC: %v", err)
	}
	if !bytes.HasPrefix(decrypted, plaintext) {
		t.Fatalf("decrypted %x does not start with plaintext %x", decrypted, plaintext)
	}
}

func TestEncryptInvalidKeyLength(t *testing.T) {
	if _, err := EncryptCBC(make([]byte, 10), []byte("x"), false); err == nil {
		t.Fatal("expected error for invalid key length")
	}
}

func TestHexConversion(t *testing.T) {
	b := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	hex := HexUpper(b)
	if hex != "DEADBEEF" {
		t.Fatalf("HexUpper = %q, want DEADBEEF", hex)
	}

	back, err := HexDecode(hex)
	if err != nil {
		t.Fatalf("HexDecode: %v", err)
	}
	if !bytes.Equal(back, b) {
		t.Fatalf("HexDecode(%q) = %x, want %x", hex, back, b)
	}
}

func TestDeriveKeyPBKDF2Deterministic(t *testing.T) {
	password := []byte("secret")
	salt := []byte("saltsaltsaltsalt")

	a := DeriveKeyPBKDF2(password, salt, 1000, 32)
	b := DeriveKeyPBKDF2(password, salt, 1000, 32)
	if !bytes.Equal(a, b) {
		t.Fatal("DeriveKeyPBKDF2 is not deterministic for identical inputs")
	}
	if len(a) != 32 {
		t.Fatalf("DeriveKeyPBKDF2 length = %d, want 32", len(a))
	}
}
