// Package crypto implements the cryptographic primitives behind Oracle's
// O5LOGON authentication handshake: AES-CBC session key exchange, the
// PBKDF2/SHA verifier derivations, and the hash functions used to combine
// them.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const blockSize = aes.BlockSize // 16

// EncryptCBC encrypts plaintext under key using AES-CBC with Oracle's
// all-zero IV. Padding is always added, even when len(plaintext) is already
// a multiple of the block size (Oracle appends a full extra block in that
// case). useZeroPadding selects all-zero pad bytes instead of PKCS7-style
// pad-length bytes, matching the two padding conventions the wire protocol
// uses in different parts of the handshake.
func EncryptCBC(key, plaintext []byte, useZeroPadding bool) ([]byte, error) {
	block, err := newCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pad(plaintext, useZeroPadding)

	iv := make([]byte, blockSize)
	mode := cipher.NewCBCEncrypter(block, iv)
	out := make([]byte, len(padded))
	mode.CryptBlocks(out, padded)
	return out, nil
}

// DecryptCBC decrypts ciphertext under key using AES-CBC with Oracle's
// all-zero IV. The result still carries whatever padding the sender added;
// callers that know the expected plaintext length trim it themselves.
func DecryptCBC(key, ciphertext []byte) ([]byte, error) {
	block, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("crypto: ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}

	iv := make([]byte, blockSize)
	mode := cipher.NewCBCDecrypter(block, iv)
	out := make([]byte, len(ciphertext))
	mode.CryptBlocks(out, ciphertext)
	return out, nil
}

func newCipher(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 32, 24:
		return aes.NewCipher(key)
	default:
		return nil, fmt.Errorf("crypto: invalid AES key length %d (want 24 or 32)", len(key))
	}
}

func pad(plaintext []byte, useZeroPadding bool) []byte {
	n := blockSize - len(plaintext)%blockSize
	padded := make([]byte, len(plaintext)+n)
	copy(padded, plaintext)
	if !useZeroPadding {
		for i := len(plaintext); i < len(padded); i++ {
			padded[i] = byte(n)
		}
	}
	return padded
}

// DeriveKeyPBKDF2 derives a key of the given length from password and salt
// using PBKDF2-HMAC-SHA512, as Oracle's 12c verifier does for both the
// password key and the combo key.
func DeriveKeyPBKDF2(password, salt []byte, iterations, length int) []byte {
	return pbkdf2.Key(password, salt, iterations, length, sha512.New)
}

// SHA1 returns the SHA-1 digest of data.
func SHA1(data []byte) [sha1.Size]byte {
	return sha1.Sum(data)
}

// SHA512 returns the SHA-512 digest of data.
func SHA512(data []byte) [sha512.Size]byte {
	return sha512.Sum512(data)
}

// MD5 returns the MD5 digest of data.
func MD5(data []byte) [md5.Size]byte {
	return md5.Sum(data)
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("crypto: random bytes: %w", err)
	}
	return b, nil
}

// HexUpper returns the uppercase hex encoding of b, matching the casing
// Oracle's O5LOGON auth parameters use on the wire.
func HexUpper(b []byte) string {
	return fmt.Sprintf("%X", b)
}

// HexDecode decodes a hex string into bytes.
func HexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
