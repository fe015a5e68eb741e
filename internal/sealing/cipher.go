// Package sealing implements the document integrity primitives: sealing
// plaintext into an IV-prefixed AES-256-CBC blob and fingerprinting the
// sealed bytes with SHA-256.
package sealing

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
)

// KeySize is the required key length (AES-256 = 256 bits = 32 bytes).
const KeySize = 32

// Seal encrypts plaintext under key and returns IV || AES-256-CBC(ciphertext).
// The plaintext is PKCS#7-padded to the block size and the 16-byte IV is drawn
// fresh from crypto/rand on every call; IV reuse would be a critical defect.
func Seal(plaintext, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", domain.ErrKeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	padded := pad(plaintext, aes.BlockSize)

	sealed := make([]byte, aes.BlockSize+len(padded))
	iv := sealed[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generating IV: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(sealed[aes.BlockSize:], padded)
	return sealed, nil
}

// Unseal splits the leading 16-byte IV off sealed, decrypts the remainder and
// removes the PKCS#7 padding. A wrong key, corrupted data or truncated input
// all surface as domain.ErrPadding; callers must not be able to tell them apart.
func Unseal(sealed, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", domain.ErrKeyLength, len(key))
	}
	// At least one full padded block must follow the IV.
	if len(sealed) < 2*aes.BlockSize || len(sealed)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrInvalidCiphertext, len(sealed))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	iv := sealed[:aes.BlockSize]
	padded := make([]byte, len(sealed)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, sealed[aes.BlockSize:])

	return unpad(padded, aes.BlockSize)
}

// pad appends PKCS#7 padding so that len(result) is a multiple of blockSize.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad strips PKCS#7 padding, rejecting anything malformed.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, domain.ErrPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, domain.ErrPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, domain.ErrPadding
		}
	}
	return data[:len(data)-n], nil
}
