package foldercrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Cipher provides AES-256-GCM authenticated encryption for one operation.
// The key is exclusively owned by the cipher instance and is never serialized.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a new AES-256-GCM cipher from a 32-byte key
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("AES-256 requires a %d-byte key, got %d bytes", KeySize, len(key)),
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext with the given nonce and associated data
func (c *Cipher) Seal(nonce, plaintext, ad []byte) []byte {
	return c.aead.Seal(nil, nonce, plaintext, ad)
}

// Open decrypts ciphertext with the given nonce and associated data.
// Any authentication failure surfaces as an AuthError.
func (c *Cipher) Open(nonce, ciphertext, ad []byte) ([]byte, error) {
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, newAuthError("", "wrong password or corrupted data")
	}
	return plaintext, nil
}

// NonceSize returns the nonce size for AES-GCM (12 bytes)
func (c *Cipher) NonceSize() int {
	return c.aead.NonceSize()
}

// Overhead returns the authentication tag size (16 bytes)
func (c *Cipher) Overhead() int {
	return c.aead.Overhead()
}

// GenerateNonce generates a random 12-byte nonce
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// deriveChunkNonce derives the nonce for a chunk by XORing the little-endian
// chunk index into the last 8 bytes of the file's base nonce. The first 4
// bytes are unchanged. Per-file random base nonces make cross-file collisions
// negligible; the XOR gives 2^64 unique nonces within a file.
func deriveChunkNonce(base []byte, index uint64) []byte {
	nonce := make([]byte, NonceSize)
	copy(nonce, base)

	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], index)
	for i := 0; i < 8; i++ {
		nonce[NonceSize-8+i] ^= idx[i]
	}

	return nonce
}

// chunkAD builds a chunk's associated data: the caller's associated data
// followed by the little-endian chunk index. This binds every chunk to both
// its file and its position, so chunks cannot be reordered within a file or
// spliced across files.
func chunkAD(ad []byte, index uint64) []byte {
	out := make([]byte, len(ad)+8)
	copy(out, ad)
	binary.LittleEndian.PutUint64(out[len(ad):], index)
	return out
}
