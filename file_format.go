package foldercrypt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encrypted file layout (little-endian where multi-byte):
//
// ┌───────────────┬────────────────────┬──────────────────────┐
// │ version: u8=1 │ base_nonce: 12 B   │ plaintext_size: u64  │  header (21 B)
// ├───────────────┴────────────────────┴──────────────────────┤
// │ chunk_len_0: u32 │ ct_0 (chunk_len_0 bytes)               │
// │ chunk_len_1: u32 │ ct_1 (chunk_len_1 bytes)               │
// │ ...                                                       │
// └───────────────────────────────────────────────────────────┘
//
// Each ct_i is an AES-256-GCM seal of a plaintext chunk, so
// chunk_len_i == len(plaintext_i) + 16. End of file terminates the
// record stream; an empty file is a bare header.

const (
	// CurrentVersion is the current encrypted file format version
	CurrentVersion = uint8(1)

	// HeaderSize is the fixed size of the file header:
	// 1 byte (version) + 12 bytes (base nonce) + 8 bytes (plaintext size)
	HeaderSize = 1 + NonceSize + 8
)

// FileHeader is the fixed prefix of every encrypted file
type FileHeader struct {
	Version       uint8  // File format version
	BaseNonce     []byte // Per-file random nonce; chunk nonces derive from it
	PlaintextSize uint64 // Total plaintext size declared at encryption time
}

// NewFileHeader creates a file header for the current format version
func NewFileHeader(baseNonce []byte, plaintextSize uint64) *FileHeader {
	return &FileHeader{
		Version:       CurrentVersion,
		BaseNonce:     baseNonce,
		PlaintextSize: plaintextSize,
	}
}

// WriteTo writes the header to the given writer
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, h.Version); err != nil {
		return 0, fmt.Errorf("failed to write version: %w", err)
	}

	if _, err := buf.Write(h.BaseNonce); err != nil {
		return 0, fmt.Errorf("failed to write base nonce: %w", err)
	}

	if err := binary.Write(buf, binary.LittleEndian, h.PlaintextSize); err != nil {
		return 0, fmt.Errorf("failed to write plaintext size: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom reads and validates the header from the given reader. A short
// header surfaces as a FormatError and an unknown version byte as a
// VersionError.
func (h *FileHeader) ReadFrom(r io.Reader) (int64, error) {
	var totalRead int64

	var version [1]byte
	n, err := io.ReadFull(r, version[:])
	totalRead += int64(n)
	if err != nil {
		return totalRead, newFormatError("", "header too short: missing version byte")
	}
	h.Version = version[0]

	if h.Version != CurrentVersion {
		return totalRead, newVersionError("", h.Version)
	}

	h.BaseNonce = make([]byte, NonceSize)
	n, err = io.ReadFull(r, h.BaseNonce)
	totalRead += int64(n)
	if err != nil {
		return totalRead, newFormatError("", "header too short: truncated base nonce")
	}

	var size [8]byte
	n, err = io.ReadFull(r, size[:])
	totalRead += int64(n)
	if err != nil {
		return totalRead, newFormatError("", "header too short: truncated plaintext size")
	}
	h.PlaintextSize = binary.LittleEndian.Uint64(size[:])

	return totalRead, nil
}

// Validate checks if the header is valid
func (h *FileHeader) Validate() error {
	if h.Version != CurrentVersion {
		return newVersionError("", h.Version)
	}
	if len(h.BaseNonce) != NonceSize {
		return newFormatError("", fmt.Sprintf("base nonce must be %d bytes, got %d", NonceSize, len(h.BaseNonce)))
	}
	return nil
}

// ChunkCount returns the number of chunks needed for a plaintext size
func ChunkCount(plaintextSize uint64) uint64 {
	return (plaintextSize + ChunkSize - 1) / ChunkSize
}

// EncryptedFileSize returns the exact on-disk size of an encrypted file for a
// given plaintext size: the header, one length prefix and one GCM tag per
// chunk, and the plaintext itself. A zero-byte file is a bare 21-byte header.
func EncryptedFileSize(plaintextSize uint64) uint64 {
	chunks := ChunkCount(plaintextSize)
	return HeaderSize + chunks*4 + plaintextSize + chunks*TagSize
}
