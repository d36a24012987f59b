package foldercrypt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// EncryptStream encrypts a plaintext byte source into the chunked file
// format. The caller supplies the total plaintext size, which is declared in
// the header before any chunk is written; src must yield exactly that many
// bytes for later decryption to succeed. The associated data binds every
// chunk of the stream to its source (for tree files, the relative path).
func (c *Cipher) EncryptStream(dst io.Writer, src io.Reader, plaintextSize uint64, ad []byte) error {
	baseNonce, err := GenerateNonce()
	if err != nil {
		return err
	}

	header := NewFileHeader(baseNonce, plaintextSize)
	if _, err := header.WriteTo(dst); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	buf := make([]byte, ChunkSize)
	var index uint64

	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			nonce := deriveChunkNonce(baseNonce, index)
			sealed := c.Seal(nonce, buf[:n], chunkAD(ad, index))

			var prefix [4]byte
			binary.LittleEndian.PutUint32(prefix[:], uint32(len(sealed)))
			if _, werr := dst.Write(prefix[:]); werr != nil {
				return fmt.Errorf("failed to write chunk length: %w", werr)
			}
			if _, werr := dst.Write(sealed); werr != nil {
				return fmt.Errorf("failed to write chunk: %w", werr)
			}

			index++
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read plaintext: %w", err)
		}
	}
}

// DecryptStream decrypts a chunked ciphertext stream, writing the recovered
// plaintext to dst and returning the number of plaintext bytes written. The
// associated data must match the value used at encryption time. Structural
// violations surface as FormatError, an unknown version as VersionError, and
// any chunk that fails authentication as AuthError.
func (c *Cipher) DecryptStream(dst io.Writer, src io.Reader, ad []byte) (uint64, error) {
	header := &FileHeader{}
	if _, err := header.ReadFrom(src); err != nil {
		return 0, err
	}

	var (
		index uint64
		total uint64
	)

	for {
		var prefix [4]byte
		_, err := io.ReadFull(src, prefix[:])
		if err == io.EOF {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return total, newFormatError("", "truncated chunk length prefix")
		}
		if err != nil {
			return total, fmt.Errorf("failed to read chunk length: %w", err)
		}

		chunkLen := binary.LittleEndian.Uint32(prefix[:])
		if chunkLen == 0 {
			return total, newFormatError("", "zero-length chunk")
		}
		if chunkLen > MaxChunkCiphertext {
			return total, newFormatError("", fmt.Sprintf("chunk length %d exceeds maximum %d", chunkLen, MaxChunkCiphertext))
		}

		sealed := make([]byte, chunkLen)
		if _, err := io.ReadFull(src, sealed); err != nil {
			return total, newFormatError("", "unexpected end of file inside chunk")
		}

		nonce := deriveChunkNonce(header.BaseNonce, index)
		plaintext, err := c.Open(nonce, sealed, chunkAD(ad, index))
		if err != nil {
			return total, err
		}

		if _, err := dst.Write(plaintext); err != nil {
			return total, fmt.Errorf("failed to write plaintext: %w", err)
		}

		total += uint64(len(plaintext))
		index++
	}

	if total != header.PlaintextSize {
		return total, newFormatError("", fmt.Sprintf("plaintext size mismatch: header declares %d, got %d", header.PlaintextSize, total))
	}

	return total, nil
}
