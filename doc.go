// Package foldercrypt provides password-based authenticated encryption for
// directory trees, transforming a source directory into an opaque ciphertext
// directory from which the original tree can be losslessly recovered.
//
// # Overview
//
// foldercrypt walks a source tree, streams every regular file through an
// authenticated chunked cipher, and records the tree's structural metadata in
// an encrypted manifest. Decryption inverts the process and detects any
// tampering or corruption: if a single ciphertext bit is altered, the
// operation fails.
//
// The engine operates over the absfs.FileSystem abstraction, so the same code
// runs against the real disk or an in-memory filesystem.
//
// # Encrypted Directory Layout
//
// An encrypted directory contains:
//   - .salt: 32 random bytes mixed into key derivation
//   - .folder_crypto_metadata.enc: 12-byte nonce followed by the
//     AES-256-GCM sealed manifest
//   - <rel>.encrypted: one ciphertext file per source file, in the same
//     relative structure
//
// Empty directories leave no filesystem marker; they are carried solely in
// the manifest.
//
// # File Format
//
// Each encrypted file starts with a 21-byte header:
//   - Version (1 byte): currently 1
//   - Base nonce (12 bytes): random per file
//   - Plaintext size (8 bytes, little-endian)
//
// The header is followed by chunk records, each a 4-byte little-endian
// ciphertext length and that many bytes of AES-256-GCM output. Plaintext
// chunks are 64 KiB except possibly the last. Chunk nonces are derived by
// XORing the chunk index into the last 8 bytes of the base nonce, and each
// chunk's associated data binds it to both its file's relative path and its
// position, so chunks cannot be reordered or spliced across files.
//
// # Key Derivation
//
// Keys are derived from a password and a per-tree random salt using either
// PBKDF2-HMAC-SHA256 (600,000 iterations) or Argon2id (64 MiB, 3 passes,
// parallelism 4). The choice is not recorded on disk; decryption must be told
// which mode was used.
//
// # Basic Usage
//
//	opts := foldercrypt.Options{
//	    KDF:            foldercrypt.KDFArgon2id,
//	    VerifyStrength: true,
//	}
//
//	if err := foldercrypt.EncryptFolder("/home/me/photos", "/vault/photos", password, opts); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := foldercrypt.DecryptFolder("/vault/photos", "/home/me/restored", password, opts); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Semantics
//
// An AEAD authentication failure anywhere in the tree or manifest surfaces as
// an AuthError: a wrong password and a tampered ciphertext are
// indistinguishable and both are hard failures. Header and schema violations
// surface as FormatError, VersionError (unknown format version byte) or
// MetadataError and indicate input that was not produced by a compatible
// implementation or was truncated outside the authenticated regions.
// Filesystem failures surface as IOError with the offending path.
package foldercrypt
