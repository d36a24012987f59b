package foldercrypt

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ManifestVersion is the current manifest schema version
const ManifestVersion = 1

// manifestAD is the associated data binding the sealed manifest blob
var manifestAD = []byte("metadata")

// FileEntry records one tree entry in the manifest
type FileEntry struct {
	// RelativePath is the entry's path below the tree root, UTF-8 with
	// forward-slash separators regardless of host OS
	RelativePath string `json:"relative_path"`

	// OriginalSize is the plaintext size in bytes; 0 for directories
	OriginalSize uint64 `json:"original_size"`

	// EncryptedSize is the on-disk ciphertext size; advisory only
	EncryptedSize uint64 `json:"encrypted_size"`

	// IsDirectory marks directory entries
	IsDirectory bool `json:"is_directory"`

	// Permissions holds the POSIX permission bits, if captured
	Permissions *uint32 `json:"permissions,omitempty"`
}

// Manifest is the ordered inventory of a tree's structural metadata:
// directories first, then files, each group sorted by path. The order lets a
// single forward pass recreate parent directories before their children.
type Manifest struct {
	Version int         `json:"version"`
	Files   []FileEntry `json:"files"`
}

// NewManifest creates an empty manifest at the current schema version
func NewManifest() *Manifest {
	return &Manifest{Version: ManifestVersion}
}

// Seal serializes the manifest to its canonical JSON form and encrypts it as
// a single AES-256-GCM blob: 12-byte random nonce followed by ciphertext and
// tag, with associated data "metadata".
func (m *Manifest) Seal(c *Cipher) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}

	sealed := c.Seal(nonce, data, manifestAD)

	blob := make([]byte, 0, len(nonce)+len(sealed))
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return blob, nil
}

// OpenManifest decrypts and validates a sealed manifest blob. An AEAD failure
// surfaces as AuthError; a blob that decrypts but violates the schema as
// MetadataError.
func OpenManifest(c *Cipher, blob []byte) (*Manifest, error) {
	if len(blob) < NonceSize+TagSize {
		return nil, newFormatError(ManifestFilename, "metadata blob too short")
	}

	plaintext, err := c.Open(blob[:NonceSize], blob[NonceSize:], manifestAD)
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	if err := json.Unmarshal(plaintext, m); err != nil {
		return nil, newMetadataError("failed to parse manifest", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate enforces the manifest schema invariants: version 1, well-formed
// unique relative paths, directories-first lexicographic ordering, and zero
// declared size for directories.
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return newMetadataError(fmt.Sprintf("unsupported manifest version: %d", m.Version), nil)
	}

	seen := make(map[string]struct{}, len(m.Files))
	filesStarted := false
	prevDir, prevFile := "", ""

	for _, entry := range m.Files {
		if err := ValidateRelativePath(entry.RelativePath); err != nil {
			return err
		}

		if _, dup := seen[entry.RelativePath]; dup {
			return newMetadataError(fmt.Sprintf("duplicate entry: %s", entry.RelativePath), nil)
		}
		seen[entry.RelativePath] = struct{}{}

		if entry.IsDirectory {
			if filesStarted {
				return newMetadataError(fmt.Sprintf("directory entry %s after file entries", entry.RelativePath), nil)
			}
			if entry.OriginalSize != 0 {
				return newMetadataError(fmt.Sprintf("directory entry %s has nonzero size", entry.RelativePath), nil)
			}
			if entry.RelativePath < prevDir {
				return newMetadataError(fmt.Sprintf("directory entries out of order at %s", entry.RelativePath), nil)
			}
			prevDir = entry.RelativePath
		} else {
			filesStarted = true
			if entry.RelativePath < prevFile {
				return newMetadataError(fmt.Sprintf("file entries out of order at %s", entry.RelativePath), nil)
			}
			prevFile = entry.RelativePath
		}
	}

	return nil
}

// Sort puts the entries into canonical order: directories first, then files,
// each group sorted by path
func (m *Manifest) Sort() {
	sort.SliceStable(m.Files, func(i, j int) bool {
		a, b := m.Files[i], m.Files[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		return a.RelativePath < b.RelativePath
	})
}
