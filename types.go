package foldercrypt

// KDFMode selects the password-based key derivation function
type KDFMode uint8

const (
	// KDFPBKDF2 uses PBKDF2-HMAC-SHA256
	KDFPBKDF2 KDFMode = iota
	// KDFArgon2id uses the memory-hard Argon2id function (recommended)
	KDFArgon2id
)

// String returns the string representation of the KDF mode
func (m KDFMode) String() string {
	switch m {
	case KDFPBKDF2:
		return "pbkdf2-hmac-sha256"
	case KDFArgon2id:
		return "argon2id"
	default:
		return "unknown"
	}
}

// StrengthTier classifies password strength
type StrengthTier uint8

const (
	// StrengthVeryWeak passwords are rejected when strength checking is enabled
	StrengthVeryWeak StrengthTier = iota
	// StrengthWeak passwords are accepted but discouraged
	StrengthWeak
	// StrengthModerate passwords mix at least two character classes
	StrengthModerate
	// StrengthStrong passwords are at least 12 characters with three classes
	StrengthStrong
)

// String returns the string representation of the strength tier
func (t StrengthTier) String() string {
	switch t {
	case StrengthVeryWeak:
		return "very-weak"
	case StrengthWeak:
		return "weak"
	case StrengthModerate:
		return "moderate"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

const (
	// KeySize is the AES-256 key size in bytes
	KeySize = 32

	// SaltSize is the key derivation salt size in bytes
	SaltSize = 32

	// NonceSize is the AES-GCM nonce size in bytes
	NonceSize = 12

	// TagSize is the AES-GCM authentication tag size in bytes
	TagSize = 16

	// ChunkSize is the plaintext chunk size for streaming encryption (64 KB)
	ChunkSize = 64 * 1024

	// MaxChunkCiphertext is the largest valid chunk record payload
	MaxChunkCiphertext = ChunkSize + TagSize
)

const (
	// SaltFilename is the salt sidecar file inside an encrypted directory
	SaltFilename = ".salt"

	// ManifestFilename is the encrypted manifest file inside an encrypted directory
	ManifestFilename = ".folder_crypto_metadata.enc"

	// EncryptedExtension is appended to every encrypted file's relative path
	EncryptedExtension = ".encrypted"
)

// PBKDF2Params contains parameters for PBKDF2-HMAC-SHA256 key derivation
type PBKDF2Params struct {
	Iterations int // Number of iterations (default 600,000)
	KeySize    int // Derived key size in bytes (default 32 for AES-256)
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (default 64*1024 for 64 MiB)
	Iterations  uint32 // Number of passes (time parameter, default 3)
	Parallelism uint8  // Degree of parallelism (default 4)
	KeySize     int    // Derived key size in bytes (default 32 for AES-256)
}

// ProgressFunc is invoked before each tree entry is processed, with the
// entry's relative path, the 1-based position, and the total entry count
type ProgressFunc func(relativePath string, completed, total int)

// Options configures an encrypt or decrypt operation
type Options struct {
	// KDF selects the key derivation function. The choice is not recorded
	// on disk; decryption must use the same mode as encryption.
	KDF KDFMode

	// PBKDF2 parameters; zero values take defaults
	PBKDF2 PBKDF2Params

	// Argon2 parameters; zero values take defaults
	Argon2 Argon2idParams

	// VerifyStrength gates encryption on the password strength policy.
	// Decryption never checks strength.
	VerifyStrength bool

	// Progress is an optional per-entry observer
	Progress ProgressFunc
}

// Validate checks if the options are valid
func (o *Options) Validate() error {
	if o == nil {
		return &ValidationError{Field: "options", Message: "options cannot be nil"}
	}
	if o.KDF != KDFPBKDF2 && o.KDF != KDFArgon2id {
		return &ValidationError{Field: "kdf", Value: o.KDF, Message: "unsupported KDF mode"}
	}
	return nil
}
