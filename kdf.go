package foldercrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"unicode"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Default key derivation parameters
const (
	// DefaultPBKDF2Iterations follows the OWASP recommendation for
	// PBKDF2-HMAC-SHA256
	DefaultPBKDF2Iterations = 600_000

	// DefaultArgon2Memory is the Argon2id memory cost in KiB (64 MiB)
	DefaultArgon2Memory = 64 * 1024

	// DefaultArgon2Iterations is the Argon2id time cost
	DefaultArgon2Iterations = 3

	// DefaultArgon2Parallelism is the Argon2id parallelism degree
	DefaultArgon2Parallelism = 4
)

// KeyDeriver derives encryption keys from passwords
type KeyDeriver struct {
	mode         KDFMode
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPBKDF2KeyDeriver creates a key deriver using PBKDF2-HMAC-SHA256.
// Zero-valued parameters take defaults.
func NewPBKDF2KeyDeriver(params PBKDF2Params) *KeyDeriver {
	if params.Iterations == 0 {
		params.Iterations = DefaultPBKDF2Iterations
	}
	if params.KeySize == 0 {
		params.KeySize = KeySize
	}

	return &KeyDeriver{
		mode:         KDFPBKDF2,
		pbkdf2Params: params,
	}
}

// NewArgon2idKeyDeriver creates a key deriver using Argon2id (recommended).
// Zero-valued parameters take defaults.
func NewArgon2idKeyDeriver(params Argon2idParams) *KeyDeriver {
	if params.Memory == 0 {
		params.Memory = DefaultArgon2Memory
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultArgon2Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultArgon2Parallelism
	}
	if params.KeySize == 0 {
		params.KeySize = KeySize
	}

	return &KeyDeriver{
		mode:         KDFArgon2id,
		argon2Params: params,
	}
}

// Mode returns the key derivation mode
func (kd *KeyDeriver) Mode() KDFMode {
	return kd.mode
}

// DeriveKey derives a 32-byte encryption key from the password and salt.
// The password must be non-empty and the salt exactly SaltSize bytes.
func (kd *KeyDeriver) DeriveKey(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, newPasswordError("password cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, newFormatError("", fmt.Sprintf("salt must be exactly %d bytes, got %d", SaltSize, len(salt)))
	}

	if kd.mode == KDFArgon2id {
		key := argon2.IDKey(
			[]byte(password),
			salt,
			kd.argon2Params.Iterations,
			kd.argon2Params.Memory,
			kd.argon2Params.Parallelism,
			uint32(kd.argon2Params.KeySize),
		)
		return key, nil
	}

	key := pbkdf2.Key(
		[]byte(password),
		salt,
		kd.pbkdf2Params.Iterations,
		kd.pbkdf2Params.KeySize,
		sha256.New,
	)
	return key, nil
}

// GenerateSalt generates a new 32-byte random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// ScoreStrength classifies a password against the strength policy. Passwords
// shorter than 8 characters are rejected. Passwords of at least 12 characters
// mixing three of {upper, lower, digit, other} classify as strong.
func ScoreStrength(password string) (bool, StrengthTier) {
	runes := []rune(password)
	if len(runes) < 8 {
		return false, StrengthVeryWeak
	}
	if len(runes) < 12 {
		return true, StrengthWeak
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	score := 0
	for _, has := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if has {
			score++
		}
	}

	switch {
	case score >= 3:
		return true, StrengthStrong
	case score >= 2:
		return true, StrengthModerate
	default:
		return true, StrengthWeak
	}
}

// Zeroize overwrites key material in place. Best-effort hygiene; not required
// for correctness.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
