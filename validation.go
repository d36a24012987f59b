package foldercrypt

import (
	"fmt"
	"strings"
)

// ValidateRelativePath checks a manifest entry path: nonempty, relative,
// forward-slash separated, no empty or dot components, and not one of the
// reserved sidecar names
func ValidateRelativePath(p string) error {
	if p == "" {
		return newMetadataError("entry path cannot be empty", nil)
	}
	if strings.HasPrefix(p, "/") {
		return newMetadataError(fmt.Sprintf("entry path is absolute: %s", p), nil)
	}
	if strings.ContainsRune(p, '\\') {
		return newMetadataError(fmt.Sprintf("entry path contains backslash: %s", p), nil)
	}
	if p == SaltFilename || p == ManifestFilename {
		return newMetadataError(fmt.Sprintf("entry path is a reserved name: %s", p), nil)
	}

	for _, component := range strings.Split(p, "/") {
		switch component {
		case "":
			return newMetadataError(fmt.Sprintf("entry path has empty component: %s", p), nil)
		case ".", "..":
			return newMetadataError(fmt.Sprintf("entry path has dot component: %s", p), nil)
		}
	}

	return nil
}

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte) error {
	if key == nil {
		return &ValidationError{Field: "key", Message: "key cannot be nil"}
	}
	if len(key) != KeySize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), KeySize),
		}
	}
	return nil
}

// ValidateSalt checks if a salt has the correct size
func ValidateSalt(salt []byte) error {
	if len(salt) != SaltSize {
		return &ValidationError{
			Field:   "salt",
			Value:   len(salt),
			Message: fmt.Sprintf("invalid salt size: got %d bytes, expected %d bytes", len(salt), SaltSize),
		}
	}
	return nil
}

// ValidateNonce checks if a nonce has the correct size for AES-GCM
func ValidateNonce(nonce []byte) error {
	if len(nonce) != NonceSize {
		return &ValidationError{
			Field:   "nonce",
			Value:   len(nonce),
			Message: fmt.Sprintf("invalid nonce size: got %d bytes, expected %d bytes", len(nonce), NonceSize),
		}
	}
	return nil
}
