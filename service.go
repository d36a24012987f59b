package foldercrypt

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service orchestrates folder encryption and decryption end-to-end: key
// derivation, tree processing, and the salt sidecar.
type Service struct {
	fs   absfs.FileSystem
	opts Options
}

// NewService creates a service over the given filesystem
func NewService(fs absfs.FileSystem, opts Options) (*Service, error) {
	if fs == nil {
		return nil, &ValidationError{Field: "fs", Message: "filesystem cannot be nil"}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Service{fs: fs, opts: opts}, nil
}

// keyDeriver builds the key deriver for the configured KDF mode
func (s *Service) keyDeriver() *KeyDeriver {
	if s.opts.KDF == KDFArgon2id {
		return NewArgon2idKeyDeriver(s.opts.Argon2)
	}
	return NewPBKDF2KeyDeriver(s.opts.PBKDF2)
}

// EncryptFolder encrypts the tree below input into output with a password.
// The salt sidecar is written only after the tree and manifest have been
// emitted; on failure the output directory may contain partial data.
func (s *Service) EncryptFolder(input, output, password string) error {
	opID := uuid.New().String()
	log := logrus.WithFields(logrus.Fields{
		"operation": "encrypt",
		"op_id":     opID,
		"input":     input,
		"output":    output,
	})
	log.Info("Starting folder encryption")

	if s.opts.VerifyStrength {
		ok, tier := ScoreStrength(password)
		if !ok {
			return newPasswordError("password must be at least 8 characters long")
		}
		log.WithField("strength", tier.String()).Debug("Password strength accepted")
	}

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}

	key, err := s.keyDeriver().DeriveKey(password, salt)
	if err != nil {
		return err
	}
	defer Zeroize(key)

	cipher, err := NewCipher(key)
	if err != nil {
		return err
	}

	engine := NewEngine(s.fs, cipher, s.opts.Progress)
	manifest, err := engine.EncryptTree(input, output)
	if err != nil {
		log.WithError(err).Error("Folder encryption failed")
		return err
	}

	if err := s.writeSalt(output, salt); err != nil {
		log.WithError(err).Error("Failed to write salt")
		return err
	}

	log.WithFields(logrus.Fields{
		"entries": len(manifest.Files),
		"kdf":     s.opts.KDF.String(),
	}).Info("Folder encryption completed")
	return nil
}

// DecryptFolder decrypts the encrypted tree below input into output with a
// password. The salt sidecar is read first; a missing or malformed salt means
// the input is not a compatible encrypted directory.
func (s *Service) DecryptFolder(input, output, password string) error {
	opID := uuid.New().String()
	log := logrus.WithFields(logrus.Fields{
		"operation": "decrypt",
		"op_id":     opID,
		"input":     input,
		"output":    output,
	})
	log.Info("Starting folder decryption")

	salt, err := s.readSalt(input)
	if err != nil {
		return err
	}

	key, err := s.keyDeriver().DeriveKey(password, salt)
	if err != nil {
		return err
	}
	defer Zeroize(key)

	cipher, err := NewCipher(key)
	if err != nil {
		return err
	}

	engine := NewEngine(s.fs, cipher, s.opts.Progress)
	if err := engine.DecryptTree(input, output); err != nil {
		log.WithError(err).Error("Folder decryption failed")
		return err
	}

	log.Info("Folder decryption completed")
	return nil
}

// writeSalt persists the salt sidecar inside the encrypted directory
func (s *Service) writeSalt(output string, salt []byte) error {
	saltPath := path.Join(output, SaltFilename)
	f, err := s.fs.OpenFile(saltPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return NewIOError("create", saltPath, err)
	}
	if _, err := f.Write(salt); err != nil {
		f.Close()
		return NewIOError("write", saltPath, err)
	}
	if err := f.Close(); err != nil {
		return NewIOError("close", saltPath, err)
	}
	return nil
}

// readSalt loads and validates the salt sidecar
func (s *Service) readSalt(input string) ([]byte, error) {
	saltPath := path.Join(input, SaltFilename)
	f, err := s.fs.Open(saltPath)
	if err != nil {
		if isNotExist(err) {
			return nil, newFormatError(saltPath, "salt file not found: not a compatible encrypted directory")
		}
		return nil, NewIOError("open", saltPath, err)
	}
	salt, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, NewIOError("read", saltPath, err)
	}

	if len(salt) != SaltSize {
		return nil, newFormatError(saltPath, fmt.Sprintf("salt must be exactly %d bytes, got %d", SaltSize, len(salt)))
	}
	return salt, nil
}

// EncryptFolder encrypts a folder on the host filesystem. See
// Service.EncryptFolder.
func EncryptFolder(input, output, password string, opts Options) error {
	svc, err := NewService(NewOSFS(), opts)
	if err != nil {
		return err
	}
	return svc.EncryptFolder(input, output, password)
}

// DecryptFolder decrypts a folder on the host filesystem. See
// Service.DecryptFolder.
func DecryptFolder(input, output, password string, opts Options) error {
	svc, err := NewService(NewOSFS(), opts)
	if err != nil {
		return err
	}
	return svc.DecryptFolder(input, output, password)
}
