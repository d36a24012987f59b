package foldercrypt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/absfs/absfs"
	"github.com/sirupsen/logrus"
)

// Engine walks directory trees and drives the chunk cipher per file. It
// operates over the absfs.FileSystem abstraction, so it runs identically
// against the real disk or an in-memory filesystem.
type Engine struct {
	fs       absfs.FileSystem
	cipher   *Cipher
	progress ProgressFunc
}

// NewEngine creates a tree engine for one encrypt-or-decrypt operation
func NewEngine(fs absfs.FileSystem, cipher *Cipher, progress ProgressFunc) *Engine {
	return &Engine{
		fs:       fs,
		cipher:   cipher,
		progress: progress,
	}
}

// treeEntry is one enumerated item below the source root
type treeEntry struct {
	rel  string
	info os.FileInfo
}

// collectEntries enumerates all entries below root, directories first then
// files, each group sorted by relative path. Symlinks and other non-regular
// entries are refused rather than followed.
func (e *Engine) collectEntries(root string) ([]treeEntry, error) {
	var dirs, files []treeEntry

	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		f, err := e.fs.Open(dir)
		if err != nil {
			return NewIOError("open", dir, err)
		}
		infos, err := f.Readdir(-1)
		f.Close()
		if err != nil {
			return NewIOError("readdir", dir, err)
		}

		for _, info := range infos {
			entryRel := info.Name()
			if rel != "" {
				entryRel = path.Join(rel, info.Name())
			}

			if entryRel == SaltFilename || entryRel == ManifestFilename {
				return &ValidationError{
					Field:   "path",
					Value:   entryRel,
					Message: "source tree contains a reserved name",
				}
			}

			switch {
			case info.IsDir():
				dirs = append(dirs, treeEntry{rel: entryRel, info: info})
				if err := walk(path.Join(dir, info.Name()), entryRel); err != nil {
					return err
				}
			case info.Mode().IsRegular():
				files = append(files, treeEntry{rel: entryRel, info: info})
			default:
				return &ValidationError{
					Field:   "path",
					Value:   entryRel,
					Message: "unsupported file type: only regular files and directories can be encrypted",
				}
			}
		}
		return nil
	}

	if err := walk(root, ""); err != nil {
		return nil, err
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].rel < dirs[j].rel })
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	return append(dirs, files...), nil
}

// EncryptTree encrypts every entry below input into output and writes the
// sealed manifest. Directories are carried solely in the manifest; each file
// becomes <output>/<rel>.encrypted.
func (e *Engine) EncryptTree(input, output string) (*Manifest, error) {
	info, err := e.fs.Stat(input)
	if err != nil {
		return nil, NewIOError("stat", input, err)
	}
	if !info.IsDir() {
		return nil, &ValidationError{Field: "input", Value: input, Message: "input path is not a directory"}
	}

	if err := e.fs.MkdirAll(output, 0755); err != nil {
		return nil, NewIOError("mkdir", output, err)
	}

	entries, err := e.collectEntries(input)
	if err != nil {
		return nil, err
	}
	total := len(entries)

	manifest := NewManifest()

	for idx, entry := range entries {
		if e.progress != nil {
			e.progress(entry.rel, idx+1, total)
		}

		perms := uint32(entry.info.Mode().Perm())

		if entry.info.IsDir() {
			manifest.Files = append(manifest.Files, FileEntry{
				RelativePath: entry.rel,
				IsDirectory:  true,
				Permissions:  &perms,
			})
			continue
		}

		logrus.WithFields(logrus.Fields{
			"path": entry.rel,
			"size": entry.info.Size(),
		}).Debug("Encrypting file")

		encryptedSize, err := e.encryptFile(input, output, entry.rel, uint64(entry.info.Size()))
		if err != nil {
			return nil, err
		}

		manifest.Files = append(manifest.Files, FileEntry{
			RelativePath:  entry.rel,
			OriginalSize:  uint64(entry.info.Size()),
			EncryptedSize: encryptedSize,
			IsDirectory:   false,
			Permissions:   &perms,
		})
	}

	if err := e.writeManifest(output, manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}

// encryptFile streams one source file through the chunk cipher, returning
// the resulting ciphertext size
func (e *Engine) encryptFile(input, output, rel string, size uint64) (uint64, error) {
	srcPath := path.Join(input, rel)
	dstPath := path.Join(output, rel+EncryptedExtension)

	src, err := e.fs.Open(srcPath)
	if err != nil {
		return 0, NewIOError("open", srcPath, err)
	}
	defer src.Close()

	if parent := path.Dir(dstPath); parent != "." {
		if err := e.fs.MkdirAll(parent, 0755); err != nil {
			return 0, NewIOError("mkdir", parent, err)
		}
	}

	dst, err := e.fs.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, NewIOError("create", dstPath, err)
	}

	if err := e.cipher.EncryptStream(dst, src, size, []byte(rel)); err != nil {
		dst.Close()
		return 0, fmt.Errorf("failed to encrypt %s: %w", rel, err)
	}

	if err := dst.Close(); err != nil {
		return 0, NewIOError("close", dstPath, err)
	}

	encInfo, err := e.fs.Stat(dstPath)
	if err != nil {
		return 0, NewIOError("stat", dstPath, err)
	}
	return uint64(encInfo.Size()), nil
}

// writeManifest seals and persists the manifest inside the output directory
func (e *Engine) writeManifest(output string, m *Manifest) error {
	blob, err := m.Seal(e.cipher)
	if err != nil {
		return err
	}

	manifestPath := path.Join(output, ManifestFilename)
	f, err := e.fs.OpenFile(manifestPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return NewIOError("create", manifestPath, err)
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		return NewIOError("write", manifestPath, err)
	}
	if err := f.Close(); err != nil {
		return NewIOError("close", manifestPath, err)
	}
	return nil
}

// DecryptTree reads the encrypted manifest below input and reconstructs the
// original tree below output, verifying every file's size and restoring
// permissions best-effort. Ciphertext files not referenced by the manifest
// are ignored; they cannot be authenticated.
func (e *Engine) DecryptTree(input, output string) error {
	manifest, err := e.readManifest(input)
	if err != nil {
		return err
	}

	if err := e.fs.MkdirAll(output, 0755); err != nil {
		return NewIOError("mkdir", output, err)
	}

	total := len(manifest.Files)
	for idx, entry := range manifest.Files {
		if e.progress != nil {
			e.progress(entry.RelativePath, idx+1, total)
		}

		if entry.IsDirectory {
			dirPath := path.Join(output, entry.RelativePath)
			if err := e.fs.MkdirAll(dirPath, 0755); err != nil {
				return NewIOError("mkdir", dirPath, err)
			}
			e.restorePermissions(dirPath, entry.Permissions)
			continue
		}

		if err := e.decryptFile(input, output, entry); err != nil {
			return err
		}
	}

	return nil
}

// readManifest loads and decrypts the manifest file
func (e *Engine) readManifest(input string) (*Manifest, error) {
	manifestPath := path.Join(input, ManifestFilename)
	f, err := e.fs.Open(manifestPath)
	if err != nil {
		if isNotExist(err) {
			return nil, newMetadataError(fmt.Sprintf("metadata file not found: %s", manifestPath), err)
		}
		return nil, NewIOError("open", manifestPath, err)
	}
	blob, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, NewIOError("read", manifestPath, err)
	}

	return OpenManifest(e.cipher, blob)
}

// decryptFile streams one ciphertext file back to plaintext, verifying the
// byte count against the manifest
func (e *Engine) decryptFile(input, output string, entry FileEntry) error {
	srcPath := path.Join(input, entry.RelativePath+EncryptedExtension)
	dstPath := path.Join(output, entry.RelativePath)

	src, err := e.fs.Open(srcPath)
	if err != nil {
		if isNotExist(err) {
			return newFormatError(entry.RelativePath, "encrypted file not found")
		}
		return NewIOError("open", srcPath, err)
	}
	defer src.Close()

	if parent := path.Dir(dstPath); parent != "." {
		if err := e.fs.MkdirAll(parent, 0755); err != nil {
			return NewIOError("mkdir", parent, err)
		}
	}

	dst, err := e.fs.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return NewIOError("create", dstPath, err)
	}

	written, err := e.cipher.DecryptStream(dst, src, []byte(entry.RelativePath))
	if err != nil {
		dst.Close()
		var ae *AuthError
		if errors.As(err, &ae) && ae.Path == "" {
			ae.Path = entry.RelativePath
		}
		return err
	}

	if err := dst.Close(); err != nil {
		return NewIOError("close", dstPath, err)
	}

	if written != entry.OriginalSize {
		return newFormatError(entry.RelativePath,
			fmt.Sprintf("size mismatch: expected %d bytes, got %d", entry.OriginalSize, written))
	}

	e.restorePermissions(dstPath, entry.Permissions)
	return nil
}

// restorePermissions applies recorded permission bits best-effort. The file's
// contents are the contract, not its mode; failures are logged, not fatal.
func (e *Engine) restorePermissions(p string, perms *uint32) {
	if perms == nil {
		return
	}
	if err := e.fs.Chmod(p, os.FileMode(*perms)); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  p,
			"perms": fmt.Sprintf("%#o", *perms),
		}).WithError(err).Warn("Failed to restore permissions")
	}
}

// isNotExist reports whether err indicates a missing file
func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)
}
