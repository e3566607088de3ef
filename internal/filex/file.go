// Package filex holds small filesystem helpers used by the client: creating
// working directories and managing the per-install secret file.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// EnsureDir creates dir (and parents) if needed and returns its absolute path.
// Relative paths are resolved against the current working directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ReadOrCreateSecret returns the contents of the secret file at path. When the
// file does not exist it is created with size random bytes and mode 0600.
// An existing file of a different length is rejected.
func ReadOrCreateSecret(path string, size int) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != size {
			return nil, fmt.Errorf("secret file %s: want %d bytes, got %d", path, size, len(secret))
		}
		return secret, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read secret file %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			// lost a race with another process; use what it wrote
			return ReadOrCreateSecret(path, size)
		}
		return nil, fmt.Errorf("create secret file %s: %w", path, err)
	}
	defer f.Close()

	secret = common.GenerateRandByteArray(size)
	if _, err := f.Write(secret); err != nil {
		return nil, fmt.Errorf("write secret file %s: %w", path, err)
	}
	return secret, nil
}
