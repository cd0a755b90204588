// Package walletfs manages the on-disk footprint of a wallet: one container
// directory per identity holding the encrypted metadata document, its key
// derivation salt, and the ledger database file.
package walletfs

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/tinoosan/wallet/internal/errs"
	"github.com/tinoosan/wallet/internal/storage/ledgerdb"
	"github.com/tinoosan/wallet/internal/vault"
	"github.com/tinoosan/wallet/internal/wallet"
)

const (
	metadataFile = "metadata.enc"
	saltFile     = "salt"
	ledgerFile   = "ledger.db"
)

// Store locates wallet containers under a single root directory.
type Store struct {
	root string
}

// New returns a store rooted at dir, creating it if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Dir maps an identity to its container path. The encoding is reversible
// path-escaping of the email; it is a filesystem convenience, not an
// obfuscation of the identity.
func (s *Store) Dir(identity string) string {
	return filepath.Join(s.root, url.PathEscape(identity))
}

// LedgerPath returns the ledger database file for an identity.
func (s *Store) LedgerPath(identity string) string {
	return filepath.Join(s.Dir(identity), ledgerFile)
}

// Exists reports whether the wallet container is present. It is side-effect
// free and needs no password.
func (s *Store) Exists(identity string) bool {
	info, err := os.Stat(s.Dir(identity))
	return err == nil && info.IsDir()
}

// Create builds a new wallet container. Both artifacts (encrypted metadata
// and bootstrapped ledger) are assembled in a staging directory and renamed
// into place in one step, so a partial failure never leaves a half-created
// wallet behind.
func (s *Store) Create(ctx context.Context, identity, passphrase string, doc *wallet.MetadataDocument) error {
	if s.Exists(identity) {
		return errs.ErrConflict
	}
	staging, err := os.MkdirTemp(s.root, ".staging-*")
	if err != nil {
		return fmt.Errorf("create staging: %w", err)
	}
	defer os.RemoveAll(staging)

	salt, err := vault.NewSalt()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, saltFile), []byte(hex.EncodeToString(salt)), 0o600); err != nil {
		return fmt.Errorf("write salt: %w", err)
	}
	blob, err := vault.EncryptJSON(doc, passphrase, salt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, metadataFile), []byte(blob), 0o600); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	// bootstrap the ledger before committing the container
	h, err := ledgerdb.Open(ctx, filepath.Join(staging, ledgerFile))
	if err != nil {
		return err
	}
	if err := h.Save(ctx); err != nil {
		_ = h.Close()
		return err
	}
	if err := h.Close(); err != nil {
		return err
	}

	if err := os.Rename(staging, s.Dir(identity)); err != nil {
		return fmt.Errorf("commit container: %w", err)
	}
	return nil
}

// OpenMetadata decrypts and returns the metadata document. A missing wallet
// yields errs.ErrNotFound; a wrong passphrase or corrupt blob yields
// errs.ErrDecrypt, with no distinction between the two causes.
func (s *Store) OpenMetadata(identity, passphrase string) (*wallet.MetadataDocument, error) {
	if !s.Exists(identity) {
		return nil, errs.ErrNotFound
	}
	salt, err := s.readSalt(identity)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(filepath.Join(s.Dir(identity), metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var doc wallet.MetadataDocument
	if err := vault.DecryptJSON(string(blob), passphrase, salt, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveMetadata rewrites the encrypted document wholesale. It cannot
// implicitly create a wallet. The write goes through a temp file and rename
// so a crash never truncates the only copy.
func (s *Store) SaveMetadata(identity, passphrase string, doc *wallet.MetadataDocument) error {
	if !s.Exists(identity) {
		return errs.ErrNotFound
	}
	salt, err := s.readSalt(identity)
	if err != nil {
		return err
	}
	blob, err := vault.EncryptJSON(doc, passphrase, salt)
	if err != nil {
		return err
	}
	dir := s.Dir(identity)
	tmp, err := os.CreateTemp(dir, ".metadata-*")
	if err != nil {
		return fmt.Errorf("create temp metadata: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close metadata: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, metadataFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit metadata: %w", err)
	}
	return nil
}

// Delete removes both stores for an existing identity.
func (s *Store) Delete(identity string) error {
	if !s.Exists(identity) {
		return errs.ErrNotFound
	}
	if err := os.RemoveAll(s.Dir(identity)); err != nil {
		return fmt.Errorf("delete container: %w", err)
	}
	return nil
}

// Purge forcefully removes the container, existing or not. Best effort: it
// reports success/failure instead of returning an error, because it doubles
// as the cleanup path after a failed create.
func (s *Store) Purge(identity string) bool {
	return os.RemoveAll(s.Dir(identity)) == nil
}

func (s *Store) readSalt(identity string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(s.Dir(identity), saltFile))
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	salt, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return salt, nil
}
