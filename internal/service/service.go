// Package service exposes the wallet operations the HTTP layer calls:
// lifecycle, metadata access, balances, filtered listings and ledger
// mutations. All internal failures are converted to the sentinel taxonomy at
// this boundary; no raw error text escapes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/tinoosan/wallet/internal/errs"
	"github.com/tinoosan/wallet/internal/storage/walletfs"
	"github.com/tinoosan/wallet/internal/vault"
	"github.com/tinoosan/wallet/internal/wallet"
)

// Service coordinates the metadata store and the per-wallet ledger.
type Service struct {
	store *walletfs.Store
	log   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires the service over a wallet store.
func New(store *walletfs.Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockIdentity serializes mutations per wallet identity. Concurrent writers
// against the same ledger file would otherwise race at the file level.
func (s *Service) lockIdentity(identity string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[identity]
	if !ok {
		l = &sync.Mutex{}
		s.locks[identity] = l
	}
	return l
}

// mapErr converts internal errors into the public taxonomy, logging anything
// that is not already a sentinel.
func (s *Service) mapErr(op, identity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrInvalid),
		errors.Is(err, errs.ErrDecrypt),
		errors.Is(err, errs.ErrClosed):
		return err
	default:
		s.log.Error("wallet storage failure", "op", op, "identity", identity, "err", err)
		return errs.ErrStorage
	}
}

// Exists reports whether a wallet container is present for the identity.
func (s *Service) Exists(ctx context.Context, identity string) bool {
	return s.store.Exists(identity)
}

// Create registers a new wallet: fills document defaults, generates the
// per-wallet key, and commits both stores atomically. An existing identity
// yields errs.ErrConflict without touching its stores.
func (s *Service) Create(ctx context.Context, identity, passphrase string, doc *wallet.MetadataDocument) error {
	if strings.TrimSpace(identity) == "" || passphrase == "" || doc == nil {
		return errs.ErrInvalid
	}
	l := s.lockIdentity(identity)
	l.Lock()
	defer l.Unlock()

	// conflict gate comes first so a failed create never touches the
	// caller's document
	if s.store.Exists(identity) {
		return errs.ErrConflict
	}

	doc.Email = identity
	if doc.WalletKey == "" {
		key, err := vault.GenerateSecret(wallet.WalletKeyLength)
		if err != nil {
			return s.mapErr("create", identity, err)
		}
		doc.WalletKey = key
	}
	if doc.Categories == nil {
		doc.Categories = wallet.DefaultCategories()
	}
	if doc.Paytypes == nil {
		doc.Paytypes = wallet.DefaultPaytypes()
	}
	if doc.Params.CSV == (wallet.CSVSettings{}) {
		doc.Params.CSV = wallet.DefaultCSVSettings()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if err := s.store.Create(ctx, identity, passphrase, doc); err != nil {
		// the store stages both artifacts and commits by rename, but purge
		// anyway in case a partially renamed container survived
		if !errors.Is(err, errs.ErrConflict) {
			s.store.Purge(identity)
		}
		return s.mapErr("create", identity, err)
	}
	return nil
}

// OpenMetadata returns the decrypted document, or an error the caller must
// treat uniformly whether the wallet is missing or the passphrase is wrong.
func (s *Service) OpenMetadata(ctx context.Context, identity, passphrase string) (*wallet.MetadataDocument, error) {
	doc, err := s.store.OpenMetadata(identity, passphrase)
	if err != nil {
		return nil, s.mapErr("open_metadata", identity, err)
	}
	return doc, nil
}

// SaveMetadata rewrites the document wholesale for an existing wallet.
func (s *Service) SaveMetadata(ctx context.Context, identity, passphrase string, doc *wallet.MetadataDocument) error {
	if doc == nil {
		return errs.ErrInvalid
	}
	if err := doc.Params.Filters.Validate(); err != nil {
		return errs.ErrInvalid
	}
	if err := doc.Params.Sorters.Validate(); err != nil {
		return errs.ErrInvalid
	}
	if err := doc.Params.Toggles.Validate(); err != nil {
		return errs.ErrInvalid
	}
	l := s.lockIdentity(identity)
	l.Lock()
	defer l.Unlock()
	return s.mapErr("save_metadata", identity, s.store.SaveMetadata(identity, passphrase, doc))
}

// Delete removes both stores for the identity. Passphrase verification is the
// caller's responsibility; this is the "close my account" path.
func (s *Service) Delete(ctx context.Context, identity string) error {
	l := s.lockIdentity(identity)
	l.Lock()
	defer l.Unlock()
	return s.mapErr("delete", identity, s.store.Delete(identity))
}
