package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	// ErrNotFound means no wallet (or record) exists for the given identity.
	ErrNotFound = errors.New("not_found")
	// ErrConflict means a wallet already exists for the identity on create.
	ErrConflict = errors.New("conflict")
	// ErrInvalid covers malformed records and filters, rejected before any mutation.
	ErrInvalid = errors.New("invalid")
	// ErrDecrypt means the passphrase did not decrypt the metadata document.
	// Wrong password and corrupt data are deliberately indistinguishable.
	ErrDecrypt = errors.New("decrypt_failed")
	// ErrStorage covers filesystem and ledger-engine failures. Details are
	// logged internally and never cross the public boundary.
	ErrStorage = errors.New("storage_failed")
	// ErrClosed is returned when a ledger handle is used after Close.
	ErrClosed = errors.New("ledger_closed")
)
