// Package wallet defines the domain entities of the wallet service: the
// per-user metadata document, its label taxonomy, and the ledger records the
// balance and query engines operate on.
package wallet

import (
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/tinoosan/wallet/internal/errs"
)

// ItemCategory is the fixed 3-way classification of a wallet item.
type ItemCategory string

const (
	ItemBankAccount ItemCategory = "bank_account"
	ItemPaymentCard ItemCategory = "payment_card"
	ItemCashWallet  ItemCategory = "cash_wallet"
)

// WalletKeyLength is the size of the random per-wallet secret.
const WalletKeyLength = 32

// MetadataDocument is the encrypted-at-rest descriptive state of one wallet.
// It is rewritten wholesale on every save, never patched.
type MetadataDocument struct {
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Note         string       `json:"note,omitempty"`
	WalletItems  []WalletItem `json:"walletItems"`
	Categories   []Category   `json:"categories"`
	Paytypes     []Paytype    `json:"paytypes"`
	Thirdparties []Thirdparty `json:"thirdparties"`
	Params       Params       `json:"params"`
	WalletKey    string       `json:"walletKey"`
	Version      int          `json:"version"`
}

// Item returns the wallet item with the given id, if any.
func (d *MetadataDocument) Item(id string) (WalletItem, bool) {
	for _, it := range d.WalletItems {
		if it.ID == id {
			return it, true
		}
	}
	return WalletItem{}, false
}

// BankAttributes are the bank-account specific fields of a wallet item.
type BankAttributes struct {
	IBAN string `json:"iban,omitempty"`
	BIC  string `json:"bic,omitempty"`
}

// CardAttributes are the payment-card specific fields of a wallet item.
type CardAttributes struct {
	Number string `json:"number,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Expiry string `json:"expiry,omitempty"`
	CVV    string `json:"cvv,omitempty"`
}

// CashAttributes are the cash-wallet specific fields of a wallet item.
type CashAttributes struct {
	Electronic bool `json:"electronic"`
}

// WalletItem is one financial instrument inside a wallet. Exactly one of the
// attribute variants should be set, matching CategoryID.
type WalletItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CategoryID    ItemCategory    `json:"categoryId"`
	Currency      string          `json:"currency"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
	Overdraft     decimal.Decimal `json:"overdraft"`
	Bank          *BankAttributes `json:"bank,omitempty"`
	Card          *CardAttributes `json:"card,omitempty"`
	Cash          *CashAttributes `json:"cash,omitempty"`
}

// Category is a tree-shaped label; ParentID is empty for top-level entries.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// Paytype is a flat payment-method label.
type Paytype struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Thirdparty is a flat counterparty label.
type Thirdparty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecordType discriminates ledger rows.
type RecordType string

const (
	RecordOperation RecordType = "operation"
	RecordTransfer  RecordType = "transfer"
)

// RecordState is the reconciliation flag on a ledger row.
type RecordState int

const (
	StateUnreconciled RecordState = 0
	StateReconciled   RecordState = 1
)

// LedgerRecord is the single row shape of the ledger database, a tagged union
// over operation and transfer. A transfer stores one signed amount from the
// destination item's perspective; the source side reads it sign-inverted.
type LedgerRecord struct {
	ID      string          `json:"id"`
	Type    RecordType      `json:"type"`
	Title   string          `json:"title"`
	Comment string          `json:"comment,omitempty"`
	Date    Date            `json:"date"`
	State   RecordState     `json:"state"`
	Amount  decimal.Decimal `json:"amount"`
	// ToItemID is the owning wallet item (destination for transfers).
	ToItemID string `json:"toWalletItemId"`
	// Operation-only labels.
	CategoryID   string `json:"categoryId,omitempty"`
	PaytypeID    string `json:"paytypeId,omitempty"`
	ThirdpartyID string `json:"thirdpartyId,omitempty"`
	// Transfer-only source item.
	FromItemID string `json:"fromWalletItemId,omitempty"`
}

// Validate enforces the discriminated shape before any ledger mutation.
// Self-transfers are rejected outright; their balance semantics are undefined.
func (r *LedgerRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errs.ErrInvalid
	}
	if r.Date.IsZero() {
		return errs.ErrInvalid
	}
	if r.State != StateUnreconciled && r.State != StateReconciled {
		return errs.ErrInvalid
	}
	if strings.TrimSpace(r.ToItemID) == "" {
		return errs.ErrInvalid
	}
	switch r.Type {
	case RecordOperation:
		if r.FromItemID != "" {
			return errs.ErrInvalid
		}
	case RecordTransfer:
		if strings.TrimSpace(r.FromItemID) == "" {
			return errs.ErrInvalid
		}
		if r.FromItemID == r.ToItemID {
			return errs.ErrInvalid
		}
		if r.CategoryID != "" || r.PaytypeID != "" || r.ThirdpartyID != "" {
			return errs.ErrInvalid
		}
	default:
		return errs.ErrInvalid
	}
	return nil
}

// Equal reports structural equality, with amounts compared by value rather
// than representation. The import merger keys its updated partition on this.
func (r LedgerRecord) Equal(o LedgerRecord) bool {
	return r.ID == o.ID &&
		r.Type == o.Type &&
		r.Title == o.Title &&
		r.Comment == o.Comment &&
		r.Date == o.Date &&
		r.State == o.State &&
		r.Amount.Cmp(o.Amount) == 0 &&
		r.ToItemID == o.ToItemID &&
		r.CategoryID == o.CategoryID &&
		r.PaytypeID == o.PaytypeID &&
		r.ThirdpartyID == o.ThirdpartyID &&
		r.FromItemID == o.FromItemID
}

// NewID returns a prefixed random identifier, e.g. "itm_1f3c...".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
