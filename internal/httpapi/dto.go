package httpapi

import (
	"github.com/tinoosan/wallet/internal/wallet"
)

// passphraseHeader carries the wallet passphrase on every call that opens the
// encrypted metadata. It never appears in URLs or logs.
const passphraseHeader = "X-Wallet-Passphrase"

type createWalletRequest struct {
	Identity   string `json:"identity"`
	Passphrase string `json:"passphrase"`
	Name       string `json:"name"`
	Note       string `json:"note,omitempty"`
}

type createWalletResponse struct {
	Identity string `json:"identity"`
}

type balanceResponse struct {
	ItemID   string `json:"itemId"`
	AsOf     string `json:"asOf"`
	Delta    string `json:"delta"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

type operationsResponse struct {
	Records []wallet.LedgerRecord `json:"records"`
}

type saveOperationsRequest struct {
	Records []wallet.LedgerRecord `json:"records"`
}

type deleteOperationsRequest struct {
	IDs []string `json:"ids"`
}

type importPreviewResponse struct {
	Added   []wallet.LedgerRecord `json:"added"`
	Removed []wallet.LedgerRecord `json:"removed"`
	Updated []wallet.LedgerRecord `json:"updated"`
	Errors  []string              `json:"errors,omitempty"`
}
