// Package reconcile computes the added/removed/updated partition between a
// previously held record set and a freshly fetched one. It backs both the
// periodic ledger refresh and the merge of imported batches, and is a pure
// computation with no side effects.
package reconcile

import "github.com/tinoosan/wallet/internal/wallet"

// Result partitions the incoming set against the previous one by id and
// content.
type Result struct {
	// Added holds incoming records whose id was not previously present.
	Added []wallet.LedgerRecord
	// Removed holds previous records whose id is gone from incoming.
	Removed []wallet.LedgerRecord
	// Updated holds incoming records whose id survives but whose content
	// differs, so externally edited rows are never silently ignored.
	Updated []wallet.LedgerRecord
}

// Diff partitions incoming against previous. previous is indexed by id up
// front, keeping the whole pass O(n+m) for bulk imports.
func Diff(previous, incoming []wallet.LedgerRecord) Result {
	prevByID := make(map[string]wallet.LedgerRecord, len(previous))
	for _, r := range previous {
		prevByID[r.ID] = r
	}
	seen := make(map[string]bool, len(incoming))

	var res Result
	for _, r := range incoming {
		seen[r.ID] = true
		prev, ok := prevByID[r.ID]
		switch {
		case !ok:
			res.Added = append(res.Added, r)
		case !prev.Equal(r):
			res.Updated = append(res.Updated, r)
		}
	}
	for _, r := range previous {
		if !seen[r.ID] {
			res.Removed = append(res.Removed, r)
		}
	}
	return res
}
