package service

import (
	"context"
	"database/sql"

	"github.com/tinoosan/wallet/internal/errs"
	"github.com/tinoosan/wallet/internal/reconcile"
	"github.com/tinoosan/wallet/internal/storage/ledgerdb"
	"github.com/tinoosan/wallet/internal/wallet"
)

const upsertRecord = `
INSERT INTO operations (id, type, title, comment, date, state, amount,
                        to_item_id, from_item_id, category_id, paytype_id, thirdparty_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  type = excluded.type, title = excluded.title, comment = excluded.comment,
  date = excluded.date, state = excluded.state, amount = excluded.amount,
  to_item_id = excluded.to_item_id, from_item_id = excluded.from_item_id,
  category_id = excluded.category_id, paytype_id = excluded.paytype_id,
  thirdparty_id = excluded.thirdparty_id`

// SaveOperation upserts a single ledger record, keyed by id.
func (s *Service) SaveOperation(ctx context.Context, identity string, rec wallet.LedgerRecord) error {
	return s.SaveOperations(ctx, identity, []wallet.LedgerRecord{rec})
}

// SaveOperations upserts a batch in one transaction. Every record is
// validated before the ledger is touched, so a malformed batch can never
// leave a partial write behind.
func (s *Service) SaveOperations(ctx context.Context, identity string, recs []wallet.LedgerRecord) error {
	if len(recs) == 0 {
		return errs.ErrInvalid
	}
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return err
		}
	}
	if !s.store.Exists(identity) {
		return errs.ErrNotFound
	}
	l := s.lockIdentity(identity)
	l.Lock()
	defer l.Unlock()

	h, err := ledgerdb.Open(ctx, s.store.LedgerPath(identity))
	if err != nil {
		return s.mapErr("save_operations", identity, err)
	}
	defer h.Close()

	for _, rec := range recs {
		err := h.Exec(ctx, upsertRecord,
			rec.ID, string(rec.Type), rec.Title, rec.Comment, rec.Date.String(),
			int(rec.State), rec.Amount.String(), rec.ToItemID,
			nullable(rec.FromItemID), nullable(rec.CategoryID),
			nullable(rec.PaytypeID), nullable(rec.ThirdpartyID))
		if err != nil {
			return s.mapErr("save_operations", identity, err)
		}
	}
	return s.mapErr("save_operations", identity, h.Save(ctx))
}

// DeleteOperations removes records by id set. Missing ids are not an error;
// there is no soft delete.
func (s *Service) DeleteOperations(ctx context.Context, identity string, ids []string) error {
	if len(ids) == 0 {
		return errs.ErrInvalid
	}
	if !s.store.Exists(identity) {
		return errs.ErrNotFound
	}
	l := s.lockIdentity(identity)
	l.Lock()
	defer l.Unlock()

	h, err := ledgerdb.Open(ctx, s.store.LedgerPath(identity))
	if err != nil {
		return s.mapErr("delete_operations", identity, err)
	}
	defer h.Close()

	clause, args := inClause("id", ids)
	if err := h.Exec(ctx, "DELETE FROM operations WHERE "+clause, args...); err != nil {
		return s.mapErr("delete_operations", identity, err)
	}
	return s.mapErr("delete_operations", identity, h.Save(ctx))
}

// PreviewImport diffs an imported batch against the item's current ledger
// rows, returning the added/removed/updated partition without mutating
// anything. The caller decides what to fold in via SaveOperations.
func (s *Service) PreviewImport(ctx context.Context, identity, itemID string, incoming []wallet.LedgerRecord) (reconcile.Result, error) {
	if itemID == "" {
		return reconcile.Result{}, errs.ErrInvalid
	}
	for i := range incoming {
		if err := incoming[i].Validate(); err != nil {
			return reconcile.Result{}, err
		}
	}
	if !s.store.Exists(identity) {
		return reconcile.Result{}, errs.ErrNotFound
	}
	h, err := ledgerdb.Open(ctx, s.store.LedgerPath(identity))
	if err != nil {
		return reconcile.Result{}, s.mapErr("preview_import", identity, err)
	}
	defer h.Close()

	previous, err := recordsForItem(ctx, h, itemID)
	if err != nil {
		return reconcile.Result{}, s.mapErr("preview_import", identity, err)
	}
	return reconcile.Diff(previous, incoming), nil
}

func nullable(s string) any {
	if s == "" {
		return sql.NullString{}
	}
	return s
}
