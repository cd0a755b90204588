package service

import (
	"context"
	"database/sql"

	"github.com/govalues/decimal"
	"github.com/tinoosan/wallet/internal/errs"
	"github.com/tinoosan/wallet/internal/storage/ledgerdb"
	"github.com/tinoosan/wallet/internal/wallet"
)

// BalanceAt computes the balance delta of one wallet item as of a calendar
// date, inclusive. The delta excludes the item's initial amount, so the same
// call serves "as of today" and "as of end of month" alike.
//
// Failures surface as a zero delta plus an error; a broken query for one item
// must never abort the independent computation for a sibling item.
func (s *Service) BalanceAt(ctx context.Context, identity, itemID string, asOf wallet.Date) (decimal.Decimal, error) {
	var zero decimal.Decimal
	if itemID == "" || asOf.IsZero() {
		return zero, errs.ErrInvalid
	}
	if !s.store.Exists(identity) {
		return zero, errs.ErrNotFound
	}
	h, err := ledgerdb.Open(ctx, s.store.LedgerPath(identity))
	if err != nil {
		return zero, s.mapErr("balance_at", identity, err)
	}
	defer h.Close()

	sum := zero
	add := func(invert bool) func(rows *sql.Rows) error {
		return func(rows *sql.Rows) error {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				return err
			}
			amt, err := decimal.Parse(raw)
			if err != nil {
				return err
			}
			if invert {
				// a transfer's stored amount is the destination's
				// perspective; the source side reads it sign-inverted
				amt = amt.Neg()
			}
			sum, err = sum.Add(amt)
			return err
		}
	}

	err = h.QueryEach(ctx,
		`SELECT amount FROM operations WHERE to_item_id = ? AND date <= ?`,
		[]any{itemID, asOf.String()}, add(false))
	if err != nil {
		return zero, s.mapErr("balance_at", identity, err)
	}
	err = h.QueryEach(ctx,
		`SELECT amount FROM operations WHERE from_item_id = ? AND type = 'transfer' AND date <= ?`,
		[]any{itemID, asOf.String()}, add(true))
	if err != nil {
		return zero, s.mapErr("balance_at", identity, err)
	}
	return sum, nil
}
