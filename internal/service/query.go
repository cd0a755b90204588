package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/govalues/decimal"
	"github.com/tinoosan/wallet/internal/errs"
	"github.com/tinoosan/wallet/internal/storage/ledgerdb"
	"github.com/tinoosan/wallet/internal/wallet"
)

const recordColumns = `id, type, title, comment, date, state, amount, to_item_id, from_item_id, category_id, paytype_id, thirdparty_id`

// ListOperations returns the ledger rows of one wallet item matching the
// filter. Two queries are issued, one per perspective: rows owned by the item
// (to side) and transfers received from it (from side, amounts sign-inverted).
// A row can only ever match one of the two.
func (s *Service) ListOperations(ctx context.Context, identity, itemID string, filter wallet.BalanceFilter) ([]wallet.LedgerRecord, error) {
	if itemID == "" {
		return nil, errs.ErrInvalid
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if !s.store.Exists(identity) {
		return nil, errs.ErrNotFound
	}
	// an empty type set selects nothing; the filter is never auto-widened
	if len(filter.Types) == 0 {
		return []wallet.LedgerRecord{}, nil
	}

	h, err := ledgerdb.Open(ctx, s.store.LedgerPath(identity))
	if err != nil {
		return nil, s.mapErr("list_operations", identity, err)
	}
	defer h.Close()

	out := []wallet.LedgerRecord{}
	collect := func(invert bool) func(rows *sql.Rows) error {
		return func(rows *sql.Rows) error {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			if invert {
				rec.Amount = rec.Amount.Neg()
			}
			out = append(out, rec)
			return nil
		}
	}

	query, args := buildQuery("to_item_id", itemID, &filter)
	if err := h.QueryEach(ctx, query, args, collect(false)); err != nil {
		return nil, s.mapErr("list_operations", identity, err)
	}
	// the from perspective only ever holds transfers
	if filter.Has(wallet.TypeTransfers) {
		query, args = buildQuery("from_item_id", itemID, &filter)
		if err := h.QueryEach(ctx, query, args, collect(true)); err != nil {
			return nil, s.mapErr("list_operations", identity, err)
		}
	}
	return out, nil
}

// buildQuery translates the filter into a conjunction of clauses over one
// perspective column. Every dynamic value is bound; only fixed column names
// and pre-validated enumerations reach the query text.
func buildQuery(perspective, itemID string, f *wallet.BalanceFilter) (string, []any) {
	where := []string{perspective + " = ?", "date >= ?", "date <= ?"}
	args := []any{itemID, f.Start.String(), f.End.String()}

	var kinds []string
	if f.Has(wallet.TypeTransfers) {
		kinds = append(kinds, "type = 'transfer'")
	}
	if f.Has(wallet.TypePendings) {
		kinds = append(kinds, "(type = 'operation' AND CAST(amount AS NUMERIC) < 0)")
	}
	if f.Has(wallet.TypeIncomes) {
		kinds = append(kinds, "(type = 'operation' AND CAST(amount AS NUMERIC) >= 0)")
	}
	where = append(where, "("+strings.Join(kinds, " OR ")+")")

	switch f.States {
	case wallet.StatesClosed:
		where = append(where, "state = ?")
		args = append(args, int(wallet.StateReconciled))
	case wallet.StatesNotClosed:
		where = append(where, "state = ?")
		args = append(args, int(wallet.StateUnreconciled))
	}

	for _, in := range []struct {
		col string
		ids []string
	}{
		{"paytype_id", f.Paytypes},
		{"category_id", f.Categories},
		{"thirdparty_id", f.Thirdparties},
	} {
		if len(in.ids) == 0 {
			continue
		}
		clause, vals := inClause(in.col, in.ids)
		where = append(where, clause)
		args = append(args, vals...)
	}

	query := "SELECT " + recordColumns + " FROM operations WHERE " +
		strings.Join(where, " AND ") + " ORDER BY date, id"
	return query, args
}

// inClause builds "col IN (?, ?, ...)" with one placeholder per value.
func inClause(col string, ids []string) (string, []any) {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return col + " IN (" + marks + ")", args
}

func scanRecord(rows *sql.Rows) (wallet.LedgerRecord, error) {
	var (
		rec      wallet.LedgerRecord
		dateStr  string
		amount   string
		from     sql.NullString
		category sql.NullString
		paytype  sql.NullString
		third    sql.NullString
	)
	if err := rows.Scan(&rec.ID, &rec.Type, &rec.Title, &rec.Comment, &dateStr,
		&rec.State, &amount, &rec.ToItemID, &from, &category, &paytype, &third); err != nil {
		return wallet.LedgerRecord{}, err
	}
	date, err := wallet.ParseDate(dateStr)
	if err != nil {
		return wallet.LedgerRecord{}, err
	}
	rec.Date = date
	rec.Amount, err = decimal.Parse(amount)
	if err != nil {
		return wallet.LedgerRecord{}, err
	}
	rec.FromItemID = from.String
	rec.CategoryID = category.String
	rec.PaytypeID = paytype.String
	rec.ThirdpartyID = third.String
	return rec, nil
}

// recordsForItem fetches every row touching one item, both perspectives,
// with transfer amounts normalized to the item's point of view.
func recordsForItem(ctx context.Context, h *ledgerdb.Handle, itemID string) ([]wallet.LedgerRecord, error) {
	out := []wallet.LedgerRecord{}
	collect := func(invert bool) func(rows *sql.Rows) error {
		return func(rows *sql.Rows) error {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			if invert {
				rec.Amount = rec.Amount.Neg()
			}
			out = append(out, rec)
			return nil
		}
	}
	err := h.QueryEach(ctx,
		"SELECT "+recordColumns+" FROM operations WHERE to_item_id = ? ORDER BY date, id",
		[]any{itemID}, collect(false))
	if err != nil {
		return nil, err
	}
	err = h.QueryEach(ctx,
		"SELECT "+recordColumns+" FROM operations WHERE from_item_id = ? AND type = 'transfer' ORDER BY date, id",
		[]any{itemID}, collect(true))
	if err != nil {
		return nil, err
	}
	return out, nil
}
