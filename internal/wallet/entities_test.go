package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/govalues/decimal"
	"github.com/tinoosan/wallet/internal/errs"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.Parse(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func validOperation(t *testing.T) LedgerRecord {
	t.Helper()
	return LedgerRecord{
		ID:         "op_1",
		Type:       RecordOperation,
		Title:      "groceries",
		Date:       NewDate(2024, time.January, 5),
		Amount:     mustDec(t, "-12.50"),
		ToItemID:   "itm_a",
		CategoryID: "cat_food",
	}
}

func validTransfer(t *testing.T) LedgerRecord {
	t.Helper()
	return LedgerRecord{
		ID:         "tr_1",
		Type:       RecordTransfer,
		Title:      "top up",
		Date:       NewDate(2024, time.January, 5),
		Amount:     mustDec(t, "300"),
		ToItemID:   "itm_b",
		FromItemID: "itm_a",
	}
}

func TestLedgerRecordValidate(t *testing.T) {
	op := validOperation(t)
	if err := op.Validate(); err != nil {
		t.Fatalf("valid operation rejected: %v", err)
	}
	tr := validTransfer(t)
	if err := tr.Validate(); err != nil {
		t.Fatalf("valid transfer rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*LedgerRecord)
	}{
		{"missing id", func(r *LedgerRecord) { r.ID = " " }},
		{"missing date", func(r *LedgerRecord) { r.Date = Date{} }},
		{"missing to item", func(r *LedgerRecord) { r.ToItemID = "" }},
		{"bad state", func(r *LedgerRecord) { r.State = 7 }},
		{"operation with from item", func(r *LedgerRecord) { r.FromItemID = "itm_x" }},
		{"unknown type", func(r *LedgerRecord) { r.Type = "refund" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validOperation(t)
			tc.mutate(&rec)
			if err := rec.Validate(); !errors.Is(err, errs.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	transferCases := []struct {
		name   string
		mutate func(*LedgerRecord)
	}{
		{"missing from item", func(r *LedgerRecord) { r.FromItemID = "" }},
		{"self transfer", func(r *LedgerRecord) { r.FromItemID = r.ToItemID }},
		{"transfer with category", func(r *LedgerRecord) { r.CategoryID = "cat_x" }},
		{"transfer with paytype", func(r *LedgerRecord) { r.PaytypeID = "pt_x" }},
		{"transfer with thirdparty", func(r *LedgerRecord) { r.ThirdpartyID = "tp_x" }},
	}
	for _, tc := range transferCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validTransfer(t)
			tc.mutate(&rec)
			if err := rec.Validate(); !errors.Is(err, errs.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLedgerRecordEqualComparesAmountByValue(t *testing.T) {
	a := validOperation(t)
	b := validOperation(t)
	b.Amount = mustDec(t, "-12.5")
	if !a.Equal(b) {
		t.Fatalf("-12.50 and -12.5 must compare equal")
	}
	b.Title = "renamed"
	if a.Equal(b) {
		t.Fatalf("title change must break equality")
	}
}

func TestMetadataDocumentItem(t *testing.T) {
	doc := MetadataDocument{WalletItems: []WalletItem{
		{ID: "itm_a", Name: "Checking"},
		{ID: "itm_b", Name: "Cash"},
	}}
	if it, ok := doc.Item("itm_b"); !ok || it.Name != "Cash" {
		t.Fatalf("lookup failed: %+v %v", it, ok)
	}
	if _, ok := doc.Item("itm_z"); ok {
		t.Fatalf("unknown id must miss")
	}
}

func TestNewID(t *testing.T) {
	id := NewID("itm")
	if len(id) != 4+32 {
		t.Fatalf("unexpected id length: %q", id)
	}
	if id[:4] != "itm_" {
		t.Fatalf("missing prefix: %q", id)
	}
	if id == NewID("itm") {
		t.Fatalf("ids must not repeat")
	}
}
