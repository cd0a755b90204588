package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/govalues/decimal"

	"github.com/tinoosan/wallet/internal/errs"
	"github.com/tinoosan/wallet/internal/storage/walletfs"
	"github.com/tinoosan/wallet/internal/wallet"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := walletfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return New(store, testLogger())
}

func createWallet(t *testing.T, s *Service, identity string) {
	t.Helper()
	doc := &wallet.MetadataDocument{
		Name: "Test Wallet",
		WalletItems: []wallet.WalletItem{
			{ID: "itm_a", Name: "Checking", CategoryID: wallet.ItemBankAccount, Currency: "EUR"},
			{ID: "itm_b", Name: "Savings", CategoryID: wallet.ItemBankAccount, Currency: "EUR"},
		},
	}
	if err := s.Create(context.Background(), identity, "pass", doc); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.Parse(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func op(t *testing.T, id, date, amount string) wallet.LedgerRecord {
	t.Helper()
	d, err := wallet.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return wallet.LedgerRecord{
		ID:       id,
		Type:     wallet.RecordOperation,
		Title:    "op " + id,
		Date:     d,
		Amount:   dec(t, amount),
		ToItemID: "itm_a",
	}
}

func TestCreateFillsDefaults(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	doc, err := s.OpenMetadata(ctx, "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Email != "alice@example.com" {
		t.Fatalf("email not set: %q", doc.Email)
	}
	if len(doc.WalletKey) != wallet.WalletKeyLength {
		t.Fatalf("wallet key length %d", len(doc.WalletKey))
	}
	if len(doc.Categories) == 0 || len(doc.Paytypes) == 0 {
		t.Fatalf("default taxonomy missing")
	}
	if doc.Params.CSV.Separator == "" {
		t.Fatalf("default csv settings missing")
	}
	if doc.Version != 1 {
		t.Fatalf("version %d", doc.Version)
	}
}

func TestCreateConflictLeavesWalletIntact(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	err := s.Create(ctx, "alice@example.com", "other", &wallet.MetadataDocument{})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := s.OpenMetadata(ctx, "alice@example.com", "pass"); err != nil {
		t.Fatalf("wallet damaged by conflicting create: %v", err)
	}
}

func TestCreateConflictDoesNotMutateCallerDoc(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	doc := &wallet.MetadataDocument{Name: "Second"}
	if err := s.Create(ctx, "alice@example.com", "other", doc); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if doc.Email != "" || doc.WalletKey != "" || doc.Categories != nil ||
		doc.Paytypes != nil || doc.Version != 0 || doc.Params.CSV != (wallet.CSVSettings{}) {
		t.Fatalf("failed create mutated caller document: %+v", doc)
	}
}

func TestExists(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	if s.Exists(ctx, "nobody@example.com") {
		t.Fatalf("unknown identity must not exist")
	}
	createWallet(t, s, "alice@example.com")
	if !s.Exists(ctx, "alice@example.com") {
		t.Fatalf("created wallet must exist")
	}
}

func TestBalanceAtInclusiveDates(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	recs := []wallet.LedgerRecord{
		op(t, "op_1", "2024-01-05", "-200"),
		op(t, "op_2", "2024-01-10", "50"),
	}
	if err := s.SaveOperations(ctx, "alice@example.com", recs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.BalanceAt(ctx, "alice@example.com", "itm_a", wallet.NewDate(2024, time.January, 7))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Cmp(dec(t, "-200")) != 0 {
		t.Fatalf("balance at 01-07 = %s, want -200", got)
	}

	got, err = s.BalanceAt(ctx, "alice@example.com", "itm_a", wallet.NewDate(2024, time.January, 15))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Cmp(dec(t, "-150")) != 0 {
		t.Fatalf("balance at 01-15 = %s, want -150", got)
	}

	// before any rows: zero, not an error
	got, err = s.BalanceAt(ctx, "alice@example.com", "itm_a", wallet.NewDate(2023, time.December, 31))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("empty range = %s, want 0", got)
	}
}

func TestBalanceAtTransferBothPerspectives(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	transfer := wallet.LedgerRecord{
		ID:         "tr_1",
		Type:       wallet.RecordTransfer,
		Title:      "to savings",
		Date:       wallet.NewDate(2024, time.January, 5),
		Amount:     dec(t, "-300"),
		FromItemID: "itm_a",
		ToItemID:   "itm_b",
	}
	if err := s.SaveOperation(ctx, "alice@example.com", transfer); err != nil {
		t.Fatalf("save: %v", err)
	}
	asOf := wallet.NewDate(2024, time.January, 31)

	// one stored row serves both directions
	atB, err := s.BalanceAt(ctx, "alice@example.com", "itm_b", asOf)
	if err != nil {
		t.Fatalf("balance B: %v", err)
	}
	if atB.Cmp(dec(t, "-300")) != 0 {
		t.Fatalf("at destination = %s, want -300", atB)
	}
	atA, err := s.BalanceAt(ctx, "alice@example.com", "itm_a", asOf)
	if err != nil {
		t.Fatalf("balance A: %v", err)
	}
	if atA.Cmp(dec(t, "300")) != 0 {
		t.Fatalf("at source = %s, want +300", atA)
	}
}

func TestIdentityWithEscapedCharacters(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	// % is legal in an email local part and gets path-escaped on disk; the
	// ledger must still resolve to the same container
	identity := "al%ice@example.com"
	createWallet(t, s, identity)

	if err := s.SaveOperation(ctx, identity, op(t, "op_1", "2024-01-05", "-200")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.BalanceAt(ctx, identity, "itm_a", wallet.NewDate(2024, time.January, 31))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Cmp(dec(t, "-200")) != 0 {
		t.Fatalf("balance = %s, want -200", got)
	}
	recs, err := s.ListOperations(ctx, identity, "itm_a", wallet.BalanceFilter{
		Start:  wallet.NewDate(2024, time.January, 1),
		End:    wallet.NewDate(2024, time.January, 31),
		Types:  []wallet.TypeFilter{wallet.TypePendings},
		States: wallet.StatesAll,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(recs))
	}
}

func TestBalanceAtValidation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	if _, err := s.BalanceAt(ctx, "alice@example.com", "", wallet.Today()); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("empty item: got %v", err)
	}
	if _, err := s.BalanceAt(ctx, "nobody@example.com", "itm_a", wallet.Today()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown identity: got %v", err)
	}
}

func TestSaveOperationsRejectsBatchOnAnyInvalid(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	bad := op(t, "op_bad", "2024-01-05", "-1")
	bad.ToItemID = ""
	err := s.SaveOperations(ctx, "alice@example.com", []wallet.LedgerRecord{
		op(t, "op_ok", "2024-01-05", "-1"),
		bad,
	})
	if !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	// the valid sibling must not have been written
	got, berr := s.BalanceAt(ctx, "alice@example.com", "itm_a", wallet.Today())
	if berr != nil {
		t.Fatalf("balance: %v", berr)
	}
	if !got.IsZero() {
		t.Fatalf("partial write detected: %s", got)
	}
}

func TestSaveOperationUpsertsByID(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	if err := s.SaveOperation(ctx, "alice@example.com", op(t, "op_1", "2024-01-05", "-200")); err != nil {
		t.Fatalf("save: %v", err)
	}
	// replace wholesale, keyed by id
	if err := s.SaveOperation(ctx, "alice@example.com", op(t, "op_1", "2024-01-05", "-250")); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err := s.BalanceAt(ctx, "alice@example.com", "itm_a", wallet.Today())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Cmp(dec(t, "-250")) != 0 {
		t.Fatalf("upsert failed, balance %s", got)
	}
}

func TestDeleteOperations(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	recs := []wallet.LedgerRecord{
		op(t, "op_1", "2024-01-05", "-200"),
		op(t, "op_2", "2024-01-10", "50"),
	}
	if err := s.SaveOperations(ctx, "alice@example.com", recs); err != nil {
		t.Fatalf("save: %v", err)
	}
	// deleting a mix of present and absent ids is not an error
	if err := s.DeleteOperations(ctx, "alice@example.com", []string{"op_1", "op_missing"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.BalanceAt(ctx, "alice@example.com", "itm_a", wallet.Today())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Cmp(dec(t, "50")) != 0 {
		t.Fatalf("balance after delete %s, want 50", got)
	}
	if err := s.DeleteOperations(ctx, "alice@example.com", nil); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("empty id set: got %v", err)
	}
}

func TestDeleteWallet(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	if err := s.Delete(ctx, "alice@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Exists(ctx, "alice@example.com") {
		t.Fatalf("wallet survived delete")
	}
	if err := s.Delete(ctx, "alice@example.com"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestSaveMetadataRoundTrip(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createWallet(t, s, "alice@example.com")

	doc, err := s.OpenMetadata(ctx, "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc.Thirdparties = append(doc.Thirdparties, wallet.Thirdparty{ID: wallet.NewID("tp"), Name: "Grocer"})
	if err := s.SaveMetadata(ctx, "alice@example.com", "pass", doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := s.OpenMetadata(ctx, "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(again.Thirdparties) != 1 || again.Thirdparties[0].Name != "Grocer" {
		t.Fatalf("metadata save did not stick: %+v", again.Thirdparties)
	}
}
