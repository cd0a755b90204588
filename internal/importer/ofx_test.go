package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/tinoosan/wallet/internal/wallet"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000
<TRNAMT>-42.50
<FITID>2024010501
<NAME>CARREFOUR
<MEMO>groceries
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240110
<TRNAMT>1250.00
<PAYEE>EMPLOYER
</STMTTRN>
</BANKTRANLIST>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParseOFX(t *testing.T) {
	res, err := ParseOFX(strings.NewReader(sampleOFX), "itm_a")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}

	first := res.Records[0]
	if first.ID != "imp_2024010501" {
		t.Fatalf("FITID id: %q", first.ID)
	}
	if first.Date != wallet.NewDate(2024, time.January, 5) {
		t.Fatalf("date: %v", first.Date)
	}
	if first.Title != "CARREFOUR" || first.Comment != "groceries" {
		t.Fatalf("fields: %+v", first)
	}
	if first.Amount.String() != "-42.50" && first.Amount.String() != "-42.5" {
		t.Fatalf("amount: %s", first.Amount)
	}

	second := res.Records[1]
	if second.Title != "EMPLOYER" {
		t.Fatalf("PAYEE fallback: %+v", second)
	}
	if !strings.HasPrefix(second.ID, "imp_") || second.ID == "imp_" {
		t.Fatalf("content-hash id: %q", second.ID)
	}
}

func TestParseOFXClosingTagsOptional(t *testing.T) {
	in := `<STMTTRN>
<DTPOSTED>20240201</DTPOSTED>
<TRNAMT>-5.00</TRNAMT>
<NAME>COFFEE</NAME>
<STMTTRN>
<DTPOSTED>20240202
<TRNAMT>-6.00
<NAME>TEA
`
	res, err := ParseOFX(strings.NewReader(in), "itm_a")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d (%v)", len(res.Records), res.Errors)
	}
	if res.Records[0].Title != "COFFEE" || res.Records[1].Title != "TEA" {
		t.Fatalf("records: %+v", res.Records)
	}
}

func TestParseOFXBadBlockReported(t *testing.T) {
	in := `<STMTTRN>
<TRNAMT>-5.00
<NAME>NO DATE
</STMTTRN>
<STMTTRN>
<DTPOSTED>20240202
<TRNAMT>-6.00
<NAME>OK
</STMTTRN>
`
	res, err := ParseOFX(strings.NewReader(in), "itm_a")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Title != "OK" {
		t.Fatalf("records: %+v", res.Records)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func TestParseOFXRequiresItemID(t *testing.T) {
	if _, err := ParseOFX(strings.NewReader(""), ""); err == nil {
		t.Fatalf("expected error without item id")
	}
}
