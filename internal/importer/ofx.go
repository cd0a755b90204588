package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tinoosan/wallet/internal/wallet"
)

// ParseOFX reads an OFX statement (the SGML flavour banks actually export,
// where closing tags are optional) and emits one operation record per
// STMTTRN block against the target item.
func ParseOFX(r io.Reader, itemID string) (Result, error) {
	if itemID == "" {
		return Result{}, errors.New("importer: item id required")
	}
	var (
		res     Result
		current map[string]string
		block   int
	)
	flush := func() {
		if current == nil {
			return
		}
		block++
		rec, err := ofxRecord(current, itemID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("transaction %d: %w", block, err))
		} else {
			res.Records = append(res.Records, rec)
		}
		current = nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.EqualFold(line, "<STMTTRN>"):
			flush()
			current = make(map[string]string)
		case strings.EqualFold(line, "</STMTTRN>"):
			flush()
		case current != nil && strings.HasPrefix(line, "<"):
			tag, value, ok := splitOFXTag(line)
			if ok {
				current[tag] = value
			}
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read ofx: %w", err)
	}
	return res, nil
}

// splitOFXTag parses "<TAG>value" lines; a trailing close tag is tolerated.
func splitOFXTag(line string) (tag, value string, ok bool) {
	end := strings.IndexByte(line, '>')
	if end < 2 || line[1] == '/' {
		return "", "", false
	}
	tag = strings.ToUpper(line[1:end])
	value = line[end+1:]
	if i := strings.Index(value, "</"); i >= 0 {
		value = value[:i]
	}
	return tag, strings.TrimSpace(value), true
}

func ofxRecord(fields map[string]string, itemID string) (wallet.LedgerRecord, error) {
	posted, ok := fields["DTPOSTED"]
	if !ok {
		return wallet.LedgerRecord{}, errors.New("missing DTPOSTED")
	}
	// DTPOSTED is YYYYMMDD, optionally followed by time and timezone
	if len(posted) < 8 {
		return wallet.LedgerRecord{}, fmt.Errorf("bad DTPOSTED %q", posted)
	}
	t, err := time.Parse("20060102", posted[:8])
	if err != nil {
		return wallet.LedgerRecord{}, fmt.Errorf("bad DTPOSTED %q: %w", posted, err)
	}
	date := wallet.NewDate(t.Year(), t.Month(), t.Day())

	amount, err := parseAmount(fields["TRNAMT"])
	if err != nil {
		return wallet.LedgerRecord{}, fmt.Errorf("bad TRNAMT %q: %w", fields["TRNAMT"], err)
	}

	title := fields["NAME"]
	if title == "" {
		title = fields["PAYEE"]
	}

	// FITID is the bank's stable id; fall back to a content hash without one
	id := strings.TrimSpace(fields["FITID"])
	if id != "" {
		id = "imp_" + id
	} else {
		id = importID(itemID, date, amount, title)
	}

	return wallet.LedgerRecord{
		ID:       id,
		Type:     wallet.RecordOperation,
		Title:    title,
		Comment:  fields["MEMO"],
		Date:     date,
		State:    wallet.StateUnreconciled,
		Amount:   amount,
		ToItemID: itemID,
	}, nil
}
