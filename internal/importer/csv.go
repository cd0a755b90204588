// Package importer parses external transaction batches (CSV, OFX) into the
// common ledger record shape. Parsers only produce records; merging them into
// the ledger is the reconcile/service layer's job.
package importer

import (
	"bufio"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/govalues/decimal"
	"github.com/tinoosan/wallet/internal/wallet"
)

// Result carries the parsed records plus per-line failures. A bad line never
// aborts the batch; it is reported and skipped.
type Result struct {
	Records []wallet.LedgerRecord
	Errors  []error
}

// ParseCSV reads a bank-export CSV using the wallet's per-identity column
// settings and emits operation records against the target item.
func ParseCSV(r io.Reader, settings wallet.CSVSettings, itemID string) (Result, error) {
	if itemID == "" {
		return Result{}, errors.New("importer: item id required")
	}
	sep := ';'
	if settings.Separator != "" {
		sep = rune(settings.Separator[0])
	}
	layout := settings.DateFormat
	if layout == "" {
		layout = "02/01/2006"
	}
	minCols := maxInt(settings.DateCol, maxInt(settings.TitleCol, settings.AmountCol)) + 1

	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var res Result
	line := 0
	for {
		line++
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if settings.SkipHeader && line == 1 {
			continue
		}
		if len(rec) < minCols {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least %d columns", line, minCols))
			continue
		}
		date, err := parseDate(rec[settings.DateCol], layout)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		amount, err := parseAmount(rec[settings.AmountCol])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		title := strings.TrimSpace(rec[settings.TitleCol])
		comment := ""
		if settings.CommentCol >= 0 && settings.CommentCol < len(rec) {
			comment = strings.TrimSpace(rec[settings.CommentCol])
		}
		res.Records = append(res.Records, wallet.LedgerRecord{
			ID:       importID(itemID, date, amount, title),
			Type:     wallet.RecordOperation,
			Title:    title,
			Comment:  comment,
			Date:     date,
			State:    wallet.StateUnreconciled,
			Amount:   amount,
			ToItemID: itemID,
		})
	}
	return res, nil
}

func parseDate(s, layout string) (wallet.Date, error) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return wallet.Date{}, err
	}
	return wallet.NewDate(t.Year(), t.Month(), t.Day()), nil
}

// parseAmount accepts "1234.56", the comma-decimal "1234,56" and the
// dot-thousands "1.234,56" forms common in European exports. When both
// separators appear, the later one is the decimal mark.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, " ", "")
	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case comma >= 0 && dot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", ".")
	}
	return decimal.Parse(clean)
}

// importID derives a stable id from the row content, so re-importing the same
// batch upserts instead of duplicating.
func importID(itemID string, date wallet.Date, amount decimal.Decimal, title string) string {
	h := sha256.Sum256([]byte(itemID + "|" + date.String() + "|" + amount.String() + "|" + title))
	return "imp_" + hex.EncodeToString(h[:8])
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
