package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/govalues/money"

	"github.com/tinoosan/wallet/internal/importer"
	"github.com/tinoosan/wallet/internal/wallet"
)

// getBalance returns the absolute balance of one wallet item as of a date
// (?as_of=YYYY-MM-DD, default today). The metadata must be opened to fold in
// the item's initial amount and currency, so the passphrase header is
// required here too.
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	itemID := chi.URLParam(r, "itemID")

	asOf := wallet.Today()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := wallet.ParseDate(raw)
		if err != nil {
			badRequest(w, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	doc, err := s.svc.OpenMetadata(r.Context(), identity, r.Header.Get(passphraseHeader))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	item, ok := doc.Item(itemID)
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown wallet item", "not_found")
		return
	}

	delta, err := s.svc.BalanceAt(r.Context(), identity, itemID, asOf)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	abs, err := item.InitialAmount.Add(delta)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	// round to the currency's minor-unit scale for display
	amt, err := money.ParseAmount(item.Currency, abs.String())
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad item currency", "invalid")
		return
	}
	rounded := amt.RoundToCurr()
	toJSON(w, http.StatusOK, balanceResponse{
		ItemID:   itemID,
		AsOf:     asOf.String(),
		Delta:    delta.String(),
		Balance:  rounded.Decimal().String(),
		Currency: item.Currency,
	})
}

// queryOperations runs the structured filter against one item's ledger rows.
// It is a POST because the filter body is too structured for query strings.
func (s *Server) queryOperations(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	itemID := chi.URLParam(r, "itemID")

	var filter wallet.BalanceFilter
	if err := decodeJSON(r, &filter); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	recs, err := s.svc.ListOperations(r.Context(), identity, itemID, filter)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, operationsResponse{Records: recs})
}

func (s *Server) putOperations(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	var req saveOperationsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.SaveOperations(r.Context(), identity, req.Records); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteOperations(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	var req deleteOperationsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.DeleteOperations(r.Context(), identity, req.IDs); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// previewImport parses an uploaded statement (?format=csv|ofx) and returns
// the added/removed/updated partition against the item's current rows. The
// ledger is not mutated; the client folds in what it wants via PUT.
func (s *Server) previewImport(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	itemID := chi.URLParam(r, "itemID")

	var (
		parsed importer.Result
		err    error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		// CSV column layout lives in the wallet's own settings
		doc, derr := s.svc.OpenMetadata(r.Context(), identity, r.Header.Get(passphraseHeader))
		if derr != nil {
			writeDomainErr(w, derr)
			return
		}
		parsed, err = importer.ParseCSV(r.Body, doc.Params.CSV, itemID)
	case "ofx":
		parsed, err = importer.ParseOFX(r.Body, itemID)
	default:
		badRequest(w, "format must be csv or ofx")
		return
	}
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	diff, err := s.svc.PreviewImport(r.Context(), identity, itemID, parsed.Records)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	resp := importPreviewResponse{
		Added:   diff.Added,
		Removed: diff.Removed,
		Updated: diff.Updated,
	}
	for _, perr := range parsed.Errors {
		resp.Errors = append(resp.Errors, perr.Error())
	}
	toJSON(w, http.StatusOK, resp)
}
