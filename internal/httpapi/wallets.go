package httpapi

import (
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/wallet/internal/wallet"
)

// headWallet reports container existence without touching the ciphertext.
func (s *Server) headWallet(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if !s.svc.Exists(r.Context(), identity) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Identity) == "" || req.Passphrase == "" {
		badRequest(w, "identity and passphrase are required")
		return
	}
	doc := &wallet.MetadataDocument{Name: req.Name, Note: req.Note}
	if err := s.svc.Create(r.Context(), req.Identity, req.Passphrase, doc); err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, createWalletResponse{Identity: req.Identity})
}

func (s *Server) getMetadata(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	doc, err := s.svc.OpenMetadata(r.Context(), identity, r.Header.Get(passphraseHeader))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, doc)
}

// putMetadata rewrites the document wholesale; there is no patch endpoint.
func (s *Server) putMetadata(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	var doc wallet.MetadataDocument
	if err := decodeJSON(r, &doc); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.SaveMetadata(r.Context(), identity, r.Header.Get(passphraseHeader), &doc); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteWallet requires a successful metadata open first, so possession of
// the passphrase gates the destructive path.
func (s *Server) deleteWallet(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if _, err := s.svc.OpenMetadata(r.Context(), identity, r.Header.Get(passphraseHeader)); err != nil {
		writeDomainErr(w, err)
		return
	}
	if err := s.svc.Delete(r.Context(), identity); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
