package httpapi

import "net/http"

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// readyz mirrors healthz; the service has no external backends to probe, the
// per-wallet databases are opened lazily per request.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
