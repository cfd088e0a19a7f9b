package api

import (
	"errors"
	"io"
	"net/http"

	"grimm.is/nfcond/internal/condition"
	"grimm.is/nfcond/internal/namespace"
)

func (s *Server) handleListNamespaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"namespaces": s.manager.Names()})
}

func (s *Server) handleCreateNamespace(w http.ResponseWriter, r *http.Request) {
	ns := r.PathValue("ns")
	_, err := s.manager.Create(ns)
	switch {
	case errors.Is(err, namespace.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, condition.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"namespace": ns})
	}
}

func (s *Server) handleDestroyNamespace(w http.ResponseWriter, r *http.Request) {
	ns := r.PathValue("ns")
	if err := s.manager.Destroy(ns); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListConditions(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.manager.Get(r.PathValue("ns"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such namespace")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conditions": reg.Snapshot()})
}

// handleReadCondition is the file read contract over HTTP: the body is
// exactly "0\n" or "1\n".
func (s *Server) handleReadCondition(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.manager.Get(r.PathValue("ns"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such namespace")
		return
	}
	f, ok := reg.File(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such condition")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(f.ReadAll())
}

// handleWriteCondition is the file write contract over HTTP: the first
// byte of the body decides, anything unrecognized is consumed silently.
func (s *Server) handleWriteCondition(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.manager.Get(r.PathValue("ns"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such namespace")
		return
	}
	f, ok := reg.File(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, "no such condition")
		return
	}
	if !contentLengthOK(r) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWriteBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	n, _ := f.Write(body)
	writeJSON(w, http.StatusOK, map[string]any{
		"consumed": n,
		"enabled":  f.ReadAll()[0] == '1',
	})
}
