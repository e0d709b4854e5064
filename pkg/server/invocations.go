package server

import (
	"errors"
	"net/http"

	"github.com/storelink/storelink/pkg/invocation"
)

func (s *Server) handleCreateInvocation(w http.ResponseWriter, r *http.Request) {
	var req invocation.Request
	if !decodeBody(w, r, &req) {
		return
	}

	record, err := s.invoker.Invoke(r.Context(), req)
	if err != nil {
		if errors.Is(err, invocation.ErrInvalidArgs) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGetInvocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	record, err := s.invoker.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListAccountInvocations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.accounts.GetAccount(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.invoker.ListByAccount(id))
}
