package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/storelink/storelink/pkg/account"
	"github.com/storelink/storelink/pkg/invocation"
	"github.com/storelink/storelink/pkg/storage"
)

// addonRequest is the request body for creating and updating configured
// addons. The resource is addressed by URI and resolved (or created) as a
// resource reference.
type addonRequest struct {
	AccountID           uuid.UUID      `json:"account_id"`
	ResourceURI         string         `json:"resource_uri"`
	RootFolder          storage.ItemID `json:"root_folder"`
	ConnectedOperations []string       `json:"connected_operations"`
}

func validateConnectedOperations(ops []string) error {
	for _, op := range ops {
		if err := invocation.ValidateOperation(invocation.Operation(op)); err != nil {
			return fmt.Errorf("connected_operations: %w", err)
		}
	}
	return nil
}

func (s *Server) handleCreateAddon(w http.ResponseWriter, r *http.Request) {
	var req addonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AccountID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if req.ResourceURI == "" {
		writeError(w, http.StatusBadRequest, "resource_uri is required")
		return
	}
	if err := validateConnectedOperations(req.ConnectedOperations); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := s.accounts.GetOrCreateResourceReference(r.Context(), req.ResourceURI)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	addon := &account.ConfiguredStorageAddon{
		ID:                  uuid.New(),
		AccountID:           req.AccountID,
		ResourceID:          ref.ID,
		RootFolder:          req.RootFolder,
		ConnectedOperations: req.ConnectedOperations,
	}
	if err := s.accounts.CreateAddon(r.Context(), addon); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addon)
}

func (s *Server) handleGetAddon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	addon, err := s.accounts.GetAddon(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addon)
}

func (s *Server) handleUpdateAddon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req addonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateConnectedOperations(req.ConnectedOperations); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addon, err := s.accounts.GetAddon(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if req.ResourceURI != "" {
		ref, err := s.accounts.GetOrCreateResourceReference(r.Context(), req.ResourceURI)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		addon.ResourceID = ref.ID
	}
	addon.RootFolder = req.RootFolder
	addon.ConnectedOperations = req.ConnectedOperations

	if err := s.accounts.UpdateAddon(r.Context(), addon); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addon)
}

func (s *Server) handleDeleteAddon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.accounts.DeleteAddon(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
