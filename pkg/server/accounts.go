package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/storelink/pkg/account"
	"github.com/storelink/storelink/pkg/storage"
)

// accountRequest is the request body for creating and updating accounts.
type accountRequest struct {
	OwnerURI          string              `json:"owner_uri"`
	ServiceName       string              `json:"service_name"`
	Credentials       storage.Credentials `json:"credentials"`
	DefaultRootFolder storage.ItemID      `json:"default_root_folder"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OwnerURI == "" {
		writeError(w, http.StatusBadRequest, "owner_uri is required")
		return
	}
	if !s.registry.ServiceExists(req.ServiceName) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown service %q", req.ServiceName))
		return
	}

	now := time.Now().UTC()
	acc := &account.AuthorizedStorageAccount{
		ID:                uuid.New(),
		OwnerURI:          req.OwnerURI,
		ServiceName:       req.ServiceName,
		Credentials:       req.Credentials,
		DefaultRootFolder: req.DefaultRootFolder,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.accounts.CreateAccount(r.Context(), acc); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	ownerURI := r.URL.Query().Get("owner_uri")
	if ownerURI == "" {
		writeError(w, http.StatusBadRequest, "owner_uri query parameter is required")
		return
	}

	accounts, err := s.accounts.ListAccountsByOwner(r.Context(), ownerURI)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	acc, err := s.accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acc, err := s.accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if req.ServiceName != "" && req.ServiceName != acc.ServiceName {
		if !s.registry.ServiceExists(req.ServiceName) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown service %q", req.ServiceName))
			return
		}
		acc.ServiceName = req.ServiceName
	}
	if req.OwnerURI != "" {
		acc.OwnerURI = req.OwnerURI
	}
	if req.Credentials.Username != "" || req.Credentials.Password != "" {
		acc.Credentials = req.Credentials
	}
	acc.DefaultRootFolder = req.DefaultRootFolder
	acc.UpdatedAt = time.Now().UTC()

	if err := s.accounts.UpdateAccount(r.Context(), acc); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.accounts.DeleteAccount(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccountAddons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.accounts.GetAccount(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	addons, err := s.accounts.ListAddonsByAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addons)
}

// resourceRequest is the request body for resolving resource references.
type resourceRequest struct {
	ResourceURI string `json:"resource_uri"`
}

func (s *Server) handleResolveResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ResourceURI == "" {
		writeError(w, http.StatusBadRequest, "resource_uri is required")
		return
	}

	ref, err := s.accounts.GetOrCreateResourceReference(r.Context(), req.ResourceURI)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ref, err := s.accounts.GetResourceReference(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleListResourceAddons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.accounts.GetResourceReference(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	addons, err := s.accounts.ListAddonsByResource(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addons)
}
