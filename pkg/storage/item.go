package storage

import (
	"fmt"
	"strings"
)

// ItemType distinguishes files from folders in provider listings.
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"

	// ItemTypeAny is the zero filter value: no type filtering.
	ItemTypeAny ItemType = ""
)

// Valid reports whether t is a recognized item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeFile || t == ItemTypeFolder
}

// ItemID is an opaque, type-tagged path identifier for a storage item.
//
// The wire format is "{type}:{path}" where type is "file" or "folder" and
// path is slash-delimited and may itself contain colons. The empty ItemID
// identifies the root folder. ItemIDs appear in caller-visible tokens
// (default root folders, configured addon roots), so the format is stable.
type ItemID string

// RootItemID returns the identifier of the provider root folder.
func RootItemID() ItemID {
	return MakeItemID(ItemTypeFolder, "/")
}

// MakeItemID encodes an item type and provider-relative path into an ItemID.
func MakeItemID(itemType ItemType, path string) ItemID {
	return ItemID(string(itemType) + ":" + path)
}

// Parse decodes the ItemID into its type and path.
//
// The empty ItemID decodes to the root folder. The split is on the first
// colon only, so paths containing colons round-trip. A missing separator or
// an unrecognized type token fails with ErrInvalidItemID.
func (id ItemID) Parse() (ItemType, string, error) {
	if id == "" {
		return ItemTypeFolder, "/", nil
	}
	typeToken, path, found := strings.Cut(string(id), ":")
	if !found {
		return "", "", fmt.Errorf("item id %q has no type separator: %w", string(id), ErrInvalidItemID)
	}
	itemType := ItemType(typeToken)
	if !itemType.Valid() {
		return "", "", fmt.Errorf("item id %q has unknown type %q: %w", string(id), typeToken, ErrInvalidItemID)
	}
	return itemType, path, nil
}

// Item is the normalized description of one storage item.
type Item struct {
	ID   ItemID   `json:"id"`
	Name string   `json:"name"`
	Type ItemType `json:"type"`
}

// ItemPage is one page of a listing.
//
// Providers that return full listings in a single call leave NextCursor
// empty; the cursor is an opaque pass-through token otherwise.
type ItemPage struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ClientConfig is the client-facing connection configuration for a provider
// account, derived purely from static configuration. No network call is
// involved in building it.
type ClientConfig struct {
	Folder    string `json:"folder"`
	Host      string `json:"host"`
	VerifySSL bool   `json:"verify_ssl"`
}

// ExternalIdentity anchors an account to a human-readable external identity.
//
// AccountID is the externally-visible display name. Providers fall back to
// default labels when no display name is exposed, so this is NOT a stable
// unique key and must not be used as one.
type ExternalIdentity struct {
	AccountID string `json:"account_id"`
}
