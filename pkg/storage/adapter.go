package storage

import "context"

// Adapter mediates access to one external storage account behind a uniform
// set of generic operations.
//
// Implementations translate these operations into provider-specific wire
// calls (WebDAV PROPFIND, S3 API calls, ...) and normalize the results into
// the Item model. Adapters hold no shared mutable state: every operation is
// independently invocable and safe to run concurrently with the others.
//
// Timeouts, retries, and authentication details belong to the transport an
// adapter is constructed with; adapters surface transport failures unchanged.
type Adapter interface {
	// GetExternalIdentity resolves the externally-visible identity of the
	// authorized account. extras carries provider-specific hints from the
	// authorization flow (e.g. "username").
	GetExternalIdentity(ctx context.Context, extras map[string]string) (ExternalIdentity, error)

	// ListRootItems lists the immediate children of the provider root.
	// The cursor is an opaque pass-through token.
	ListRootItems(ctx context.Context, cursor string) (ItemPage, error)

	// GetItemInfo returns the normalized item for the given identifier.
	// Fails with ErrItemNotFound if the provider has no such item.
	GetItemInfo(ctx context.Context, id ItemID) (Item, error)

	// ListChildItems lists the immediate children of the identified folder,
	// optionally filtered by item type (ItemTypeAny disables filtering).
	ListChildItems(ctx context.Context, id ItemID, cursor string, filter ItemType) (ItemPage, error)

	// BuildClientConfig derives the client connection configuration from
	// static account configuration. Never performs a network call.
	BuildClientConfig() (ClientConfig, error)
}
