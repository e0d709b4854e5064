package storage

import "context"

// ProviderType selects an Adapter implementation.
//
// Variants are selected at construction time through the service registry;
// there is no runtime provider switching on a live adapter.
type ProviderType string

const (
	ProviderWebDAV ProviderType = "webdav"
	ProviderS3     ProviderType = "s3"
	ProviderMemory ProviderType = "memory"
)

// Valid reports whether p is a recognized provider type.
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderWebDAV, ProviderS3, ProviderMemory:
		return true
	}
	return false
}

// Credentials are the per-account secrets an adapter authenticates with.
//
// For WebDAV providers these are HTTP basic auth credentials; for S3
// providers Username/Password carry the access key ID and secret key.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// AdapterFactory builds an Adapter bound to one account's credentials.
//
// A factory is registered per configured external service; the service's
// static configuration (base URLs, buckets, fallbacks) is captured in the
// closure, while credentials vary per authorized account.
type AdapterFactory func(ctx context.Context, creds Credentials) (Adapter, error)
