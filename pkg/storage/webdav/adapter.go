// Package webdav implements the storage.Adapter contract over WebDAV
// PROPFIND, normalizing the loosely-structured multistatus responses that
// ownCloud-family servers return.
package webdav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/storelink/storelink/pkg/storage"
)

// PROPFIND request bodies, reproduced verbatim for wire compatibility.
// These are the only propfind variants this adapter sends.
const (
	propfindCurrentUserPrincipal = `<?xml version="1.0" encoding="UTF-8"?>
<d:propfind xmlns:d="DAV:">
    <d:prop>
        <d:current-user-principal/>
    </d:prop>
</d:propfind>`

	propfindDisplayName = `<?xml version="1.0" encoding="UTF-8"?>
<d:propfind xmlns:d="DAV:">
    <d:prop>
        <d:displayname/>
    </d:prop>
</d:propfind>`

	propfindAllProps = `<?xml version="1.0" encoding="UTF-8"?>
<d:propfind xmlns:d="DAV:">
    <d:allprop/>
</d:propfind>`
)

// fallbackDisplayName is the identity label used when the server exposes no
// displayname property.
const fallbackDisplayName = "default-name"

// principalPathFormat is the documented path convention for servers that do
// not expose current-user-principal.
const principalPathFormat = "/remote.php/dav/files/%s/"

// Config holds the static, per-service configuration of a WebDAV adapter.
type Config struct {
	// ExternalAPIURL is the base URL of the provider account
	// (scheme, host, optional root path).
	ExternalAPIURL string `mapstructure:"external_api_url" validate:"required,url"`

	// FallbackUsername is used to derive the principal path when the server
	// exposes no current-user-principal and the auth extras carry no
	// username. Empty means identity resolution fails in that case.
	FallbackUsername string `mapstructure:"fallback_username"`

	// Timeout bounds each transport request. Zero uses the transport default.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Adapter implements storage.Adapter against a WebDAV server.
//
// All state is immutable after construction; operations may run concurrently.
type Adapter struct {
	cfg       Config
	transport Transport
}

var _ storage.Adapter = (*Adapter)(nil)

// New creates an adapter using the given transport. Intended for tests and
// callers that bring their own transport.
func New(cfg Config, transport Transport) *Adapter {
	return &Adapter{cfg: cfg, transport: transport}
}

// NewWithCredentials creates an adapter with the default HTTP transport
// authenticated by the given account credentials.
func NewWithCredentials(cfg Config, creds storage.Credentials) *Adapter {
	return New(cfg, NewHTTPTransport(cfg.ExternalAPIURL, creds, cfg.Timeout))
}

// propfind issues one PROPFIND and returns the full response text. The
// response body is closed on every exit path.
func (a *Adapter) propfind(ctx context.Context, uriPath, depth, content string) (string, error) {
	body, err := a.transport.Propfind(ctx, uriPath, depth, content)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read PROPFIND response for %q: %w", uriPath, err)
	}
	return string(data), nil
}

// GetExternalIdentity resolves the account's display name as its identity.
//
// Servers without current-user-principal support are recovered by deriving
// the principal path from the auth extras username, or from the configured
// fallback username. With neither available the operation fails with
// ErrMissingUsername.
func (a *Adapter) GetExternalIdentity(ctx context.Context, extras map[string]string) (storage.ExternalIdentity, error) {
	response, err := a.propfind(ctx, stripAbsolutePath(""), depthSelf, propfindCurrentUserPrincipal)
	if err != nil {
		return storage.ExternalIdentity{}, err
	}

	principalURL, err := parseCurrentUserPrincipal(response)
	if err != nil {
		if !errors.Is(err, storage.ErrPropertyNotFound) {
			return storage.ExternalIdentity{}, err
		}
		username := extras["username"]
		if username == "" {
			username = a.cfg.FallbackUsername
		}
		if username == "" {
			return storage.ExternalIdentity{}, fmt.Errorf("resolve principal: %w", storage.ErrMissingUsername)
		}
		principalURL = fmt.Sprintf(principalPathFormat, username)
	}
	principalURL = strings.TrimLeft(principalURL, "/")

	response, err = a.propfind(ctx, stripAbsolutePath(principalURL), depthSelf, propfindDisplayName)
	if err != nil {
		return storage.ExternalIdentity{}, err
	}
	name, err := parseDisplayName(response)
	if err != nil {
		return storage.ExternalIdentity{}, err
	}
	return storage.ExternalIdentity{AccountID: name}, nil
}

// ListRootItems lists the immediate children of the account root.
func (a *Adapter) ListRootItems(ctx context.Context, cursor string) (storage.ItemPage, error) {
	return a.ListChildItems(ctx, storage.RootItemID(), cursor, storage.ItemTypeAny)
}

// GetItemInfo fetches the properties of one item. The identifier's path is
// forced back onto the result regardless of the href the server reports.
func (a *Adapter) GetItemInfo(ctx context.Context, id storage.ItemID) (storage.Item, error) {
	_, itemPath, err := id.Parse()
	if err != nil {
		return storage.Item{}, err
	}

	response, err := a.propfind(ctx, stripAbsolutePath(itemPath), depthSelf, propfindAllProps)
	if err != nil {
		return storage.Item{}, err
	}
	ms, err := parseMultistatus(response)
	if err != nil {
		return storage.Item{}, err
	}
	if len(ms.Responses) == 0 {
		return storage.Item{}, fmt.Errorf("no response element for %q: %w", itemPath, storage.ErrItemNotFound)
	}
	return itemFromResponse(&ms.Responses[0], itemPath), nil
}

// ListChildItems lists the immediate children of the identified folder.
//
// The listing always fits one page; the cursor is accepted for interface
// symmetry and no continuation token is produced.
func (a *Adapter) ListChildItems(ctx context.Context, id storage.ItemID, cursor string, filter storage.ItemType) (storage.ItemPage, error) {
	_, itemPath, err := id.Parse()
	if err != nil {
		return storage.ItemPage{}, err
	}

	response, err := a.propfind(ctx, stripAbsolutePath(itemPath), depthChildren, propfindAllProps)
	if err != nil {
		return storage.ItemPage{}, err
	}
	ms, err := parseMultistatus(response)
	if err != nil {
		return storage.ItemPage{}, err
	}
	return storage.ItemPage{
		Items: collectChildren(ms, itemPath, a.cfg.ExternalAPIURL, filter),
	}, nil
}

// BuildClientConfig derives the client connection configuration from the
// configured base API URL. No network call is made.
func (a *Adapter) BuildClientConfig() (storage.ClientConfig, error) {
	base := strings.TrimRight(a.cfg.ExternalAPIURL, "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return storage.ClientConfig{}, fmt.Errorf("parse external api url %q: %w", base, err)
	}
	return storage.ClientConfig{
		Folder:    "",
		Host:      parsed.Scheme + "://" + parsed.Host,
		VerifySSL: true,
	}, nil
}
