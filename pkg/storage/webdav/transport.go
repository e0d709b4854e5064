package webdav

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/storelink/storelink/pkg/storage"
)

// Depth header values for PROPFIND requests.
const (
	depthSelf     = "0"
	depthChildren = "1"
)

// Transport issues authenticated PROPFIND requests against a WebDAV account.
//
// Implementations own authentication, timeouts, and any retry policy; the
// adapter issues one logical request at a time and reads the returned body
// to completion before closing it. Failures are surfaced unchanged.
type Transport interface {
	// Propfind issues a PROPFIND against the account-relative uriPath with
	// the given Depth header and XML request body. The caller must close
	// the returned body on every exit path.
	Propfind(ctx context.Context, uriPath, depth, content string) (io.ReadCloser, error)
}

// HTTPTransport is the default Transport over net/http with basic auth.
type HTTPTransport struct {
	baseURL string
	creds   storage.Credentials
	client  *http.Client
}

// NewHTTPTransport creates a transport for the given account base URL.
// A zero timeout defaults to 30 seconds.
func NewHTTPTransport(baseURL string, creds storage.Credentials, timeout time.Duration) *HTTPTransport {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Propfind implements Transport.
func (t *HTTPTransport) Propfind(ctx context.Context, uriPath, depth, content string) (io.ReadCloser, error) {
	url := t.baseURL + "/" + strings.TrimLeft(uriPath, "/")
	req, err := http.NewRequestWithContext(ctx, "PROPFIND", url, strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("build PROPFIND request for %q: %w", uriPath, err)
	}
	req.Header.Set("Depth", depth)
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	if t.creds.Username != "" {
		req.SetBasicAuth(t.creds.Username, t.creds.Password)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PROPFIND %q: %w", uriPath, err)
	}
	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("PROPFIND %q: %w", uriPath, storage.ErrItemNotFound)
		}
		return nil, fmt.Errorf("PROPFIND %q: unexpected status %s", uriPath, resp.Status)
	}
	return resp.Body, nil
}
