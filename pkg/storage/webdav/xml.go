package webdav

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/storelink/storelink/pkg/storage"
)

const davNamespace = "DAV:"

// multistatus models the WebDAV multistatus response envelope: one response
// element per resource, each carrying propstat blocks with the properties
// the server chose to report.
type multistatus struct {
	XMLName   xml.Name        `xml:"DAV: multistatus"`
	Responses []responseEntry `xml:"DAV: response"`
}

type responseEntry struct {
	Href      string     `xml:"DAV: href"`
	Propstats []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Status string `xml:"DAV: status"`
	Prop   prop   `xml:"DAV: prop"`
}

type prop struct {
	DisplayName  string       `xml:"DAV: displayname"`
	ResourceType resourceType `xml:"DAV: resourcetype"`
}

type resourceType struct {
	Collection *struct{} `xml:"DAV: collection"`
}

// displayName returns the first non-empty displayname across propstat
// blocks, or "" when the server reported none.
func (r *responseEntry) displayName() string {
	for _, ps := range r.Propstats {
		if name := strings.TrimSpace(ps.Prop.DisplayName); name != "" {
			return name
		}
	}
	return ""
}

// isCollection reports whether any propstat block carries the
// resourcetype/collection marker.
func (r *responseEntry) isCollection() bool {
	for _, ps := range r.Propstats {
		if ps.Prop.ResourceType.Collection != nil {
			return true
		}
	}
	return false
}

// parseMultistatus decodes a multistatus document.
func parseMultistatus(xmlText string) (*multistatus, error) {
	var ms multistatus
	if err := xml.Unmarshal([]byte(xmlText), &ms); err != nil {
		return nil, fmt.Errorf("decode multistatus (%v): %w", err, storage.ErrMalformedResponse)
	}
	return &ms, nil
}

// itemFromResponse normalizes one response element into an Item for the
// already-known account-relative path. The item type is determined by the
// presence of the collection marker; the name falls back to the last path
// segment when the server reports no display name.
func itemFromResponse(resp *responseEntry, path string) storage.Item {
	itemType := storage.ItemTypeFile
	if resp.isCollection() {
		itemType = storage.ItemTypeFolder
	}
	name := resp.displayName()
	if name == "" {
		name = lastPathSegment(path)
	}
	return storage.Item{
		ID:   storage.MakeItemID(itemType, path),
		Name: name,
		Type: itemType,
	}
}

// collectChildren maps every response element through the path codec,
// excluding the container's own self-referencing entry and applying the
// optional type filter.
func collectChildren(ms *multistatus, selfPath, baseAPIURL string, filter storage.ItemType) []storage.Item {
	items := []storage.Item{}
	for i := range ms.Responses {
		resp := &ms.Responses[i]
		href := strings.TrimSpace(resp.Href)
		if href == "" {
			continue
		}
		childPath := hrefToPath(href, baseAPIURL)
		if strings.TrimRight(childPath, "/") == strings.TrimRight(selfPath, "/") {
			continue
		}
		item := itemFromResponse(resp, childPath)
		if filter != storage.ItemTypeAny && item.Type != filter {
			continue
		}
		items = append(items, item)
	}
	return items
}

// findPropertyText extracts the character data of the first element whose
// DAV:-qualified local-name path matches the given sequence, searched at any
// depth (the "current-user-principal"/"href" and "displayname" lookups).
//
// Fails with ErrMalformedResponse when the document does not parse and with
// ErrPropertyNotFound when the first matching element carries no text. Later
// matches are never consulted: an empty first match is a missing property.
func findPropertyText(xmlText string, path ...string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(xmlText))
	var elemPath []xml.Name
	var text strings.Builder
	capturing := -1

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode response (%v): %w", err, storage.ErrMalformedResponse)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			elemPath = append(elemPath, t.Name)
			if capturing < 0 && pathMatches(elemPath, path) {
				capturing = len(elemPath)
				text.Reset()
			}
		case xml.CharData:
			if capturing >= 0 && len(elemPath) == capturing {
				text.Write(t)
			}
		case xml.EndElement:
			if capturing >= 0 && len(elemPath) == capturing {
				if value := strings.TrimSpace(text.String()); value != "" {
					return value, nil
				}
				return "", fmt.Errorf("property %q: %w", strings.Join(path, "/"), storage.ErrPropertyNotFound)
			}
			if len(elemPath) > 0 {
				elemPath = elemPath[:len(elemPath)-1]
			}
		}
	}
	return "", fmt.Errorf("property %q: %w", strings.Join(path, "/"), storage.ErrPropertyNotFound)
}

// pathMatches reports whether the tail of elemPath is the given sequence of
// DAV:-namespaced local names.
func pathMatches(elemPath []xml.Name, want []string) bool {
	if len(elemPath) < len(want) {
		return false
	}
	tail := elemPath[len(elemPath)-len(want):]
	for i, name := range tail {
		if name.Space != davNamespace || name.Local != want[i] {
			return false
		}
	}
	return true
}

// parseCurrentUserPrincipal extracts the current-user-principal href.
func parseCurrentUserPrincipal(xmlText string) (string, error) {
	return findPropertyText(xmlText, "current-user-principal", "href")
}

// parseDisplayName extracts the displayname property, substituting a fixed
// fallback label when the property is absent. Display name absence is not
// fatal; malformed documents still fail.
func parseDisplayName(xmlText string) (string, error) {
	name, err := findPropertyText(xmlText, "displayname")
	if err != nil {
		if errors.Is(err, storage.ErrPropertyNotFound) {
			return fallbackDisplayName, nil
		}
		return "", err
	}
	return name, nil
}
