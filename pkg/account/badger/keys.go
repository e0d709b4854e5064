package badger

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the catalog's
// entity types into logical namespaces. Secondary indexes are denormalized
// into their own prefixes so relationship queries become range scans.
//
// Data Type                 Prefix  Key Format                      Value
// ========================================================================
// Accounts                  "a:"    a:<accountID>                   JSON
// Owner Index               "o:"    o:<hex(ownerURI)>:<accountID>   accountID bytes
// Resource References       "r:"    r:<resourceID>                  JSON
// Resource URI Index        "ru:"   ru:<resourceURI>                resourceID bytes
// Configured Addons         "c:"    c:<addonID>                     JSON
// Addons-by-Account Index   "ca:"   ca:<accountID>:<addonID>        addonID bytes
// Addons-by-Resource Index  "cr:"   cr:<resourceID>:<addonID>       addonID bytes
//
// Point lookups are O(1); relationship queries scan one index prefix.
// Owner URIs may themselves contain ":", and one URI can extend another
// ("urn:user" vs "urn:user:sub"), which would make the shorter owner's
// scan range cover the longer one's keys. Hex-encoding the URI closes
// that hole: the hex alphabet never contains the separator, so distinct
// owners always occupy disjoint ranges. The resource URI index is a
// point lookup on the exact key, which needs no such escaping.

const (
	prefixAccount         = "a:"
	prefixOwnerIndex      = "o:"
	prefixResource        = "r:"
	prefixResourceURI     = "ru:"
	prefixAddon           = "c:"
	prefixAddonByAccount  = "ca:"
	prefixAddonByResource = "cr:"
)

func keyAccount(id uuid.UUID) []byte {
	return []byte(prefixAccount + id.String())
}

func keyOwnerIndex(ownerURI string, id uuid.UUID) []byte {
	return []byte(prefixOwnerIndex + hex.EncodeToString([]byte(ownerURI)) + ":" + id.String())
}

// keyOwnerIndexPrefix is the range-scan prefix for all accounts of an owner.
func keyOwnerIndexPrefix(ownerURI string) []byte {
	return []byte(prefixOwnerIndex + hex.EncodeToString([]byte(ownerURI)) + ":")
}

func keyResource(id uuid.UUID) []byte {
	return []byte(prefixResource + id.String())
}

func keyResourceURI(resourceURI string) []byte {
	return []byte(prefixResourceURI + resourceURI)
}

func keyAddon(id uuid.UUID) []byte {
	return []byte(prefixAddon + id.String())
}

func keyAddonByAccount(accountID, addonID uuid.UUID) []byte {
	return []byte(prefixAddonByAccount + accountID.String() + ":" + addonID.String())
}

// keyAddonByAccountPrefix is the range-scan prefix for an account's addons.
func keyAddonByAccountPrefix(accountID uuid.UUID) []byte {
	return []byte(prefixAddonByAccount + accountID.String() + ":")
}

func keyAddonByResource(resourceID, addonID uuid.UUID) []byte {
	return []byte(prefixAddonByResource + resourceID.String() + ":" + addonID.String())
}

// keyAddonByResourcePrefix is the range-scan prefix for a resource's addons.
func keyAddonByResourcePrefix(resourceID uuid.UUID) []byte {
	return []byte(prefixAddonByResource + resourceID.String() + ":")
}
