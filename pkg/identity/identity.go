// Package identity derives stable, company-scoped identifiers for resolved
// persons and organizations.
//
// An identity is a version-5 UUID (SHA-1, RFC 4122) computed over
// lower(name) + "|" + companyScopeID in the DNS namespace. The namespace and
// algorithm are fixed: identifiers must survive restarts and be reproducible
// by any other implementation.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Separator joins the name and the company scope in the hashed string.
const Separator = "|"

// Namespace is the UUID namespace all identities are derived in.
var Namespace = uuid.NameSpaceDNS

// Key returns the string that is hashed for name within companyScopeID.
func Key(name, companyScopeID string) string {
	return strings.ToLower(name) + Separator + companyScopeID
}

// ID returns the identity of name within companyScopeID.
func ID(name, companyScopeID string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(Key(name, companyScopeID)))
}

// String is ID formatted in canonical hyphenated form.
func String(name, companyScopeID string) string {
	return ID(name, companyScopeID).String()
}
