package sessioncache

import "strings"

const sessionSegment = ":session:"

// Keys derives key/value backend keys from session IDs.
// The relational backend stores rows under the bare ID and does not use it.
type Keys struct {
	namespace string
}

// NewKeys returns a key deriver for the given namespace.
func NewKeys(namespace string) Keys {
	return Keys{namespace: namespace}
}

// Key returns "<namespace>:session:<id>".
func (k Keys) Key(id string) string {
	return k.namespace + sessionSegment + id
}

// Pattern returns the SCAN MATCH pattern covering every session key in the namespace.
// Glob metacharacters in the namespace are escaped so they match literally.
func (k Keys) Pattern() string {
	return globEscaper.Replace(k.namespace) + sessionSegment + "*"
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)
