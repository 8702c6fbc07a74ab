// Package id generates the prefixed identifiers used for every stored row.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each row type. Child rows carry their own prefix so a bare
// identifier in a log line is enough to tell which collection it belongs to.
const (
	Guide      = "guide"
	Tag        = "tag"
	Tool       = "tool"
	Step       = "step"
	Warning    = "warn"
	ErrorItem  = "err"
	Image      = "img"
	Attachment = "att"
	Account    = "acct"
	Feedback   = "fb"
	Visit      = "visit"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "guide-V1StGXR8_Z5jdHi6B-myT").
//
// The NanoID alphabet (A-Za-z0-9_-) never contains ':', which the store
// relies on when it splits composite keys.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
