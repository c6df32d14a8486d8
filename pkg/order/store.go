//go:generate mockgen -source ./store.go -destination=./mocks/store.go -package=mocks
package order

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// Snapshot is a fetched document together with its version token.
type Snapshot struct {
	Content []byte
	Version string
}

// Store is a versioned document store. Write must fail when version is not
// the token of the currently stored content.
type Store interface {
	Fetch(ctx context.Context) (Snapshot, error)
	Write(ctx context.Context, content []byte, version, message string) error
}

// ContentVersion returns the git blob hash of content. Backends without a
// native revision marker use it as the version token.
func ContentVersion(content []byte) string {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
