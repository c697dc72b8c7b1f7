// Package pointid derives vector-store point ids from document identities.
package pointid

import "github.com/google/uuid"

// FromIdentity maps a document identity to its point id as a name-based
// UUID. The mapping is a pure function of the identity, so re-running
// ingestion upserts over the same point instead of creating a duplicate.
func FromIdentity(identity string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(identity)).String()
}
