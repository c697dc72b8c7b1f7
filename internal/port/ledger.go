package port

import "lawrag/internal/domain"

// Ledger is the durable dedup state: which source folders were fully
// processed and which document identities were already embedded. Marks are
// idempotent and appended durably before the in-memory sets are updated,
// so a crash never corrupts prior state.
type Ledger interface {
	IsScanned(folderID string) bool
	MarkScanned(folderID string) error

	IsEmbedded(identity string) bool
	MarkEmbedded(entry domain.LedgerEntry) error

	// Embedded returns all recorded identities, for verification.
	Embedded() []string

	Counts() (scanned, embedded int)
	Close() error
}
