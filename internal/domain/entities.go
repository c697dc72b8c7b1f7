package domain

import "time"

// RawRecord is a document as it appears in a scrape dump, before
// normalization. Date and Number are stored inconsistently at the source
// (a phone number sometimes ends up in Number); both are opaque strings
// and carry no retrieval semantics.
type RawRecord struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	DocumentType string `json:"document_type"`
	Status       string `json:"status"`
	Date         string `json:"date"`
	Number       string `json:"number"`
}

// Document is a unique legal-text record ready for embedding. Identity is
// the source URL with any anchor fragment stripped; one document exists per
// identity no matter how many dump folders contain a copy.
type Document struct {
	Identity      string
	Title         string
	EmbedText     string // title + content, capped, fed to the encoder
	Excerpt       string // bounded content excerpt stored in the payload
	ContentLength int    // rune count of the untruncated content
	DocumentType  string
	Status        string
	Date          string
}

// Payload is what the vector store keeps alongside each point.
type Payload struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	ContentLength int    `json:"content_length"`
	DocumentType  string `json:"document_type"`
	Status        string `json:"status,omitempty"`
	Date          string `json:"date,omitempty"`
}

// ScoredDocument is a retrieval hit.
type ScoredDocument struct {
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}

// Outcome tags what happened to a single record during ingestion.
type Outcome int

const (
	Accepted Outcome = iota
	SkipEmpty
	SkipDuplicate
	SkipMalformed
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case SkipEmpty:
		return "skip-empty"
	case SkipDuplicate:
		return "skip-duplicate"
	case SkipMalformed:
		return "skip-malformed"
	default:
		return "unknown"
	}
}

// LedgerEntry is one line of the embedded-documents ledger. It doubles as
// a human-inspectable backup of what went into the collection.
type LedgerEntry struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	ContentLength int       `json:"content_length"`
	EmbeddedAt    time.Time `json:"embedded_at"`
}

// RunSummary aggregates per-item outcomes of one ingestion run.
type RunSummary struct {
	FoldersSeen      int
	FoldersScanned   int
	FoldersSkipped   int
	FoldersFailed    int
	RecordsSeen      int
	Embedded         int
	SkippedEmpty     int
	SkippedDuplicate int
	SkippedMalformed int
	EncodingFailures int
	Elapsed          time.Duration
}
