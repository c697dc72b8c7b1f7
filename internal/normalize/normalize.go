// Package normalize turns raw scrape records into embeddable documents.
package normalize

import (
	"strings"

	"lawrag/internal/domain"
)

// Limits bounds the normalized fields, all measured in runes.
type Limits struct {
	MinContentLen   int // records with less content are rejected
	ExcerptMaxLen   int
	EmbedTextMaxLen int
	TitleMaxLen     int
}

// Normalizer applies identity normalization and excerpt bounding.
type Normalizer struct {
	limits Limits
}

func New(limits Limits) *Normalizer {
	if limits.ExcerptMaxLen == 0 {
		limits.ExcerptMaxLen = 2000
	}
	if limits.EmbedTextMaxLen == 0 {
		limits.EmbedTextMaxLen = 8000
	}
	if limits.TitleMaxLen == 0 {
		limits.TitleMaxLen = 500
	}
	return &Normalizer{limits: limits}
}

// Identity derives the deduplication key from a source URL: the anchor
// fragment is stripped so every section link of one document maps to the
// same identity.
func Identity(rawURL string) string {
	url := strings.TrimSpace(rawURL)
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return url
}

// Normalize converts a raw record into a Document, tagging the outcome.
// Records without a URL or with empty or too-short content are rejected:
// an empty-content vector carries no retrievable signal and only pollutes
// the index.
func (n *Normalizer) Normalize(rec domain.RawRecord) (domain.Document, domain.Outcome) {
	identity := Identity(rec.URL)
	if identity == "" {
		return domain.Document{}, domain.SkipMalformed
	}

	content := strings.TrimSpace(rec.Content)
	if content == "" {
		return domain.Document{}, domain.SkipEmpty
	}
	contentLen := len([]rune(content))
	if n.limits.MinContentLen > 0 && contentLen < n.limits.MinContentLen {
		return domain.Document{}, domain.SkipEmpty
	}

	title := truncateRunes(strings.TrimSpace(rec.Title), n.limits.TitleMaxLen)

	embedText := content
	if title != "" {
		embedText = title + "\n\n" + content
	}
	embedText = truncateRunes(embedText, n.limits.EmbedTextMaxLen)

	return domain.Document{
		Identity:      identity,
		Title:         title,
		EmbedText:     embedText,
		Excerpt:       truncateRunes(content, n.limits.ExcerptMaxLen),
		ContentLength: contentLen,
		DocumentType:  rec.DocumentType,
		Status:        rec.Status,
		Date:          rec.Date,
	}, domain.Accepted
}

// truncateRunes cuts s to at most max runes without splitting a rune.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
