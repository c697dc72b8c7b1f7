package scanner

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lawrag/internal/domain"
)

var multiBlank = regexp.MustCompile(`\n{3,}`)

// extractRecord pulls a raw record out of a scraped legal-portal page.
// Pages without a resolvable source URL are unusable for deduplication
// and are rejected.
func extractRecord(r io.Reader) (domain.RawRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.RawRecord{}, false
	}

	url := pageURL(doc)
	if url == "" {
		return domain.RawRecord{}, false
	}

	return domain.RawRecord{
		URL:     url,
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Content: extractContent(doc),
	}, true
}

func pageURL(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// extractContent tries the content areas used by the legal portals this
// corpus was scraped from, from most to least specific, before falling
// back to collecting substantial paragraphs.
func extractContent(doc *goquery.Document) string {
	selectorGroups := []string{
		"div.content1, div.content-detail, div.noidung1, div.noi-dung",
		"div.article-body, div.article-content, div.baiviet-content",
	}

	for _, selectors := range selectorGroups {
		var parts []string
		doc.Find(selectors).Each(func(_ int, sel *goquery.Selection) {
			sel.Find("script, style, iframe").Remove()
			if text := strings.TrimSpace(sel.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return cleanContent(strings.Join(parts, "\n\n"))
		}
	}

	// Fallback: substantial paragraphs only.
	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 50 {
			paragraphs = append(paragraphs, text)
		}
	})
	return cleanContent(strings.Join(paragraphs, "\n\n"))
}

func cleanContent(text string) string {
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
