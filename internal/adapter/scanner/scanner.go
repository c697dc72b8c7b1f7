// Package scanner enumerates scrape dump folders and yields raw document
// records. It never mutates source data; a corrupt record or file is
// counted and skipped, not fatal to the scan.
package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"lawrag/internal/domain"
)

type Scanner struct {
	pattern  string // folder-name glob, e.g. "traffic_laws_*"
	dataFile string // JSON dump file expected inside each folder
}

func New(pattern, dataFile string) *Scanner {
	if pattern == "" {
		pattern = "*"
	}
	if dataFile == "" {
		dataFile = "scraped_data_with_content.json"
	}
	return &Scanner{pattern: pattern, dataFile: dataFile}
}

// Folders lists the dump folders directly under root whose name matches
// the configured pattern, in sorted order so runs are deterministic.
func (s *Scanner) Folders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", err)
	}

	var folders []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matched, err := doublestar.Match(s.pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid folder pattern %q: %w", s.pattern, err)
		}
		if matched {
			folders = append(folders, e.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// Load reads all records of one dump folder. The JSON dump may hold an
// array or a single object; records that fail to decode are skipped and
// counted in malformed. When the dump file is absent, raw .html pages in
// the folder are extracted instead.
func (s *Scanner) Load(root, folder string) (records []domain.RawRecord, malformed int, err error) {
	dumpPath := filepath.Join(root, folder, s.dataFile)

	data, err := os.ReadFile(dumpPath)
	if os.IsNotExist(err) {
		return s.loadHTML(filepath.Join(root, folder))
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", dumpPath, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		// Not an array; try a single object.
		var rec domain.RawRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, 0, fmt.Errorf("failed to parse %s: %w", dumpPath, err)
		}
		return []domain.RawRecord{rec}, 0, nil
	}

	records = make([]domain.RawRecord, 0, len(raws))
	for _, raw := range raws {
		var rec domain.RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			malformed++
			continue
		}
		records = append(records, rec)
	}
	return records, malformed, nil
}

// loadHTML extracts records from raw .html pages in a folder.
func (s *Scanner) loadHTML(dir string) (records []domain.RawRecord, malformed int, err error) {
	pages, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, 0, err
	}
	sort.Strings(pages)

	for _, page := range pages {
		f, err := os.Open(page)
		if err != nil {
			malformed++
			continue
		}
		rec, ok := extractRecord(f)
		f.Close()
		if !ok {
			malformed++
			continue
		}
		records = append(records, rec)
	}
	return records, malformed, nil
}
