// Package ledger implements the durable deduplication tracker as two
// append-only, line-oriented files: a log of fully processed source folders
// and a JSONL backup of every embedded document. Both are meant to be
// readable by a human during recovery or auditing.
package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"lawrag/internal/domain"
)

// FileLedger keeps the full dedup state in memory for O(1) membership
// checks and appends every mutation to disk before updating the sets.
// Appends are serialized; a crash loses at most the last unsynced line.
type FileLedger struct {
	mu       sync.Mutex
	scanned  map[string]bool
	embedded map[string]bool

	scannedFile  *os.File
	embeddedFile *os.File

	// CorruptLines counts unreadable ledger lines skipped at load.
	CorruptLines int
}

// Open loads both ledger files, creating them if missing. Unreadable
// entries are logged and skipped rather than failing the load.
func Open(scannedPath, embeddedPath string) (*FileLedger, error) {
	l := &FileLedger{
		scanned:  make(map[string]bool),
		embedded: make(map[string]bool),
	}

	if err := l.loadScanned(scannedPath); err != nil {
		return nil, err
	}
	if err := l.loadEmbedded(embeddedPath); err != nil {
		l.scannedFile.Close()
		return nil, err
	}

	return l, nil
}

func (l *FileLedger) loadScanned(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open scanned-folders ledger: %w", err)
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		l.scanned[line] = true
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return fmt.Errorf("failed to read scanned-folders ledger: %w", err)
	}

	if _, err := f.Seek(0, 2); err != nil {
		f.Close()
		return err
	}
	l.scannedFile = f
	return nil
}

func (l *FileLedger) loadEmbedded(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open embedded-documents ledger: %w", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.LedgerEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.URL == "" {
			l.CorruptLines++
			log.Printf("ledger: skipping unreadable entry at %s:%d", path, lineNo)
			continue
		}
		l.embedded[entry.URL] = true
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return fmt.Errorf("failed to read embedded-documents ledger: %w", err)
	}

	if _, err := f.Seek(0, 2); err != nil {
		f.Close()
		return err
	}
	l.embeddedFile = f
	return nil
}

// IsScanned reports whether a source folder was fully processed before.
func (l *FileLedger) IsScanned(folderID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scanned[folderID]
}

// MarkScanned durably records a fully processed folder. Marking twice is
// a no-op.
func (l *FileLedger) MarkScanned(folderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.scanned[folderID] {
		return nil
	}
	if err := appendLine(l.scannedFile, folderID); err != nil {
		return fmt.Errorf("failed to append to scanned-folders ledger: %w", err)
	}
	l.scanned[folderID] = true
	return nil
}

// IsEmbedded reports whether an identity was already embedded and written.
func (l *FileLedger) IsEmbedded(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.embedded[identity]
}

// MarkEmbedded durably records an embedded identity. Called only after the
// vector store acknowledged the write, so the ledger never claims a write
// that did not happen. Marking twice is a no-op.
func (l *FileLedger) MarkEmbedded(entry domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedded[entry.URL] {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := appendLine(l.embeddedFile, string(data)); err != nil {
		return fmt.Errorf("failed to append to embedded-documents ledger: %w", err)
	}
	l.embedded[entry.URL] = true
	return nil
}

// Embedded returns all recorded identities.
func (l *FileLedger) Embedded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.embedded))
	for id := range l.embedded {
		ids = append(ids, id)
	}
	return ids
}

// Counts returns the number of scanned folders and embedded identities.
func (l *FileLedger) Counts() (scanned, embedded int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.scanned), len(l.embedded)
}

// Close closes both ledger files.
func (l *FileLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	if err := l.scannedFile.Close(); err != nil {
		firstErr = err
	}
	if err := l.embeddedFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func appendLine(f *os.File, line string) error {
	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return f.Sync()
}

// Truncate erases both ledger files and the in-memory state. Only the
// reset flow may call this, in lockstep with dropping the collection:
// clearing one without the other breaks the dedup invariant.
func (l *FileLedger) Truncate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, f := range []*os.File{l.scannedFile, l.embeddedFile} {
		if err := f.Truncate(0); err != nil {
			return err
		}
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		if err := f.Sync(); err != nil {
			return err
		}
	}
	l.scanned = make(map[string]bool)
	l.embedded = make(map[string]bool)
	return nil
}
