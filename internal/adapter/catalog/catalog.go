// Package catalog keeps a local bbolt copy of everything that went into
// the vector collection: per identity, the point id, payload fields and
// the exact text that was encoded. The line ledgers stay the dedup source
// of truth; the catalog exists so verification can re-embed a missing
// point without re-reading thousands of dump folders.
package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketDocs = []byte("documents")

// Entry is one cataloged document.
type Entry struct {
	Identity      string    `json:"identity"`
	PointID       string    `json:"point_id"`
	Title         string    `json:"title"`
	EmbedText     string    `json:"embed_text"`
	Excerpt       string    `json:"excerpt"`
	ContentLength int       `json:"content_length"`
	DocumentType  string    `json:"document_type"`
	Status        string    `json:"status,omitempty"`
	Date          string    `json:"date,omitempty"`
	Model         string    `json:"model"`
	EmbeddedAt    time.Time `json:"embedded_at"`
}

type Catalog struct {
	db *bbolt.DB
}

func Open(path string) (*Catalog, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Put(entry Entry) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Put([]byte(entry.Identity), data)
	})
}

func (c *Catalog) Get(identity string) (Entry, error) {
	var entry Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(identity))
		if data == nil {
			return fmt.Errorf("identity not cataloged: %s", identity)
		}
		return json.Unmarshal(data, &entry)
	})
	return entry, err
}

// ForEach visits every cataloged entry. Corrupted entries are skipped.
func (c *Catalog) ForEach(fn func(Entry) error) error {
	return c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return nil
			}
			return fn(entry)
		})
	})
}

func (c *Catalog) Count() (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocs).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear erases the catalog. Only the reset flow may call this, together
// with dropping the collection and truncating the ledgers.
func (c *Catalog) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketDocs); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketDocs)
		return err
	})
}

func (c *Catalog) Close() error {
	return c.db.Close()
}
