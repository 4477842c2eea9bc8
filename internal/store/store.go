// Package store keeps named scene documents in a bbolt database.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/dshills/sceneforge/internal/scene"
)

// Store errors.
var (
	ErrNotFound    = errors.New("scene not found")
	ErrInvalidName = errors.New("invalid scene name")
)

const (
	bucketScenes    = "scenes"
	bucketRevisions = "revisions"
)

// initDB holds the bucket initializers run when a store is opened.
var initDB = map[string]func(*bolt.Tx) error{
	"initialize scene table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketScenes))
		return err
	},
	"initialize revision table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRevisions))
		return err
	},
}

// DefaultTimeout bounds how long Open waits for the database file lock.
const DefaultTimeout = time.Second

// Entry describes a stored scene.
type Entry struct {
	Name     string    `json:"name"`
	Revision string    `json:"revision"`
	Updated  time.Time `json:"updated"`
}

// Revision is one saved version of a scene.
type Revision struct {
	Seq      uint64    `json:"seq"`
	Name     string    `json:"name"`
	Revision string    `json:"revision"`
	Saved    time.Time `json:"saved"`
	Deleted  bool      `json:"deleted,omitempty"`
}

type record struct {
	Entry
	Document json.RawMessage `json:"document"`
}

// Store is a bbolt-backed scene store. It is safe for concurrent use.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	timeout time.Duration
	now     func() time.Time
}

// WithTimeout sets how long Open waits for the file lock.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Open opens or creates the store at path.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{timeout: DefaultTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: o.timeout})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: o.now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put saves doc under name and returns the new revision id.
func (s *Store) Put(name string, doc *scene.Document) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	data, err := scene.Marshal(doc, scene.FormatJSON)
	if err != nil {
		return "", err
	}

	rec := record{
		Entry: Entry{
			Name:     name,
			Revision: uuid.NewString(),
			Updated:  s.now().UTC(),
		},
		Document: data,
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketScenes)).Put([]byte(name), value); err != nil {
			return err
		}
		return addRevision(tx, Revision{Name: name, Revision: rec.Revision, Saved: rec.Updated})
	})
	if err != nil {
		return "", err
	}
	return rec.Revision, nil
}

func addRevision(tx *bolt.Tx, rev Revision) error {
	b := tx.Bucket([]byte(bucketRevisions))
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	rev.Seq = seq
	value, err := json.Marshal(rev)
	if err != nil {
		return err
	}
	return b.Put(marshalSeq(seq), value)
}

func (s *Store) getRecord(name string) (record, error) {
	var rec record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketScenes)).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return json.Unmarshal(v, &rec)
	})
	return rec, err
}

// Get returns the document saved under name.
func (s *Store) Get(name string) (*scene.Document, error) {
	rec, err := s.getRecord(name)
	if err != nil {
		return nil, err
	}
	return scene.Unmarshal(rec.Document, scene.FormatJSON)
}

// Stat returns the entry for name.
func (s *Store) Stat(name string) (Entry, error) {
	rec, err := s.getRecord(name)
	return rec.Entry, err
}

// Delete removes the scene saved under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketScenes))
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err := b.Delete([]byte(name)); err != nil {
			return err
		}
		return addRevision(tx, Revision{Name: name, Saved: s.now().UTC(), Deleted: true})
	})
}

// List returns every stored scene sorted by name.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketScenes)).ForEach(func(_, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			entries = append(entries, rec.Entry)
			return nil
		})
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, err
}

// History returns the revisions of name, oldest first. An empty name
// returns the history of every scene.
func (s *Store) History(name string) ([]Revision, error) {
	var revs []Revision
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketRevisions)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rev Revision
			if err := json.Unmarshal(v, &rev); err != nil {
				return err
			}
			if name == "" || rev.Name == name {
				revs = append(revs, rev)
			}
		}
		return nil
	})
	return revs, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
