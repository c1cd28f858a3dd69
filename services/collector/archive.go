package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Record describes one archived payload.
type Record struct {
	ID      uuid.UUID `json:"id"`
	Peer    string    `json:"peer"`
	At      time.Time `json:"at"`
	Bytes   int       `json:"bytes"`
	Packets int       `json:"packets"`
	Partial bool      `json:"partial,omitempty"`
	WAV     string    `json:"wav,omitempty"`
}

var ErrNotFound = errors.New("capture not found")

const (
	metaPrefix = "meta/"
	pcmPrefix  = "pcm/"
)

// Archive keeps payloads and their records in badger, keyed by capture ID.
type Archive struct {
	db *badger.DB
}

// OpenArchive opens dir; an empty dir keeps the archive in memory.
func OpenArchive(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

func (a *Archive) Put(rec Record, pcm []byte) error {
	meta, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	id := rec.ID.String()
	return a.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(pcmPrefix+id), pcm); err != nil {
			return err
		}
		return txn.Set([]byte(metaPrefix+id), meta)
	})
}

func (a *Archive) Get(id uuid.UUID) (Record, []byte, error) {
	var rec Record
	var pcm []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaPrefix + id.String()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &rec) }); err != nil {
			return err
		}
		item, err = txn.Get([]byte(pcmPrefix + id.String()))
		if err != nil {
			return err
		}
		pcm, err = item.ValueCopy(nil)
		return err
	})
	return rec, pcm, err
}

// List returns every record, in key order.
func (a *Archive) List() ([]Record, error) {
	var out []Record
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(metaPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &rec) }); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}
