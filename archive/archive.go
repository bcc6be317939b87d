// Package archive stores finished projection runs in a bolt database,
// so that they can be subset or plotted later without simulating
// again.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/epiproj/projection"
	"bitbucket.org/Davydov/epiproj/renewal"
)

// log is the global logging variable.
var log = logging.MustGetLogger("archive")

// PROJECTIONS is the bucket name for all the runs.
var PROJECTIONS = []byte("projections")

// ErrNotFound is returned by Load for unknown keys.
var ErrNotFound = errors.New("Projection not found")

// Record is one stored projection run.
type Record struct {
	Projection *projection.Projection `json:"projection"`
	Settings   renewal.Settings       `json:"settings"`
	Seed       int64                  `json:"seed"`
	Input      string                 `json:"input,omitempty"`
	Created    time.Time              `json:"created"`
}

// Archive provides operations with stored projections.
type Archive struct {
	db *bolt.DB
}

// Open opens (or creates) the archive database file.
func Open(path string) (*Archive, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewArchive(db), nil
}

// NewArchive creates a new Archive on an open database.
func NewArchive(db *bolt.DB) *Archive {
	return &Archive{db: db}
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores the record under the key, replacing older records.
func (a *Archive) Save(key string, r *Record) error {
	if r.Projection == nil {
		return errors.New("Record has no projection")
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	dataB, err := json.Marshal(r)
	if err != nil {
		log.Error("Error serializing projection", err)
		return err
	}
	err = SaveData(a.db, []byte(key), dataB)
	if err != nil {
		log.Error("Error saving projection", err)
		return err
	}
	nd, ns := r.Projection.Dims()
	log.Noticef("Saved projection %q (%d days, %d simulations)", key, nd, ns)
	return nil
}

// Load returns the record stored under the key.
func (a *Archive) Load(key string) (*Record, error) {
	b, err := LoadData(a.db, []byte(key))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Projection == nil {
		return nil, fmt.Errorf("Record %q has no projection", key)
	}
	log.Infof("Loaded projection %q created %v", key, r.Created)
	return &r, nil
}

// Keys returns the keys of all stored projections in byte order.
func (a *Archive) Keys() ([]string, error) {
	var keys []string
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(PROJECTIONS)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Delete removes the record stored under the key.
func (a *Archive) Delete(key string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(PROJECTIONS)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(PROJECTIONS)
		if err != nil {
			return err
		}

		err = b.Put(key, data)
		return err
	})
	return err
}

// LoadData loads data from bolt database. It returns nil if the key
// is not present.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(PROJECTIONS)
		if b == nil {
			return nil
		}

		// v is only valid during the transaction
		v := b.Get(key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
