// Package prefs persists small per-app settings in a bbolt file, one bucket
// per namespace.
package prefs

import (
	"errors"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound = errors.New("preference not found")
	ErrClosed   = errors.New("preference store is closed")
)

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Namespace returns a handle on one bucket. Buckets are created on first
// write. A nil Store yields a handle whose reads miss and writes fail.
func (s *Store) Namespace(name string) *Namespace {
	return &Namespace{store: s, bucket: []byte(name)}
}

type Namespace struct {
	store  *Store
	bucket []byte
}

func (n *Namespace) db() *bolt.DB {
	if n == nil || n.store == nil {
		return nil
	}
	return n.store.db
}

func (n *Namespace) Get(key string) ([]byte, error) {
	db := n.db()
	if db == nil {
		return nil, ErrClosed
	}
	var value []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(n.bucket)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

func (n *Namespace) Set(key string, value []byte) error {
	db := n.db()
	if db == nil {
		return ErrClosed
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(n.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

func (n *Namespace) Delete(key string) error {
	db := n.db()
	if db == nil {
		return ErrClosed
	}
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(n.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (n *Namespace) String(key, fallback string) string {
	v, err := n.Get(key)
	if err != nil {
		return fallback
	}
	return string(v)
}

func (n *Namespace) SetString(key, value string) error {
	return n.Set(key, []byte(value))
}

// Int returns fallback when the key is missing or not a number.
func (n *Namespace) Int(key string, fallback int) int {
	v, err := n.Get(key)
	if err != nil {
		return fallback
	}
	i, err := strconv.Atoi(string(v))
	if err != nil {
		return fallback
	}
	return i
}

func (n *Namespace) SetInt(key string, value int) error {
	return n.Set(key, []byte(strconv.Itoa(value)))
}
