package cfdb

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Badger has a single flat keyspace. A column family is a key prefix
// (name + 0x00); the set of existing families lives under badgerRegistryPrefix.
const (
	badgerFamilySep      = "\x00"
	badgerRegistryPrefix = "\x00cf:"
)

type badgerStorage struct {
	bdb *badger.DB
	// writeMu serializes writable transactions, which gives Badger the same
	// single-writer behavior as Bolt.
	writeMu sync.Mutex
}

func openBadgerStorage(dir string, opt Options) (storage, error) {
	bopt := badger.DefaultOptions(dir)
	bopt.Logger = nil
	bopt.SyncWrites = !opt.NoSync
	bdb, err := badger.Open(bopt)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &badgerStorage{bdb: bdb}, nil
}

func (s *badgerStorage) BeginTx(writable bool) (storageTx, error) {
	if writable {
		s.writeMu.Lock()
	}
	return &badgerStorageTx{s: s, txn: s.bdb.NewTransaction(writable), writable: writable}, nil
}

func (s *badgerStorage) Close() error {
	return s.bdb.Close()
}

type badgerStorageTx struct {
	s        *badgerStorage
	txn      *badger.Txn
	writable bool
	done     bool
}

func (tx *badgerStorageTx) Writable() bool { return tx.writable }

func (tx *badgerStorageTx) Bucket(name string) (storageBucket, error) {
	_, err := tx.txn.Get([]byte(badgerRegistryPrefix + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return badgerBucket{tx: tx, prefix: []byte(name + badgerFamilySep)}, nil
}

func (tx *badgerStorageTx) CreateBucket(name string) (storageBucket, error) {
	if !tx.writable {
		return nil, fmt.Errorf("tx not writable")
	}
	if err := tx.txn.Set([]byte(badgerRegistryPrefix+name), []byte{1}); err != nil {
		return nil, err
	}
	return badgerBucket{tx: tx, prefix: []byte(name + badgerFamilySep)}, nil
}

func (tx *badgerStorageTx) BucketNames() ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(badgerRegistryPrefix)
	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var names []string
	for it.Rewind(); it.Valid(); it.Next() {
		names = append(names, strings.TrimPrefix(string(it.Item().Key()), badgerRegistryPrefix))
	}
	return names, nil
}

func (tx *badgerStorageTx) Commit() error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	err := tx.txn.Commit()
	tx.finish()
	return err
}

func (tx *badgerStorageTx) Rollback() error {
	tx.txn.Discard()
	tx.finish()
	return nil
}

func (tx *badgerStorageTx) finish() {
	if tx.done {
		return
	}
	tx.done = true
	if tx.writable {
		tx.s.writeMu.Unlock()
	}
}

type badgerBucket struct {
	tx     *badgerStorageTx
	prefix []byte
}

func (b badgerBucket) key(key []byte) []byte {
	k := make([]byte, 0, len(b.prefix)+len(key))
	k = append(k, b.prefix...)
	return append(k, key...)
}

func (b badgerBucket) Get(key []byte) ([]byte, error) {
	item, err := b.tx.txn.Get(b.key(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (b badgerBucket) Put(key, value []byte) error {
	// Badger holds on to both slices until commit.
	return b.tx.txn.Set(b.key(key), slices.Clone(value))
}

func (b badgerBucket) Delete(key []byte) error {
	return b.tx.txn.Delete(b.key(key))
}

func (b badgerBucket) Cursor() storageCursor {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = b.prefix
	return &badgerCursor{it: b.tx.txn.NewIterator(opts), prefix: b.prefix}
}

func (b badgerBucket) KeyCount() (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = b.prefix
	it := b.tx.txn.NewIterator(opts)
	defer it.Close()

	var n int
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n, nil
}

type badgerCursor struct {
	it     *badger.Iterator
	prefix []byte
	err    error
	done   bool
}

func (c *badgerCursor) First() ([]byte, []byte) {
	c.it.Seek(c.prefix)
	return c.current()
}

func (c *badgerCursor) Seek(seek []byte) ([]byte, []byte) {
	k := make([]byte, 0, len(c.prefix)+len(seek))
	k = append(k, c.prefix...)
	c.it.Seek(append(k, seek...))
	return c.current()
}

func (c *badgerCursor) Next() ([]byte, []byte) {
	if c.done {
		return nil, nil
	}
	c.it.Next()
	return c.current()
}

func (c *badgerCursor) current() ([]byte, []byte) {
	if !c.it.ValidForPrefix(c.prefix) {
		c.done = true
		return nil, nil
	}
	c.done = false
	item := c.it.Item()
	v, err := item.ValueCopy(nil)
	if err != nil {
		c.err = err
		c.done = true
		return nil, nil
	}
	if v == nil {
		v = []byte{}
	}
	return item.Key()[len(c.prefix):], v
}

func (c *badgerCursor) Close() error {
	c.it.Close()
	return c.err
}
