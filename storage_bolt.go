package cfdb

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"go.etcd.io/bbolt"
)

const boltFileName = "cfdb.bolt"

// boltKeyTag precedes every stored key. Bolt rejects zero-length keys, and an
// empty projection (a node without a name) must still be indexable.
const boltKeyTag = 0x01

type boltStorage struct {
	bdb *bbolt.DB
}

func openBoltStorage(dir string, opt Options) (storage, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.timeout()
	bopt.FreelistType = bbolt.FreelistMapType
	if opt.NoSync {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}
	if opt.MmapSize > 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}
	fn := filepath.Join(dir, boltFileName)
	bdb, err := bbolt.Open(fn, 0o666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("bolt %s: %w", fn, err)
	}
	return &boltStorage{bdb: bdb}, nil
}

func (s *boltStorage) BeginTx(writable bool) (storageTx, error) {
	btx, err := s.bdb.Begin(writable)
	if err != nil {
		return nil, err
	}
	return &boltStorageTx{btx: btx}, nil
}

func (s *boltStorage) Close() error {
	return s.bdb.Close()
}

type boltStorageTx struct {
	btx *bbolt.Tx
}

func (tx *boltStorageTx) Writable() bool { return tx.btx.Writable() }

func (tx *boltStorageTx) Bucket(name string) (storageBucket, error) {
	b := tx.btx.Bucket(unsafeBytesFromString(name))
	if b == nil {
		return nil, nil
	}
	return boltBucket{b: b}, nil
}

func (tx *boltStorageTx) CreateBucket(name string) (storageBucket, error) {
	b, err := tx.btx.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, err
	}
	return boltBucket{b: b}, nil
}

func (tx *boltStorageTx) BucketNames() ([]string, error) {
	var names []string
	err := tx.btx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
		names = append(names, string(name))
		return nil
	})
	return names, err
}

func (tx *boltStorageTx) Commit() error { return tx.btx.Commit() }

func (tx *boltStorageTx) Rollback() error {
	err := tx.btx.Rollback()
	if err == bbolt.ErrTxClosed {
		return nil
	}
	return err
}

type boltBucket struct {
	b *bbolt.Bucket
}

func boltKey(key []byte) []byte {
	k := make([]byte, 0, len(key)+1)
	k = append(k, boltKeyTag)
	return append(k, key...)
}

func (b boltBucket) Get(key []byte) ([]byte, error) {
	return b.b.Get(boltKey(key)), nil
}

func (b boltBucket) Put(key, value []byte) error {
	return b.b.Put(boltKey(key), value)
}

func (b boltBucket) Delete(key []byte) error {
	return b.b.Delete(boltKey(key))
}

func (b boltBucket) Cursor() storageCursor { return boltCursor{c: b.b.Cursor()} }

func (b boltBucket) KeyCount() (int, error) {
	return b.b.Stats().KeyN, nil
}

type boltCursor struct {
	c *bbolt.Cursor
}

func (c boltCursor) First() ([]byte, []byte) { return boltUntag(c.c.First()) }

func (c boltCursor) Seek(seek []byte) ([]byte, []byte) {
	return boltUntag(c.c.Seek(boltKey(seek)))
}

func (c boltCursor) Next() ([]byte, []byte) { return boltUntag(c.c.Next()) }

func (c boltCursor) Close() error { return nil }

func boltUntag(k, v []byte) ([]byte, []byte) {
	if len(k) == 0 || k[0] != boltKeyTag {
		return nil, nil
	}
	if v == nil {
		v = []byte{}
	}
	return k[1:], v
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
