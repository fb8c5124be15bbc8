package cfdb

import "fmt"

// storage represents a key-value storage backend (Bolt, Badger, in-memory).
// Column families map onto its flat, sorted buckets.
type storage interface {
	// BeginTx starts a new transaction.
	BeginTx(writable bool) (storageTx, error)
	// Close closes the storage.
	Close() error
}

// storageTx represents a storage transaction.
type storageTx interface {
	// Writable returns true if this is a writable transaction.
	Writable() bool

	// Bucket returns a bucket, or nil if it doesn't exist.
	Bucket(name string) (storageBucket, error)

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (storageBucket, error)

	// BucketNames lists existing buckets in name order.
	BucketNames() ([]string, error)

	// Commit commits the transaction.
	Commit() error

	// Rollback aborts the transaction. It should be safe to call multiple times,
	// including after Commit.
	Rollback() error
}

// storageBucket represents a bucket (sorted key-value collection).
type storageBucket interface {
	// Get retrieves a value by key. Returns nil if not found. The returned
	// slice is only valid until the transaction ends.
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair.
	Put(key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key []byte) error

	// Cursor returns a cursor for forward iteration. It must be closed
	// before the transaction ends.
	Cursor() storageCursor

	// KeyCount returns the number of keys in the bucket.
	KeyCount() (int, error)
}

// storageCursor iterates over a sorted bucket. Returned slices are only valid
// until the next cursor call.
type storageCursor interface {
	// First moves to the first key-value pair.
	First() (key, value []byte)

	// Seek moves to the first key >= seek.
	Seek(seek []byte) (key, value []byte)

	// Next moves to the next key-value pair.
	Next() (key, value []byte)

	// Close releases the cursor and reports any error hit while iterating.
	Close() error
}

func openStorage(dir string, opt Options) (storage, error) {
	switch opt.engine() {
	case EngineBolt:
		return openBoltStorage(dir, opt)
	case EngineBadger:
		return openBadgerStorage(dir, opt)
	case EngineMemory:
		return newMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", opt.Engine)
	}
}
