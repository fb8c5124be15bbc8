package cfdb

import (
	"encoding/binary"
	"errors"
)

// Counter is a named unsigned 64-bit value. Its stored form is 8 bytes
// little-endian.
type Counter struct {
	Name  string
	Value uint64
}

func (*Counter) TypeName() string { return "Counter" }

func (c *Counter) Key() (string, bool) { return c.Name, true }

func (c *Counter) Encode() ([]byte, error) {
	return encodeUint64Value(c.Value), nil
}

func DecodeCounter(key, value []byte) (*Counter, error) {
	v, err := decodeUint64Value(value)
	if err != nil {
		return nil, err
	}
	return &Counter{Name: string(key), Value: v}, nil
}

func encodeUint64Value(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), v)
}

func decodeUint64Value(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, dataErrf(b, 0, nil, "uint64 value must be 8 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Counters reads and schedules updates of counters in one column family.
type Counters struct {
	db *Database
	cf string
}

func NewCounters(db *Database, cf string) *Counters {
	return &Counters{db: db, cf: cf}
}

// Counters returns the counters kept in cf.system.counters.
func (db *Database) Counters() *Counters {
	return NewCounters(db, CFSystemCounters)
}

// Get returns the named counter, with a zero value if it was never written.
func (c *Counters) Get(name string) (*Counter, error) {
	var ctr *Counter
	err := c.db.Read(func(tx *Tx) error {
		var err error
		ctr, err = c.get(tx, name)
		return err
	})
	return ctr, err
}

func (c *Counters) get(tx *Tx, name string) (*Counter, error) {
	raw, err := tx.Get(c.cf, []byte(name))
	if errors.Is(err, ErrMissingIndex) {
		return nil, indexErrf(c.cf, nil, ErrNoCounters, "reading %q", name)
	} else if err != nil {
		return nil, err
	}
	if raw == nil {
		return &Counter{Name: name}, nil
	}
	ctr, err := DecodeCounter([]byte(name), raw)
	if err != nil {
		return nil, indexErrf(c.cf, []byte(name), err, "decoding counter")
	}
	return ctr, nil
}

// Update schedules writing ctr into b.
func (c *Counters) Update(b *Batch, ctr *Counter) error {
	if !c.db.HasColumnFamily(c.cf) {
		return indexErrf(c.cf, nil, ErrNoCounters, "updating %q", ctr.Name)
	}
	v, err := ctr.Encode()
	if err != nil {
		return err
	}
	b.Put(c.cf, []byte(ctr.Name), v)
	return nil
}
