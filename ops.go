package cfdb

import "fmt"

// IndexHelper describes how a record type is stored: its primary index, the
// full list of indexes to maintain, the pre-put hook and the decoder.
type IndexHelper[E any] interface {
	// ValueIndex is the primary index: id → encoded record.
	ValueIndex() Index[E]
	// Indexes lists every index to maintain, the primary one included.
	Indexes() IndexSet[E]
	// BeforePut runs before a record is stored. It may assign the key.
	BeforePut(reg *Registry, e E) error
	// Decode rebuilds a record from its primary entry. key and value are
	// only valid during the call.
	Decode(key, value []byte) (E, error)
}

// Operations is the get/put/delete/scan façade for one record type.
type Operations[K any, E HasKey[K]] struct {
	db       *Database
	codec    KeyCodec[K]
	helper   IndexHelper[E]
	registry *Registry
	counters *Counters
}

// NewOperations returns the façade for records described by helper. A nil
// registry gets a fresh one over db.
func NewOperations[K any, E HasKey[K]](db *Database, codec KeyCodec[K], helper IndexHelper[E], reg *Registry) *Operations[K, E] {
	if reg == nil {
		reg = NewRegistry(db)
	}
	return &Operations[K, E]{
		db:       db,
		codec:    codec,
		helper:   helper,
		registry: reg,
		counters: db.Counters(),
	}
}

func (ops *Operations[K, E]) DB() *Database { return ops.db }

func (ops *Operations[K, E]) Registry() *Registry { return ops.registry }

// ID returns the id for the natural key k.
func (ops *Operations[K, E]) ID(k K) Id[E] {
	return IdFrom[E](ops.codec, k)
}

// IDOf returns e's id, or the zero Id when e has no key yet.
func (ops *Operations[K, E]) IDOf(e E) Id[E] {
	k, ok := e.Key()
	if !ok {
		return Id[E]{}
	}
	return ops.ID(k)
}

// KeyOf decodes a stored id back into a natural key.
func (ops *Operations[K, E]) KeyOf(id Id[E]) (K, error) {
	return ops.codec.DecodeKey(id.key)
}

func (ops *Operations[K, E]) typeName() string {
	var zero E
	return zero.TypeName()
}

// Count returns the per-type row counter: stored records of type E.
func (ops *Operations[K, E]) Count() (uint64, error) {
	ctr, err := ops.counters.Get(ops.typeName())
	if err != nil {
		return 0, err
	}
	return ctr.Value, nil
}

func (ops *Operations[K, E]) String() string {
	return fmt.Sprintf("%s@%s", ops.typeName(), ops.helper.ValueIndex().CFName())
}
