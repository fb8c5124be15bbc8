package cfdb

import (
	"cmp"
	"maps"
	"slices"
)

const (
	sequenceKey  = "sequence"
	typeCountKey = "counter.types"
)

// Registry hands out record ids and numeric type codes. Each read-modify-write
// runs inside one writable transaction, so ids and codes are never handed out
// twice.
type Registry struct {
	db       *Database
	counters *Counters
}

func NewRegistry(db *Database) *Registry {
	return &Registry{db: db, counters: db.Counters()}
}

// NextID returns the next value of the global id sequence. The first id is 1.
func (r *Registry) NextID() (uint64, error) {
	var id uint64
	err := r.db.update(func(tx *Tx) error {
		raw, err := tx.Get(CFSystem, []byte(sequenceKey))
		if err != nil {
			return err
		}
		var last uint64
		if raw != nil {
			last, err = decodeUint64Value(raw)
			if err != nil {
				return indexErrf(CFSystem, []byte(sequenceKey), err, "decoding sequence")
			}
		}
		id = last + 1
		var b Batch
		b.Put(CFSystem, []byte(sequenceKey), encodeUint64Value(id))
		return tx.apply(&b)
	})
	if err != nil {
		return 0, err
	}
	r.db.trace("db: NEXTID", "id", id)
	return id, nil
}

// LookupType returns the code of a registered type name.
func (r *Registry) LookupType(name string) (uint64, bool, error) {
	var code uint64
	var found bool
	err := r.db.Read(func(tx *Tx) error {
		var err error
		code, found, err = r.lookup(tx, name)
		return err
	})
	return code, found, err
}

func (r *Registry) lookup(tx *Tx, name string) (uint64, bool, error) {
	raw, err := tx.Get(CFSystemTypes, []byte(name))
	if err != nil || raw == nil {
		return 0, false, err
	}
	code, err := decodeUint64Value(raw)
	if err != nil {
		return 0, false, indexErrf(CFSystemTypes, []byte(name), err, "decoding type code")
	}
	return code, true, nil
}

// TypeCode returns the code of a type name, registering it on first use.
// New codes are one more than the number of types registered so far and are
// never reassigned.
func (r *Registry) TypeCode(name string) (uint64, error) {
	code, found, err := r.LookupType(name)
	if err != nil {
		return 0, err
	}
	if found {
		return code, nil
	}

	var created bool
	err = r.db.update(func(tx *Tx) error {
		var err error
		code, found, err = r.lookup(tx, name)
		if err != nil || found {
			return err
		}
		ctr, err := r.counters.get(tx, typeCountKey)
		if err != nil {
			return err
		}
		code = ctr.Value + 1
		ctr.Value = code

		var b Batch
		if err := r.counters.Update(&b, ctr); err != nil {
			return err
		}
		b.Put(CFSystemTypes, []byte(name), encodeUint64Value(code))
		created = true
		return tx.apply(&b)
	})
	if err != nil {
		return 0, err
	}
	if created {
		r.db.logger.Info("registered type", "type", name, "code", code)
	}
	return code, nil
}

// TypeNames returns every registered type name with its code.
func (r *Registry) TypeNames() (map[string]uint64, error) {
	types := make(map[string]uint64)
	err := r.db.Read(func(tx *Tx) error {
		return tx.Scan(CFSystemTypes, nil, func(k, v []byte) (bool, error) {
			code, err := decodeUint64Value(v)
			if err != nil {
				return false, indexErrf(CFSystemTypes, slices.Clone(k), err, "decoding type code")
			}
			types[string(k)] = code
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return types, nil
}

// SortedTypeNames returns the registered type names ordered by code.
func (r *Registry) SortedTypeNames() ([]string, map[string]uint64, error) {
	types, err := r.TypeNames()
	if err != nil {
		return nil, nil, err
	}
	names := slices.Collect(maps.Keys(types))
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(types[a], types[b])
	})
	return names, types, nil
}
