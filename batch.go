package cfdb

import "slices"

// Batch is an ordered list of puts and deletes across column families,
// applied atomically by Database.Write.
type Batch struct {
	ops []batchOp
}

type batchOp struct {
	cf     string
	key    []byte
	value  []byte
	delete bool
}

func (b *Batch) Put(cf string, key, value []byte) {
	b.ops = append(b.ops, batchOp{cf: cf, key: slices.Clone(key), value: slices.Clone(value)})
}

func (b *Batch) Delete(cf string, key []byte) {
	b.ops = append(b.ops, batchOp{cf: cf, key: slices.Clone(key), delete: true})
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Reset() {
	clear(b.ops)
	b.ops = b.ops[:0]
}
