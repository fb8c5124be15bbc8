package cfdb

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

// KeyCodec converts a natural key to and from its stored byte form.
type KeyCodec[K any] interface {
	EncodeKey(k K) []byte
	DecodeKey(b []byte) (K, error)
}

// Uint64Key stores uint64 keys as 8 big-endian bytes, so byte order equals numeric order.
type Uint64Key struct{}

func (Uint64Key) EncodeKey(v uint64) []byte {
	return Uint64Bytes(v)
}

func (Uint64Key) DecodeKey(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, dataErrf(b, 0, nil, "uint64 key must be 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// StringKey stores string keys as their raw UTF-8 bytes.
type StringKey struct{}

func (StringKey) EncodeKey(s string) []byte {
	return []byte(s)
}

func (StringKey) DecodeKey(b []byte) (string, error) {
	return string(b), nil
}

func Uint64Bytes(v uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), v)
}

// Pair64 builds the 16-byte composite key a‖b.
func Pair64(a, b uint64) []byte {
	buf := make([]byte, 0, 16)
	buf = binary.BigEndian.AppendUint64(buf, a)
	return binary.BigEndian.AppendUint64(buf, b)
}

func SplitPair64(k []byte) (a, b uint64, err error) {
	if len(k) != 16 {
		return 0, 0, dataErrf(k, 0, nil, "pair key must be 16 bytes, got %d", len(k))
	}
	return binary.BigEndian.Uint64(k[:8]), binary.BigEndian.Uint64(k[8:]), nil
}

// Id is the stored key of an entity of type E. The type parameter is never
// inspected; it only keeps ids of different entity types apart.
type Id[E any] struct {
	key []byte
}

func IdFrom[E any, K any](codec KeyCodec[K], k K) Id[E] {
	return Id[E]{codec.EncodeKey(k)}
}

func IdFromBytes[E any](b []byte) Id[E] {
	return Id[E]{b}
}

func (id Id[E]) Bytes() []byte {
	return id.key
}

func (id Id[E]) IsZero() bool {
	return len(id.key) == 0
}

func (id Id[E]) Equal(other Id[E]) bool {
	return bytes.Equal(id.key, other.key)
}

func (id Id[E]) String() string {
	return hex.EncodeToString(id.key)
}
