package graph

import (
	"time"

	"github.com/chunger/cfdb"
)

const (
	CFEdgeID       = "index.edge.id"
	CFEdgeType     = "index.edge.type"
	CFEdgeName     = "index.edge.name"
	CFEdgeHeadTail = "index.edge.head-tail"
	CFEdgeTailHead = "index.edge.tail-head"

	// DefaultEdgeType is the type name of edges stored without one.
	DefaultEdgeType = "relation"
)

// Edge is a named, directed relation from Head to Tail.
type Edge struct {
	ID          uint64 `msgpack:"id" json:"id"`
	TypeCode    uint64 `msgpack:"tc" json:"type_code"`
	Type        string `msgpack:"t" json:"type"`
	Name        string `msgpack:"n" json:"name"`
	Head        uint64 `msgpack:"h" json:"head"`
	Tail        uint64 `msgpack:"tl" json:"tail"`
	Description string `msgpack:"d,omitempty" json:"description,omitempty"`
	CreatedAt   int64  `msgpack:"at" json:"created_at"`
}

func (*Edge) TypeName() string { return "Edge" }

func (e *Edge) Key() (uint64, bool) { return e.ID, e.ID != 0 }

func (e *Edge) Encode() ([]byte, error) { return cfdb.MsgPack.Marshal(e) }

func (e *Edge) Created() time.Time { return time.Unix(0, e.CreatedAt) }

func DecodeEdge(key, value []byte) (*Edge, error) {
	e := new(Edge)
	if err := cfdb.MsgPack.Unmarshal(value, e); err != nil {
		return nil, err
	}
	return e, nil
}

type EdgeByID struct{ cfdb.Replacing }

func (EdgeByID) CFName() string { return CFEdgeID }

func (EdgeByID) KeyValue(e *Edge) ([]byte, []byte, error) {
	v, err := e.Encode()
	return cfdb.Uint64Bytes(e.ID), v, err
}

type EdgeByType struct{ cfdb.Replacing }

func (EdgeByType) CFName() string { return CFEdgeType }

func (EdgeByType) KeyValue(e *Edge) ([]byte, []byte, error) {
	return cfdb.Pair64(e.TypeCode, e.ID), cfdb.Uint64Bytes(e.ID), nil
}

type EdgeByName struct{ cfdb.Replacing }

func (EdgeByName) CFName() string { return CFEdgeName }

func (EdgeByName) KeyValue(e *Edge) ([]byte, []byte, error) {
	return []byte(e.Name), cfdb.Uint64Bytes(e.ID), nil
}

type EdgeByHeadTail struct{ cfdb.Replacing }

func (EdgeByHeadTail) CFName() string { return CFEdgeHeadTail }

func (EdgeByHeadTail) KeyValue(e *Edge) ([]byte, []byte, error) {
	return cfdb.Pair64(e.Head, e.Tail), cfdb.Uint64Bytes(e.ID), nil
}

type EdgeByTailHead struct{ cfdb.Replacing }

func (EdgeByTailHead) CFName() string { return CFEdgeTailHead }

func (EdgeByTailHead) KeyValue(e *Edge) ([]byte, []byte, error) {
	return cfdb.Pair64(e.Tail, e.Head), cfdb.Uint64Bytes(e.ID), nil
}

var EdgeIndexes = cfdb.IndexSet[*Edge]{EdgeByID{}, EdgeByType{}, EdgeByName{}, EdgeByHeadTail{}, EdgeByTailHead{}}

type edgeHelper struct {
	stamper Stamper
}

func (edgeHelper) ValueIndex() cfdb.Index[*Edge] { return EdgeByID{} }
func (edgeHelper) Indexes() cfdb.IndexSet[*Edge] { return EdgeIndexes }

func (h edgeHelper) BeforePut(reg *cfdb.Registry, e *Edge) error {
	if err := h.stamper.AssignID(reg, &e.ID); err != nil {
		return err
	}
	h.stamper.StampTime(&e.CreatedAt)
	return h.stamper.ResolveType(reg, &e.Type, DefaultEdgeType, &e.TypeCode)
}

func (edgeHelper) Decode(key, value []byte) (*Edge, error) {
	return DecodeEdge(key, value)
}

// Edges returns the edge façade over db.
func Edges(db *cfdb.Database, reg *cfdb.Registry) *cfdb.Operations[uint64, *Edge] {
	return cfdb.NewOperations[uint64, *Edge](db, cfdb.Uint64Key{}, edgeHelper{Stamper{Now: db.Now}}, reg)
}
