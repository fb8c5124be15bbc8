package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/chunger/cfdb"
)

const (
	CFNodeID       = "index.node.id"
	CFNodeType     = "index.node.type"
	CFNodeName     = "index.node.name"
	CFNodeNameHash = "index.node.name_hash"

	// DefaultNodeType is the type name of nodes stored without one.
	DefaultNodeType = "entity"
)

// Node is a named vertex of the graph.
type Node struct {
	ID          uint64 `msgpack:"id" json:"id"`
	TypeCode    uint64 `msgpack:"tc" json:"type_code"`
	Type        string `msgpack:"t" json:"type"`
	Name        string `msgpack:"n" json:"name"`
	Description string `msgpack:"d,omitempty" json:"description,omitempty"`
	// CreatedAt is Unix time in nanoseconds.
	CreatedAt int64 `msgpack:"at" json:"created_at"`
}

func (*Node) TypeName() string { return "Node" }

func (n *Node) Key() (uint64, bool) { return n.ID, n.ID != 0 }

func (n *Node) Encode() ([]byte, error) { return cfdb.MsgPack.Marshal(n) }

func (n *Node) Created() time.Time { return time.Unix(0, n.CreatedAt) }

// NameHash is the lowercase hex SHA-256 of the node name.
func (n *Node) NameHash() string {
	return NameHash(n.Name)
}

func NameHash(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

func DecodeNode(key, value []byte) (*Node, error) {
	n := new(Node)
	if err := cfdb.MsgPack.Unmarshal(value, n); err != nil {
		return nil, err
	}
	return n, nil
}

type NodeByID struct{ cfdb.Replacing }

func (NodeByID) CFName() string { return CFNodeID }

func (NodeByID) KeyValue(n *Node) ([]byte, []byte, error) {
	v, err := n.Encode()
	return cfdb.Uint64Bytes(n.ID), v, err
}

// NodeByType keys entries by type code followed by node id, so every node of
// a type has its own entry and a type code prefix scan finds them all.
type NodeByType struct{ cfdb.Replacing }

func (NodeByType) CFName() string { return CFNodeType }

func (NodeByType) KeyValue(n *Node) ([]byte, []byte, error) {
	return cfdb.Pair64(n.TypeCode, n.ID), cfdb.Uint64Bytes(n.ID), nil
}

type NodeByName struct{ cfdb.Replacing }

func (NodeByName) CFName() string { return CFNodeName }

func (NodeByName) KeyValue(n *Node) ([]byte, []byte, error) {
	return []byte(n.Name), cfdb.Uint64Bytes(n.ID), nil
}

// NodeByNameHash keeps the history of names by hash.
type NodeByNameHash struct{ cfdb.History }

func (NodeByNameHash) CFName() string { return CFNodeNameHash }

func (NodeByNameHash) KeyValue(n *Node) ([]byte, []byte, error) {
	return []byte(n.NameHash()), cfdb.Uint64Bytes(n.ID), nil
}

var NodeIndexes = cfdb.IndexSet[*Node]{NodeByID{}, NodeByType{}, NodeByName{}, NodeByNameHash{}}

type nodeHelper struct {
	stamper Stamper
}

func (nodeHelper) ValueIndex() cfdb.Index[*Node] { return NodeByID{} }
func (nodeHelper) Indexes() cfdb.IndexSet[*Node] { return NodeIndexes }

func (h nodeHelper) BeforePut(reg *cfdb.Registry, n *Node) error {
	if err := h.stamper.AssignID(reg, &n.ID); err != nil {
		return err
	}
	h.stamper.StampTime(&n.CreatedAt)
	return h.stamper.ResolveType(reg, &n.Type, DefaultNodeType, &n.TypeCode)
}

func (nodeHelper) Decode(key, value []byte) (*Node, error) {
	return DecodeNode(key, value)
}

// Nodes returns the node façade over db.
func Nodes(db *cfdb.Database, reg *cfdb.Registry) *cfdb.Operations[uint64, *Node] {
	return cfdb.NewOperations[uint64, *Node](db, cfdb.Uint64Key{}, nodeHelper{Stamper{Now: db.Now}}, reg)
}
