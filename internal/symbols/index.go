package symbols

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"opp/internal/ast"
)

// Index maps each visited AST node to the scope active when the scope
// builder reached it. Entries are written once.
type Index struct {
	entries map[ast.NodeID]ScopeID
}

// NewIndex creates an empty index.
func NewIndex(capHint int) *Index {
	return &Index{entries: make(map[ast.NodeID]ScopeID, capHint)}
}

// Commit records the scope of node. A second commit for the same node is
// rejected and reported as false.
func (ix *Index) Commit(node ast.NodeID, scope ScopeID) bool {
	if !node.IsValid() || !scope.IsValid() {
		return false
	}
	if _, exists := ix.entries[node]; exists {
		return false
	}
	ix.entries[node] = scope
	return true
}

// Lookup returns the committed scope of node.
func (ix *Index) Lookup(node ast.NodeID) (ScopeID, bool) {
	if ix == nil {
		return NoScopeID, false
	}
	scope, ok := ix.entries[node]
	return scope, ok
}

// Len reports the number of committed nodes.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Nodes returns the committed node IDs in ascending order.
func (ix *Index) Nodes() []ast.NodeID {
	out := make([]ast.NodeID, 0, len(ix.entries))
	for id := range ix.entries {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type indexSnapshot struct {
	Schema uint16   `msgpack:"v"`
	Nodes  []uint32 `msgpack:"n"`
	Scopes []uint32 `msgpack:"s"`
}

const indexSchemaVersion uint16 = 1

// MarshalIndex encodes the index into a compact msgpack snapshot.
func MarshalIndex(ix *Index) ([]byte, error) {
	snap := indexSnapshot{Schema: indexSchemaVersion}
	for _, id := range ix.Nodes() {
		snap.Nodes = append(snap.Nodes, uint32(id))
		snap.Scopes = append(snap.Scopes, uint32(ix.entries[id]))
	}
	return msgpack.Marshal(&snap)
}

// UnmarshalIndex decodes a snapshot produced by MarshalIndex.
func UnmarshalIndex(data []byte) (*Index, error) {
	var snap indexSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if snap.Schema != indexSchemaVersion {
		return nil, fmt.Errorf("decode index: unsupported schema %d", snap.Schema)
	}
	if len(snap.Nodes) != len(snap.Scopes) {
		return nil, fmt.Errorf("decode index: %d nodes but %d scopes", len(snap.Nodes), len(snap.Scopes))
	}
	ix := NewIndex(len(snap.Nodes))
	for i, n := range snap.Nodes {
		if !ix.Commit(ast.NodeID(n), ScopeID(snap.Scopes[i])) {
			return nil, fmt.Errorf("decode index: invalid or repeated entry for node %d", n)
		}
	}
	return ix, nil
}
