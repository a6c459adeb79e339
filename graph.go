// Package walkroute estimates pedestrian travel time over street network with traffic signals
// and produces alternative routes between two nodes.
package walkroute

import (
	"sort"

	"github.com/paulmach/osm"
)

// Adjacent is an entry of adjacency list: neighbor node and the edge leading to it
type Adjacent struct {
	Node osm.NodeID
	Edge EdgeID
}

// Graph is undirected multigraph of street network. It is read-only after building
type Graph struct {
	edges     []*Edge
	index     map[EdgeKey]EdgeID
	nodes     map[osm.NodeID]*Node
	adjacency map[osm.NodeID][]Adjacent
	hasGeom   bool
}

// EdgeIndex returns edge for unordered pair (u, v)
func (graph *Graph) EdgeIndex(u, v osm.NodeID) (EdgeID, bool) {
	id, ok := graph.index[NormalizeEdgeKey(u, v)]
	return id, ok
}

// EdgeByKey returns edge for given key
func (graph *Graph) EdgeByKey(key EdgeKey) (*Edge, bool) {
	id, ok := graph.index[key.Normalize()]
	if !ok {
		return nil, false
	}
	return graph.edges[id], true
}

// Edge returns edge by its index. Panics on out of range index
func (graph *Graph) Edge(id EdgeID) *Edge {
	return graph.edges[id]
}

// Edges returns all edges ordered by index
func (graph *Graph) Edges() []*Edge {
	return graph.edges
}

// EdgesNum returns number of edges
func (graph *Graph) EdgesNum() int {
	return len(graph.edges)
}

// Neighbors returns adjacency list of node u
func (graph *Graph) Neighbors(u osm.NodeID) []Adjacent {
	return graph.adjacency[u]
}

// Node returns node by its ID
func (graph *Graph) Node(id osm.NodeID) (*Node, bool) {
	node, ok := graph.nodes[id]
	return node, ok
}

// HasNode checks if node is a part of the graph
func (graph *Graph) HasNode(id osm.NodeID) bool {
	_, ok := graph.adjacency[id]
	return ok
}

// HasCoordinates reports whether at least one node carries coordinates
func (graph *Graph) HasCoordinates() bool {
	return graph.hasGeom
}

// SignalEdges returns indices of all signalized edges in ascending order
func (graph *Graph) SignalEdges() []EdgeID {
	ids := []EdgeID{}
	for _, edge := range graph.edges {
		if edge.IsSignal {
			ids = append(ids, edge.ID)
		}
	}
	return ids
}

// NodeIDs returns sorted IDs of nodes having at least one incident edge
func (graph *Graph) NodeIDs() []osm.NodeID {
	ids := make([]osm.NodeID, 0, len(graph.adjacency))
	for id := range graph.adjacency {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}
