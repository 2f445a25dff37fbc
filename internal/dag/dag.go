// Package dag models which queries of a graph read from which other queries.
// Nodes keep the order in which they were added, so every listing follows the
// order of the input document.
package dag

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/workloadgen/internal/lineage"
)

// Node is one query of the graph.
type Node struct {
	// ID is the query name.
	ID string
	// References counts every table the query reads, in-graph or not.
	References int
}

// Graph is a directed graph of query dependencies.
type Graph struct {
	order   []string
	nodes   map[string]*Node
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// FromLineage builds the dependency graph of resolved query lineage. Every
// query becomes a node; every in-graph upstream reference becomes an edge.
func FromLineage(queries []lineage.QueryLineage) *Graph {
	g := NewGraph()
	for _, q := range queries {
		g.AddNode(q.Name, len(q.References))
	}
	for _, q := range queries {
		for _, up := range q.Upstream {
			// Both ends are nodes and self references are filtered by Resolve.
			_ = g.AddEdge(up, q.Name)
		}
	}
	return g
}

// AddNode adds a node, or updates its reference count if it already exists.
func (g *Graph) AddNode(id string, references int) {
	if n, exists := g.nodes[id]; exists {
		n.References = references
		return
	}
	g.nodes[id] = &Node{ID: id, References: references}
	g.order = append(g.order, id)
}

// AddEdge records that child reads from parent.
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}
	g.edges[parentID] = appendUnique(g.edges[parentID], childID)
	g.parents[childID] = appendUnique(g.parents[childID], parentID)
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Parents returns the queries id reads from.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the queries that read from id.
func (g *Graph) Children(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// FindCycle returns the nodes of one cycle, first node repeated at the end,
// or nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.order))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inProgress
		stack = append(stack, id)
		for _, child := range g.edges[id] {
			switch state[child] {
			case inProgress:
				for i, s := range stack {
					if s == child {
						cycle = append(append([]string{}, stack[i:]...), child)
						break
					}
				}
				return true
			case unvisited:
				if visit(child) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return false
	}

	for _, id := range g.order {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}

// Levels groups nodes by dependency depth: level 0 reads from no other query,
// level N reads from at least one query at level N-1. Within a level nodes
// keep insertion order.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, fmt.Errorf("cycle detected: %s", strings.Join(cycle, " -> "))
	}

	assigned := make(map[string]int, len(g.order))
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, parent := range g.parents[id] {
			if l := levelOf(parent) + 1; l > level {
				level = l
			}
		}
		assigned[id] = level
		return level
	}

	var levels [][]string
	for _, id := range g.order {
		level := levelOf(id)
		for len(levels) <= level {
			levels = append(levels, []string{})
		}
		levels[level] = append(levels[level], id)
	}
	return levels, nil
}

// Roots returns nodes that read from no other query.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns nodes no other query reads from.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

func appendUnique(slice []string, s string) []string {
	for _, existing := range slice {
		if existing == s {
			return slice
		}
	}
	return append(slice, s)
}
