// Package dag holds the pipeline execution engine: the node graph, the
// per-type node executors, and the run coordinator that drives them.
package dag

import (
	"fmt"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// Graph is a validated pipeline node graph. The topology is immutable
// once built; node execution state lives on the caller's node slice and
// is written by the run coordinator.
type Graph struct {
	nodes  []models.PipelineNode
	edges  []models.PipelineEdge
	byID   map[string]int
	inEdge map[string][]models.PipelineEdge // incoming, in insertion order
	out    map[string][]models.PipelineEdge // outgoing, in insertion order
}

// NewGraph validates nodes and edges and builds adjacency. Duplicate node
// ids, unknown edge endpoints, unknown node types, and missing required
// node config are configuration errors.
func NewGraph(nodes []models.PipelineNode, edges []models.PipelineEdge) (*Graph, error) {
	g := &Graph{
		nodes:  nodes,
		edges:  edges,
		byID:   make(map[string]int, len(nodes)),
		inEdge: make(map[string][]models.PipelineEdge),
		out:    make(map[string][]models.PipelineEdge),
	}

	for i, n := range nodes {
		if n.ID == "" {
			return nil, apperrors.NewConfigurationError("node without id")
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, &apperrors.ConfigurationError{Reason: "duplicate node id", NodeID: n.ID}
		}
		if !models.IsValidNodeType(n.Type) {
			return nil, &apperrors.ConfigurationError{Reason: fmt.Sprintf("unknown node type %q", n.Type), NodeID: n.ID}
		}
		if err := validateNodeConfig(n); err != nil {
			return nil, err
		}
		g.byID[n.ID] = i
	}

	for _, e := range edges {
		if _, ok := g.byID[e.SourceNodeID]; !ok {
			return nil, apperrors.NewConfigurationError(fmt.Sprintf("edge references unknown source node %q", e.SourceNodeID))
		}
		if _, ok := g.byID[e.TargetNodeID]; !ok {
			return nil, apperrors.NewConfigurationError(fmt.Sprintf("edge references unknown target node %q", e.TargetNodeID))
		}
		g.inEdge[e.TargetNodeID] = append(g.inEdge[e.TargetNodeID], e)
		g.out[e.SourceNodeID] = append(g.out[e.SourceNodeID], e)
	}

	return g, nil
}

// validateNodeConfig rejects nodes missing config their type requires.
func validateNodeConfig(n models.PipelineNode) error {
	switch n.Type {
	case models.NodeTypeMerge:
		if n.Config.JoinKey == "" && n.Config.JoinPlan == nil {
			return &apperrors.ConfigurationError{Reason: "merge node requires a join key or a join plan", NodeID: n.ID}
		}
		if n.Config.JoinType != "" && !models.IsValidJoinType(n.Config.JoinType) {
			return &apperrors.ConfigurationError{Reason: fmt.Sprintf("unknown join type %q", n.Config.JoinType), NodeID: n.ID}
		}
	case models.NodeTypeDiff:
		if n.Config.CompareKey == "" {
			return &apperrors.ConfigurationError{Reason: "diff node requires a compare key", NodeID: n.ID}
		}
	}
	return nil
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []models.PipelineNode {
	return g.nodes
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (models.PipelineNode, bool) {
	i, ok := g.byID[id]
	if !ok {
		return models.PipelineNode{}, false
	}
	return g.nodes[i], true
}

// Predecessors returns the source node ids of incoming edges, in edge
// insertion order. Inputs for a node are gathered in this order.
func (g *Graph) Predecessors(nodeID string) []string {
	edges := g.inEdge[nodeID]
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.SourceNodeID
	}
	return out
}

// OutgoingEdges returns the edges leaving a node, in insertion order.
func (g *Graph) OutgoingEdges(nodeID string) []models.PipelineEdge {
	return g.out[nodeID]
}

// TopologicalOrder computes a linear execution order via Kahn's algorithm.
// Ties among zero-in-degree nodes break by FIFO insertion order, so the
// order is deterministic for a fixed graph. A cycle is a fatal
// configuration error and produces no partial order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.ID] = len(g.inEdge[n.ID])
	}

	var queue []string
	for _, n := range g.nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, e := range g.out[id] {
			inDegree[e.TargetNodeID]--
			if inDegree[e.TargetNodeID] == 0 {
				queue = append(queue, e.TargetNodeID)
			}
		}
	}

	if len(order) < len(g.nodes) {
		return nil, apperrors.NewConfigurationError("pipeline graph contains a cycle")
	}
	return order, nil
}
