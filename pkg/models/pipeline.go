package models

import "time"

// ============================================================================
// Node Types
// ============================================================================

// NodeType identifies the behavior of a pipeline node.
type NodeType string

const (
	NodeTypeSource    NodeType = "source"
	NodeTypeTransform NodeType = "transform"
	NodeTypeMerge     NodeType = "merge"
	NodeTypeDiff      NodeType = "diff"
	NodeTypeOutput    NodeType = "output"
)

// ValidNodeTypes contains all valid node type values.
var ValidNodeTypes = []NodeType{
	NodeTypeSource,
	NodeTypeTransform,
	NodeTypeMerge,
	NodeTypeDiff,
	NodeTypeOutput,
}

// IsValidNodeType checks if the given node type is valid.
func IsValidNodeType(t NodeType) bool {
	for _, v := range ValidNodeTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ============================================================================
// Node Status
// ============================================================================

// NodeStatus is the execution state of a pipeline node within one run.
type NodeStatus string

const (
	NodeStatusIdle    NodeStatus = "idle"
	NodeStatusRunning NodeStatus = "running"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// ValidNodeStatuses contains all valid node status values.
var ValidNodeStatuses = []NodeStatus{
	NodeStatusIdle,
	NodeStatusRunning,
	NodeStatusSuccess,
	NodeStatusError,
}

// IsValidNodeStatus checks if the given status is valid.
func IsValidNodeStatus(s NodeStatus) bool {
	for _, v := range ValidNodeStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the node finished (success or error).
func (s NodeStatus) IsTerminal() bool {
	return s == NodeStatusSuccess || s == NodeStatusError
}

// ============================================================================
// Node Configs
// ============================================================================

// FilterOperator is the predicate applied by a transform filter.
type FilterOperator string

const (
	OpEquals      FilterOperator = "equals"
	OpNotEquals   FilterOperator = "not_equals"
	OpGreaterThan FilterOperator = "greater_than"
	OpLessThan    FilterOperator = "less_than"
	OpContains    FilterOperator = "contains"
)

// ValidFilterOperators contains all valid filter operators.
var ValidFilterOperators = []FilterOperator{
	OpEquals,
	OpNotEquals,
	OpGreaterThan,
	OpLessThan,
	OpContains,
}

// IsValidFilterOperator checks if the given operator is valid.
func IsValidFilterOperator(op FilterOperator) bool {
	for _, v := range ValidFilterOperators {
		if v == op {
			return true
		}
	}
	return false
}

// FieldFilter keeps a row iff the predicate holds.
type FieldFilter struct {
	Field    string         `json:"field" yaml:"field"`
	Operator FilterOperator `json:"operator" yaml:"operator"`
	Value    string         `json:"value" yaml:"value"`
}

// ScalarTransform is a named per-value transform applied by a field mapping.
type ScalarTransform string

const (
	TransformUppercase ScalarTransform = "uppercase"
	TransformLowercase ScalarTransform = "lowercase"
	TransformTrim      ScalarTransform = "trim"
	TransformRound     ScalarTransform = "round"
)

// FieldMapping copies sourceField to targetField, optionally transforming
// the value on the way.
type FieldMapping struct {
	SourceField string          `json:"source_field" yaml:"source_field"`
	TargetField string          `json:"target_field" yaml:"target_field"`
	Transform   ScalarTransform `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// SortSpec is a single stable sort by one field.
type SortSpec struct {
	Field     string `json:"field" yaml:"field"`
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty"` // "asc" (default) or "desc"
}

// Descending returns true when direction is "desc".
func (s SortSpec) Descending() bool {
	return s.Direction == "desc"
}

// NodeConfig carries the type-specific settings of a node. Only the fields
// relevant to the node's type are consulted.
type NodeConfig struct {
	// source
	SourceType string `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	SourceID   string `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	// Inline rows for in-process sources (demo data, tests).
	Rows []map[string]any `json:"rows,omitempty" yaml:"rows,omitempty"`

	// transform
	Filters  []FieldFilter  `json:"filters,omitempty" yaml:"filters,omitempty"`
	Mappings []FieldMapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Sort     *SortSpec      `json:"sort,omitempty" yaml:"sort,omitempty"`

	// merge
	JoinKey  string   `json:"join_key,omitempty" yaml:"join_key,omitempty"`
	JoinType JoinType `json:"join_type,omitempty" yaml:"join_type,omitempty"`
	// Optional plan from the join planner; when set, merge follows the
	// plan's per-step relationships instead of the single JoinKey.
	JoinPlan *JoinPlan `json:"join_plan,omitempty" yaml:"-"`

	// diff
	CompareKey string `json:"compare_key,omitempty" yaml:"compare_key,omitempty"`

	// output
	SinkType string `json:"sink_type,omitempty" yaml:"sink_type,omitempty"`
	SinkID   string `json:"sink_id,omitempty" yaml:"sink_id,omitempty"`

	// Per-node execution deadline; 0 means the engine default applies.
	TimeoutMs int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// ============================================================================
// Pipeline Node & Edge
// ============================================================================

// PipelineNode is one unit of transformation in the execution graph.
type PipelineNode struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Type   NodeType   `json:"type" yaml:"type"`
	Config NodeConfig `json:"config" yaml:"config"`

	// Execution state, owned by the run coordinator.
	Status      NodeStatus `json:"status,omitempty" yaml:"-"`
	StartedAt   *time.Time `json:"started_at,omitempty" yaml:"-"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"-"`
	DurationMs  *int64     `json:"duration_ms,omitempty" yaml:"-"`
}

// PipelineEdge connects two nodes. It carries no data itself; the run
// coordinator attaches live metadata for observability.
type PipelineEdge struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	SourceNodeID string `json:"source_node_id" yaml:"source"`
	TargetNodeID string `json:"target_node_id" yaml:"target"`
}

// Key returns a stable identifier for the edge, falling back to the
// endpoint pair when no explicit id was assigned.
func (e PipelineEdge) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.SourceNodeID + "->" + e.TargetNodeID
}

// EdgeState is the live metadata attached to an edge during a run.
type EdgeState struct {
	EdgeID   string   `json:"edge_id"`
	RowCount int      `json:"row_count"`
	Schema   []string `json:"schema,omitempty"`
	Active   bool     `json:"active"`
}
