package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuseline-io/fuseline-engine/pkg/adapters/connector"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
	"github.com/fuseline-io/fuseline-engine/pkg/services/dag"
)

func TestEngineDefaultsRegisterStaticConnector(t *testing.T) {
	eng := NewEngine(Options{})
	conn, err := eng.Registry().Get(connector.TypeStatic)
	require.NoError(t, err)
	assert.NotNil(t, conn)
}

func TestEngineAnalyzeThenJoin(t *testing.T) {
	eng := NewEngine(Options{})

	customers := models.DatasetFromRaw("customers", []map[string]any{
		{"id": 1, "name": "ada"},
		{"id": 2, "name": "alan"},
		{"id": 3, "name": "grace"},
	})
	customers.ID = "ds-customers"
	orders := models.DatasetFromRaw("orders", []map[string]any{
		{"order_id": 100, "customer_id": 1, "total": 9.99},
		{"order_id": 101, "customer_id": 2, "total": 12.50},
	})
	orders.ID = "ds-orders"

	analysis, err := eng.AnalyzeRelationships(context.Background(), []models.Dataset{customers, orders})
	require.NoError(t, err)
	require.NotEmpty(t, analysis.Relationships)
	assert.Greater(t, analysis.Relationships[0].Confidence, 0.6,
		"the id/customer_id pairing is suggested")
	require.NotEmpty(t, analysis.JoinPlans)

	// Feed the best plan into a merge pipeline over the same datasets.
	static, _ := eng.Registry().Get(connector.TypeStatic)
	static.(*connector.Static).Add("customers", customers)
	static.(*connector.Static).Add("orders", orders)

	nodes := []models.PipelineNode{
		{ID: "c", Type: models.NodeTypeSource, Config: models.NodeConfig{SourceID: "customers"}},
		{ID: "o", Type: models.NodeTypeSource, Config: models.NodeConfig{SourceID: "orders"}},
		{ID: "join", Type: models.NodeTypeMerge, Config: models.NodeConfig{
			JoinKey:  "id",
			JoinPlan: &analysis.JoinPlans[0],
		}},
		{ID: "out", Type: models.NodeTypeOutput, Config: models.NodeConfig{SinkID: "joined"}},
	}
	edges := []models.PipelineEdge{
		{SourceNodeID: "c", TargetNodeID: "join"},
		{SourceNodeID: "o", TargetNodeID: "join"},
		{SourceNodeID: "join", TargetNodeID: "out"},
	}

	run, err := eng.RunPipeline(context.Background(), nodes, edges, dag.Callbacks{})
	require.NoError(t, err)
	require.True(t, run.Success)

	joined, ok := run.Result("join")
	require.True(t, ok)
	assert.Equal(t, 2, joined.RowsProcessed, "two customers have orders")
	for _, rec := range joined.Data.Records {
		assert.False(t, rec.Get("name").IsNull())
		assert.False(t, rec.Get("total").IsNull())
	}
}

func TestEngineRunDefinitionFromYAML(t *testing.T) {
	eng := NewEngine(Options{})

	p, err := dag.ParsePipeline([]byte(`
name: ages
nodes:
  - id: src
    type: source
    config:
      rows:
        - {name: ada, age: 30}
        - {name: alan, age: 25}
        - {name: grace, age: 35}
        - {name: edsger, age: 28}
        - {name: barbara, age: 32}
  - id: keep-adults
    type: transform
    config:
      filters:
        - {field: age, operator: greater_than, value: "25"}
  - id: sink
    type: output
    config:
      sink_id: adults
edges:
  - {source: src, target: keep-adults}
  - {source: keep-adults, target: sink}
`))
	require.NoError(t, err)

	run, err := eng.RunDefinition(context.Background(), p, dag.Callbacks{})
	require.NoError(t, err)
	require.True(t, run.Success)
	assert.Equal(t, 3, run.CompletedNodes)

	filtered, ok := run.Result("keep-adults")
	require.True(t, ok)
	assert.Equal(t, 4, filtered.RowsProcessed)

	static, _ := eng.Registry().Get(connector.TypeStatic)
	written, ok := static.(*connector.Static).Written("adults")
	require.True(t, ok)
	assert.Equal(t, 4, written.Len())
}
