package dag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

const pipelineYAML = `
name: ages
nodes:
  - id: src
    type: source
    config:
      rows:
        - name: ada
          age: 30
        - name: alan
          age: 25
  - id: filter
    type: transform
    config:
      filters:
        - field: age
          operator: greater_than
          value: "25"
  - id: sink
    type: output
    config:
      sink_id: report
edges:
  - source: src
    target: filter
  - source: filter
    target: sink
`

func TestParsePipeline(t *testing.T) {
	p, err := ParsePipeline([]byte(pipelineYAML))
	require.NoError(t, err)

	assert.Equal(t, "ages", p.Name)
	require.Len(t, p.Nodes, 3)
	require.Len(t, p.Edges, 2)

	src := p.Nodes[0]
	assert.Equal(t, models.NodeTypeSource, src.Type)
	assert.Len(t, src.Config.Rows, 2)

	filter := p.Nodes[1]
	require.Len(t, filter.Config.Filters, 1)
	assert.Equal(t, models.OpGreaterThan, filter.Config.Filters[0].Operator)
	assert.Equal(t, "25", filter.Config.Filters[0].Value)

	assert.Equal(t, "src", p.Edges[0].SourceNodeID)
	assert.Equal(t, "filter", p.Edges[0].TargetNodeID)
}

func TestParsePipelineMalformedYAML(t *testing.T) {
	_, err := ParsePipeline([]byte("nodes: [whoops"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestParsePipelineEmpty(t *testing.T) {
	_, err := ParsePipeline([]byte("name: empty"))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestParsePipelineInvalidGraph(t *testing.T) {
	bad := `
nodes:
  - id: a
    type: source
edges:
  - source: a
    target: ghost
`
	_, err := ParsePipeline([]byte(bad))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestLoadPipelineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o644))

	p, err := LoadPipelineFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ages", p.Name)

	_, err = LoadPipelineFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
