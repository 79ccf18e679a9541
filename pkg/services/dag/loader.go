package dag

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
	"github.com/fuseline-io/fuseline-engine/pkg/models"
)

// Pipeline is a declarative pipeline definition as loaded from YAML.
type Pipeline struct {
	Name  string                `yaml:"name"`
	Nodes []models.PipelineNode `yaml:"nodes"`
	Edges []models.PipelineEdge `yaml:"edges"`
}

// ParsePipeline decodes a YAML pipeline definition and validates its
// graph. Malformed YAML and invalid graphs both yield a configuration
// error.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("parse pipeline definition: %v", err))
	}
	if len(p.Nodes) == 0 {
		return nil, apperrors.NewConfigurationError("pipeline definition has no nodes")
	}
	if _, err := NewGraph(p.Nodes, p.Edges); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPipelineFile reads and parses a pipeline definition from disk.
func LoadPipelineFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline file %q: %w", path, err)
	}
	return ParsePipeline(data)
}
