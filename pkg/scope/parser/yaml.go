package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the root of a scope file.
type yamlDocument struct {
	Scope *yamlScope `yaml:"scope"`

	// Internal tracking
	node *yaml.Node // Original YAML node for line numbers
}

// yamlScope is the intermediate structure for parsing YAML scopes.
// It matches the YAML structure before transformation to the typed model.
type yamlScope struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Active      *bool           `yaml:"active"` // Pointer to distinguish unset vs false
	Bots        []string        `yaml:"bots"`
	Created     string          `yaml:"created"`
	Updated     string          `yaml:"updated"`
	Guardrails  *yamlGuardrails `yaml:"guardrails"`
	Filters     *yamlFilters    `yaml:"dataset_filters"`
}

// yamlGuardrails is the intermediate guardrail structure.
type yamlGuardrails struct {
	AllowedTopics   []string        `yaml:"allowed_topics"`
	ForbiddenTopics []string        `yaml:"forbidden_topics"`
	Boundaries      *yamlBoundaries `yaml:"knowledge_boundaries"`
	Response        *yamlResponse   `yaml:"response_guidelines"`
	RefusalMessage  string          `yaml:"refusal_message"`
}

// yamlBoundaries is the intermediate knowledge boundary structure.
type yamlBoundaries struct {
	StrictMode     bool     `yaml:"strict_mode"`
	Preference     string   `yaml:"context_preference"`
	AllowedSources []string `yaml:"allowed_sources"`
}

// yamlResponse is the intermediate response guideline structure.
type yamlResponse struct {
	MaxResponseLength    int  `yaml:"max_response_length"`
	RequireCitations     bool `yaml:"require_citations"`
	StepByStep           bool `yaml:"step_by_step"`
	MathematicalNotation bool `yaml:"mathematical_notation"`
}

// yamlFilters is the intermediate dataset filter structure.
type yamlFilters struct {
	Tags            []string          `yaml:"tags"`
	Categories      []string          `yaml:"categories"`
	IncludePatterns []string          `yaml:"include_patterns"`
	ExcludePatterns []string          `yaml:"exclude_patterns"`
	Metadata        map[string]string `yaml:"metadata"`
}

// parseYAMLFile reads and parses a YAML file into the intermediate structure.
func parseYAMLFile(path string) (*yamlDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data)
}

// parseYAMLBytes parses YAML bytes into the intermediate structure.
// It preserves line numbers from the YAML parser for error reporting.
func parseYAMLBytes(data []byte) (*yamlDocument, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var doc yamlDocument
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}

	doc.node = &node
	return &doc, nil
}
