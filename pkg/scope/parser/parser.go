package parser

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"tessera-hq/meridian/pkg/scope"
	scopeErrors "tessera-hq/meridian/pkg/scope/errors"
)

// Parser parses scope YAML files into typed scope records.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 1MB)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 1 * 1024 * 1024, // 1MB
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// Parse parses the scope file at the given path.
// It returns an error if the file cannot be read, has invalid YAML syntax,
// or contains structural errors.
func (p *Parser) Parse(path string) (*scope.Scope, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &scopeErrors.Error{
			Type:    scopeErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to access file: %v", err),
			Location: scope.Location{
				File: path,
			},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &scopeErrors.Error{
			Type:    scopeErrors.ErrorTypeIO,
			Message: fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: scope.Location{
				File: path,
			},
		}
	}

	doc, err := parseYAMLFile(path)
	if err != nil {
		return nil, &scopeErrors.Error{
			Type:    scopeErrors.ErrorTypeSyntax,
			Message: fmt.Sprintf("YAML parsing failed: %v", err),
			Location: scope.Location{
				File: path,
				Line: 1,
			},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	return buildScope(doc, path)
}

// ParseBytes parses scope YAML from a byte slice.
// This is useful for testing or parsing scopes from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*scope.Scope, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &scopeErrors.Error{
			Type:    scopeErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: scope.Location{
				File: sourcePath,
			},
		}
	}

	doc, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &scopeErrors.Error{
			Type:    scopeErrors.ErrorTypeSyntax,
			Message: fmt.Sprintf("YAML parsing failed: %v", err),
			Location: scope.Location{
				File: sourcePath,
				Line: 1,
			},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	return buildScope(doc, sourcePath)
}

// buildScope transforms the intermediate YAML structure into a typed scope.
// It accumulates structural and semantic errors so every problem in a file
// is reported in one pass.
func buildScope(doc *yamlDocument, sourcePath string) (*scope.Scope, error) {
	errList := scopeErrors.NewErrorList()
	fileLoc := scope.Location{File: sourcePath, Line: 1, Column: 1}

	if doc.Scope == nil {
		errList.AddErrorWithSuggestion(scopeErrors.ErrorTypeStructural,
			"Missing 'scope' root key",
			fileLoc,
			scopeErrors.SuggestMissingField("scope", ""))
		return nil, errList.ToError()
	}

	ys := doc.Scope

	s := &scope.Scope{
		ID:          ys.ID,
		Name:        ys.Name,
		Description: ys.Description,
		Active:      true,
		Bots:        ys.Bots,
		SourceFile:  sourcePath,
	}
	if ys.Active != nil {
		s.Active = *ys.Active
	}

	if ys.Name == "" {
		errList.AddErrorWithSuggestion(scopeErrors.ErrorTypeStructural,
			"Scope name cannot be empty",
			fileLoc,
			scopeErrors.SuggestMissingField("name", "customer-support"))
	}

	// Materialize an id for template scopes that omit one. Authored scopes
	// carry the id assigned by the dashboard backend.
	if ys.ID == "" {
		s.ID = uuid.NewString()
	} else if _, err := uuid.Parse(ys.ID); err != nil {
		errList.AddErrorWithSuggestion(scopeErrors.ErrorTypeSemantic,
			fmt.Sprintf("Invalid scope id %q: %v", ys.ID, err),
			fileLoc,
			"Scope ids are UUIDs; omit the field to have one assigned")
	}

	// Timestamps are advisory; an unparseable value is treated as absent.
	if ys.Created != "" {
		if t, err := time.Parse(time.RFC3339, ys.Created); err == nil {
			s.Created = t
		}
	}
	if ys.Updated != "" {
		if t, err := time.Parse(time.RFC3339, ys.Updated); err == nil {
			s.Updated = t
		}
	}

	if ys.Guardrails != nil {
		buildGuardrails(ys.Guardrails, s, fileLoc, errList)
	}

	if ys.Filters != nil {
		s.Filters = scope.DatasetFilters{
			Tags:            ys.Filters.Tags,
			Categories:      ys.Filters.Categories,
			IncludePatterns: ys.Filters.IncludePatterns,
			ExcludePatterns: ys.Filters.ExcludePatterns,
			Metadata:        ys.Filters.Metadata,
		}
	}

	if errList.HasErrors() {
		return nil, errList
	}

	return s.Normalize(), nil
}

// buildGuardrails fills the guardrail half of the scope from the
// intermediate structure, accumulating semantic errors.
func buildGuardrails(yg *yamlGuardrails, s *scope.Scope, loc scope.Location, errList *scopeErrors.ErrorList) {
	s.Guardrails.AllowedTopics = yg.AllowedTopics
	s.Guardrails.ForbiddenTopics = yg.ForbiddenTopics
	s.Guardrails.RefusalMessage = yg.RefusalMessage

	if yg.Boundaries != nil {
		s.Guardrails.Boundaries.StrictMode = yg.Boundaries.StrictMode
		s.Guardrails.Boundaries.AllowedSources = yg.Boundaries.AllowedSources

		if yg.Boundaries.Preference != "" {
			pref := scope.ContextPreference(yg.Boundaries.Preference)
			if !pref.Valid() {
				errList.AddErrorWithSuggestion(scopeErrors.ErrorTypeSemantic,
					fmt.Sprintf("Unknown context_preference %q", yg.Boundaries.Preference),
					loc,
					scopeErrors.SuggestEnumValue("context_preference",
						[]string{string(scope.ContextExclusive), string(scope.ContextPrefer), string(scope.ContextSupplement)}))
			} else {
				s.Guardrails.Boundaries.Preference = pref
			}
		}
	}

	if yg.Response != nil {
		if yg.Response.MaxResponseLength < 0 {
			errList.AddError(scopeErrors.ErrorTypeSemantic,
				fmt.Sprintf("max_response_length cannot be negative, got %d", yg.Response.MaxResponseLength),
				loc)
		}
		s.Guardrails.Response = scope.ResponseGuidelines{
			MaxResponseLength:    yg.Response.MaxResponseLength,
			RequireCitations:     yg.Response.RequireCitations,
			StepByStep:           yg.Response.StepByStep,
			MathematicalNotation: yg.Response.MathematicalNotation,
		}
	}
}
