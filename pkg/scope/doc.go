// Package scope defines the data model for Meridian scopes: named, reusable,
// independently toggleable bundles of access-control rules assignable to a bot.
//
// A Scope carries two halves:
//
//   - GuardrailConfig: topic and response-shape restrictions applied to the
//     chat pipeline (allowed/forbidden topics, knowledge boundaries, response
//     guidelines, refusal message).
//   - DatasetFilters: content-selection rules applied to the retrieval
//     pipeline (tags, categories, include/exclude patterns, metadata filters).
//
// Scopes are loosely authored (YAML forms edited by tenants), so the model
// applies explicit defaulting at construction time via Normalize. Downstream
// consumers (pkg/policy/engine) can therefore treat every field as populated
// and keep their merge logic total.
//
// The package contains only plain data types and pure helpers. Parsing lives
// in pkg/scope/parser, authoring validation in pkg/scope/validator, and
// lifecycle management in pkg/scope/manager.
package scope
