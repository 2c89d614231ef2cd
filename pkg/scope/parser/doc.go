// Package parser parses scope YAML documents into typed scope records.
//
// Scope files are the on-disk authoring artifact produced by the dashboard
// backends. A file holds a single document rooted at the "scope" key:
//
//	scope:
//	  name: customer-support
//	  description: Support bot restrictions
//	  active: true
//	  guardrails:
//	    allowed_topics: [billing, account access]
//	    forbidden_topics: [legal advice]
//	    knowledge_boundaries:
//	      strict_mode: true
//	      context_preference: exclusive
//	      allowed_sources: [support-kb]
//	    response_guidelines:
//	      max_response_length: 300
//	      require_citations: true
//	    refusal_message: "I can only help with support questions."
//	  dataset_filters:
//	    tags: [faq]
//	    exclude_patterns: ["*confidential*"]
//	    metadata:
//	      dept: support
//
// The parser applies construction-time defaulting (scope.Normalize),
// materializes a UUID for template scopes that omit an id, and reports
// problems as rich errors with source locations and suggestions
// (pkg/scope/errors). It never enforces authoring policy beyond structure;
// advisory conflict checks live in pkg/scope/validator.
package parser
