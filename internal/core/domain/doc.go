// Package domain defines the core business entities for Coach.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentHandle: A candidate source file enumerated from a document store
//   - ExtractedDocument: A handle plus its plain text and extraction outcome
//   - SearchTermSet: Salient terms derived from one question
//   - SmartSearchResult: An LLM relevance judgement for one document
//   - AssembledContext: The budgeted prompt handed to the completion service
//   - ConnectionState: The OAuth connection state machine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
