// Package domain defines the core business entities for comply.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Checklist: A framework's requirements grouped into ordered sections
//   - Variant: One scorable phrasing of a checklist requirement
//   - Chunk: A bounded slice of document text used as the unit of comparison
//   - MatchResult: The scored outcome for a single requirement
//   - ComplianceReport: The ordered results for one document and framework
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
