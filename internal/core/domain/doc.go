// Package domain defines the core business entities for plagcheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: raw text read from a submission
//   - Section: the located literature-review span of a Document
//   - Window: an overlapping, offset-tracked analysis unit of a Section
//   - Candidate, Hit: web pages and the ones judged similar to a Window
//   - Finding, Report: the outcome of a check run
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
