// Package domain defines the core business entities for weldsafe.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A normalised regulatory text
//   - Chunk: A token-bounded retrieval unit, joined to vectors by position
//   - Manifest: The binding between the chunk store and the vector index
//   - Answer: A composed, structured reply
//   - Profile: A registered chat user
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
