// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Downloaded or uploaded bytes before extraction
//   - Document: One ingestion of a content-addressed document
//   - Chunk: A bounded, embedded segment of a document's canonical text
//   - Query and Answer: One question of a batch and its outcome
//   - DedupRecord: The content hash to document identity mapping
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
