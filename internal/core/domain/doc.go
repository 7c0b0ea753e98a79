// Package domain defines the core entities of the mapping converter.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Node: A read-only input tree value (object, array, scalar, missing)
//   - InputPath / OutputPath: The two path dialects of a mapping row
//   - MappingRow / MappingNode / MappingTree: The loaded mapping table
//   - Value: A typed scalar flowing through the value pipeline
//   - Warning / Report: Non-fatal conversion diagnostics
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, gopkg.in/src-d/go-errors.v1
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
