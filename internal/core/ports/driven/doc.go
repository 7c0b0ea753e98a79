// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - MappingReader: Turns a tabular mapping source into rows
//   - InputParser: Parses an input document into a domain.Node tree
//   - Emitter: Receives the streamed output document
//   - ExpressionCompiler: Compiles row expressions at load time
//   - DocumentStore: Reads and writes documents addressed by URL
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - MappingStore: Named mapping library. Without it, "db:" references fail.
//   - RunStore: Conversion history. Without it, runs are not recorded.
//   - TreeCache: Loaded tree cache. Without it, every load re-parses.
//   - Watcher: File change notifications for watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
