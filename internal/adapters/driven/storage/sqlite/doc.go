// Package sqlite provides SQLite-backed implementations of the mapping
// library and the conversion history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single Store exposes:
//
//   - MappingStore: named mapping tables and their rows
//   - RunStore: recorded conversion runs
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.mapxml/data/mapxml.db
package sqlite
