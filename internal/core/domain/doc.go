// Package domain defines the core business entities for syncdex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RemoteDocument: A snapshot of a document in the remote store
//   - IndexedDocument: The index's record for one remote document
//   - SyncState: The durable record of synchronisation progress
//   - SyncJob: The unit of work dispatched to the worker pool
//   - ChangeEvent: One entry in a computed change set
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
