// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RemoteStore: Listings, change feeds and content from the remote store
//   - IndexWriter: Upserts, deletes and queries against the search index
//   - StateStore: Durable synchronisation progress
//   - Extractor / ExtractorRegistry: Content extraction by MIME type
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
