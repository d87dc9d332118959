// Package services implements the core application logic of syncdex: change
// detection against the remote store, the synchronisation cycle that keeps
// the index current, and query handling.
//
// Services depend only on domain types and port interfaces, never on
// concrete adapters.
package services
