package domain

import "time"

// RemoteDocument is an immutable snapshot of a document as observed in the
// remote store. One snapshot is produced per observation; the remote store
// may move on while we hold it.
type RemoteDocument struct {
	// ID is the remote store's identifier for the document.
	ID string

	// Name is the display name (file name) of the document.
	Name string

	// Revision is an opaque but comparable version token. For Google Drive
	// this is the file version counter; for filesystems a modification
	// timestamp. See CompareRevisions.
	Revision string

	// ModifiedTime is when the remote store last changed the document.
	ModifiedTime time.Time

	// ParentFolderID is the containing folder, if the store has folders.
	ParentFolderID string

	// MIMEType is the declared content type.
	MIMEType string

	// SizeBytes is the content size as reported by the remote store.
	SizeBytes int64

	// WebViewLink is a browser URL for the document, if available.
	WebViewLink string

	// Path is a human-readable location within the remote store.
	Path string
}

// DocumentMetadata is the structured metadata carried into the index
// alongside extracted text.
type DocumentMetadata struct {
	// Title is the document title (from content metadata or file name).
	Title string

	// Author is the document author, if derivable from the content.
	Author string

	// PageCount is the number of pages for paginated formats, 0 otherwise.
	PageCount int

	// MIMEType is the content type the text was extracted from.
	MIMEType string

	// Path is the document's location within the remote store.
	Path string

	// WebViewLink is a browser URL for the document, if available.
	WebViewLink string
}

// IndexedDocument is the index's record for one remote document. There is at
// most one per remote id, owned exclusively by the IndexWriter.
type IndexedDocument struct {
	// ID matches the RemoteDocument id.
	ID string

	// Text is the extracted full text.
	Text string

	// Metadata is the structured metadata stored with the text.
	Metadata DocumentMetadata

	// IndexedRevision is the revision the stored text was extracted from.
	// Non-decreasing over the document's lifetime.
	IndexedRevision string
}
