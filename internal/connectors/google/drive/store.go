// Package drive implements the remote store over the Google Drive v3 API.
//
// Listings exclude trashed files. Incremental change detection uses the
// Changes API with a persisted start page token; when Drive reports the
// token as gone (HTTP 410) the store surfaces domain.ErrDeltaExpired and
// the caller falls back to a full listing. Google Workspace documents are
// exported to text formats on fetch.
package drive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/syncdex/internal/connectors/google"
	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RemoteStore = (*Store)(nil)

// Google Workspace MIME types that must be exported rather than downloaded.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// MaxFetchSize caps one content download (10MB).
const MaxFetchSize = 10 * 1024 * 1024

const fileFields = "id, name, mimeType, size, version, modifiedTime, parents, webViewLink, trashed"

// Store is a Google Drive implementation of driven.RemoteStore.
type Store struct {
	svc     *drive.Service
	limiter *google.RateLimiter
	cfg     *Config
}

// New creates a Drive store over an authenticated service.
func New(svc *drive.Service, cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Store{
		svc:     svc,
		limiter: google.NewRateLimiter(),
		cfg:     cfg,
	}
}

// Type returns the store type identifier.
func (s *Store) Type() string {
	return "gdrive"
}

// Validate checks that the credentials grant Drive access.
func (s *Store) Validate(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.svc.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("drive about: %w", google.WrapError(err))
	}
	return nil
}

// ListAll returns a snapshot of every current, non-trashed document.
func (s *Store) ListAll(ctx context.Context) ([]domain.RemoteDocument, error) {
	query := "trashed = false"
	if s.cfg.FolderID != "" {
		query = fmt.Sprintf("'%s' in parents and trashed = false", s.cfg.FolderID)
	}

	var docs []domain.RemoteDocument
	pageToken := ""
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := s.svc.Files.List().
			Q(query).
			PageSize(s.cfg.MaxResults).
			Fields(googleapi.Field("files(" + fileFields + "), nextPageToken")).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("drive files.list: %w", google.WrapError(err))
		}

		for _, f := range res.Files {
			if doc := s.fileToDocument(f); doc != nil {
				docs = append(docs, *doc)
			}
		}

		if res.NextPageToken == "" {
			return docs, nil
		}
		pageToken = res.NextPageToken
	}
}

// ListChanges returns changes recorded since cursor via the Changes API.
func (s *Store) ListChanges(ctx context.Context, cursor string) (*driven.ChangeFeed, error) {
	c, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, domain.ErrDeltaExpired
	}

	feed := &driven.ChangeFeed{}
	pageToken := c.StartPageToken
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := s.svc.Changes.List(pageToken).
			IncludeRemoved(true).
			PageSize(s.cfg.MaxResults).
			Fields(googleapi.Field("changes(fileId, removed, file(" + fileFields + ")), nextPageToken, newStartPageToken")).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("drive changes.list: %w", google.WrapError(err))
		}

		for _, ch := range res.Changes {
			entry := s.changeToEntry(ch)
			if entry != nil {
				feed.Entries = append(feed.Entries, *entry)
			}
		}

		if res.NewStartPageToken != "" {
			next := &Cursor{Version: CursorVersion, StartPageToken: res.NewStartPageToken}
			feed.NewCursor = next.Encode()
			return feed, nil
		}
		pageToken = res.NextPageToken
	}
}

// StartCursor returns a cursor positioned at "now".
func (s *Store) StartCursor(ctx context.Context) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	res, err := s.svc.Changes.GetStartPageToken().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive getStartPageToken: %w", google.WrapError(err))
	}

	c := &Cursor{Version: CursorVersion, StartPageToken: res.StartPageToken}
	return c.Encode(), nil
}

// Stat returns the current snapshot for a single document.
func (s *Store) Stat(ctx context.Context, id string) (*domain.RemoteDocument, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	f, err := s.svc.Files.Get(id).
		Fields(googleapi.Field(fileFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive files.get %s: %w", id, google.WrapError(err))
	}
	if f.Trashed {
		return nil, domain.ErrNotFound
	}

	doc := s.fileToDocument(f)
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// Fetch downloads the raw content of a document. Google Workspace files are
// exported to a text format.
func (s *Store) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	f, err := s.svc.Files.Get(id).Fields("id, mimeType").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive files.get %s: %w", id, google.WrapError(err))
	}

	switch f.MimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSlides:
		return s.export(ctx, id, ExportMimeText)
	case MimeTypeGoogleSheet:
		return s.export(ctx, id, ExportMimeCSV)
	}

	resp, err := s.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", id, google.WrapError(err))
	}
	defer resp.Body.Close()

	return io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
}

// Close releases resources. The underlying HTTP client needs no teardown.
func (s *Store) Close() error {
	return nil
}

// export retrieves a Google Workspace file converted to the given format.
func (s *Store) export(ctx context.Context, id, mimeType string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Files.Export(id, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive export %s: %w", id, google.WrapError(err))
	}
	defer resp.Body.Close()

	return io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
}

// changeToEntry converts one raw Drive change. Trashed files and files that
// fall outside the configured scope resolve to removals, since a scope exit
// must clear the indexed copy.
func (s *Store) changeToEntry(ch *drive.Change) *driven.ChangeEntry {
	if ch.Removed || ch.File == nil || ch.File.Trashed {
		return &driven.ChangeEntry{DocumentID: ch.FileId, Removed: true}
	}

	doc := s.fileToDocument(ch.File)
	if doc == nil {
		return &driven.ChangeEntry{DocumentID: ch.FileId, Removed: true}
	}

	return &driven.ChangeEntry{
		DocumentID: ch.FileId,
		Document:   doc,
	}
}

// fileToDocument converts a Drive file to a domain snapshot, or nil when the
// file is out of scope (folder, trashed, filtered out).
func (s *Store) fileToDocument(f *drive.File) *domain.RemoteDocument {
	if f == nil || f.Trashed || f.MimeType == MimeTypeFolder {
		return nil
	}
	if !s.cfg.allowsMIMEType(f.MimeType) {
		return nil
	}
	if s.cfg.FolderID != "" && !contains(f.Parents, s.cfg.FolderID) {
		return nil
	}

	var parent string
	if len(f.Parents) > 0 {
		parent = f.Parents[0]
	}

	doc := &domain.RemoteDocument{
		ID:             f.Id,
		Name:           f.Name,
		Revision:       fileRevision(f),
		ParentFolderID: parent,
		MIMEType:       f.MimeType,
		SizeBytes:      f.Size,
		WebViewLink:    f.WebViewLink,
		Path:           f.Name,
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		doc.ModifiedTime = t
	}
	return doc
}

// fileRevision derives the comparable revision token: Drive's monotonic
// version counter when present, else the modification time.
func fileRevision(f *drive.File) string {
	if f.Version > 0 {
		return strconv.FormatInt(f.Version, 10)
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		return strconv.FormatInt(t.UnixNano(), 10)
	}
	return f.ModifiedTime
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
