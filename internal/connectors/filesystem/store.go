// Package filesystem implements the remote store over a local directory
// tree, mostly for trying the pipeline without remote credentials.
//
// A directory has no change journal, so the store requests a full
// reconciliation every cycle: StartCursor returns the empty cursor and
// ListChanges reports any cursor as expired. Document ids are paths
// relative to the root; revisions are modification times in nanoseconds.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RemoteStore = (*Store)(nil)

// Store is a local-directory implementation of driven.RemoteStore.
type Store struct {
	root string
}

// New creates a store over the given root directory.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	return &Store{root: abs}, nil
}

// Type returns the store type identifier.
func (s *Store) Type() string {
	return "filesystem"
}

// Validate checks the root exists and is a directory.
func (s *Store) Validate(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat root %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s: %w", s.root, domain.ErrInvalidInput)
	}
	return nil
}

// ListAll walks the tree and returns a snapshot of every visible file.
// Hidden files and directories (dot-prefixed) are skipped.
func (s *Store) ListAll(ctx context.Context) ([]domain.RemoteDocument, error) {
	var docs []domain.RemoteDocument
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if strings.HasPrefix(d.Name(), ".") && path != s.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		docs = append(docs, s.document(rel, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return docs, nil
}

// ListChanges always reports the cursor as expired: the filesystem keeps no
// change journal, so reconciliation must be full.
func (s *Store) ListChanges(_ context.Context, _ string) (*driven.ChangeFeed, error) {
	return nil, domain.ErrDeltaExpired
}

// StartCursor returns the empty cursor, requesting a full reconciliation on
// the next cycle as well.
func (s *Store) StartCursor(_ context.Context) (string, error) {
	return "", nil
}

// Stat returns the current snapshot for a single document.
func (s *Store) Stat(_ context.Context, id string) (*domain.RemoteDocument, error) {
	path, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", id, err)
	}
	if info.IsDir() {
		return nil, domain.ErrNotFound
	}

	doc := s.document(id, info)
	return &doc, nil
}

// Fetch reads the raw content of a document.
func (s *Store) Fetch(_ context.Context, id string) ([]byte, error) {
	path, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return content, nil
}

// Close releases resources (no-op).
func (s *Store) Close() error {
	return nil
}

// resolve maps a document id back to an absolute path, rejecting ids that
// escape the root.
func (s *Store) resolve(id string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(id))
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("id %s: %w", id, domain.ErrInvalidInput)
	}
	return path, nil
}

// document builds a snapshot for a file. The id is the slash-separated
// relative path so ids are stable across platforms.
func (s *Store) document(rel string, info fs.FileInfo) domain.RemoteDocument {
	id := filepath.ToSlash(rel)
	return domain.RemoteDocument{
		ID:           id,
		Name:         info.Name(),
		Revision:     strconv.FormatInt(info.ModTime().UnixNano(), 10),
		ModifiedTime: info.ModTime(),
		MIMEType:     mimeType(info.Name()),
		SizeBytes:    info.Size(),
		WebViewLink:  "file://" + filepath.Join(s.root, rel),
		Path:         id,
	}
}

// mimeType guesses a MIME type from the file extension.
func mimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".log":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".html", ".htm":
		return "text/html"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		// Strip parameters such as "; charset=utf-8".
		if i := strings.IndexByte(t, ';'); i > 0 {
			return strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}
