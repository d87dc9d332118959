package drive

// Config holds Google Drive remote store configuration.
type Config struct {
	// FolderID limits syncing to one folder and its direct children.
	// Empty syncs the whole drive.
	FolderID string

	// MIMETypeFilter limits syncing to specific MIME types (optional).
	MIMETypeFilter []string

	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxResults: 100,
	}
}

// allowsMIMEType checks a file's MIME type against the filter. An empty
// filter allows everything.
func (c *Config) allowsMIMEType(mimeType string) bool {
	if len(c.MIMETypeFilter) == 0 {
		return true
	}
	for _, m := range c.MIMETypeFilter {
		if m == mimeType {
			return true
		}
	}
	return false
}
