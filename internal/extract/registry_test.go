package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/extract/plaintext"
)

type slowExtractor struct {
	delay time.Duration
}

func (s *slowExtractor) SupportedMIMETypes() []string { return []string{"text/slow"} }
func (s *slowExtractor) Priority() int                { return 10 }

func (s *slowExtractor) Extract(_ context.Context, _ *domain.RemoteDocument, _ []byte) (*domain.Extraction, error) {
	time.Sleep(s.delay)
	return &domain.Extraction{Text: "slow"}, nil
}

type priorityExtractor struct {
	priority int
	text     string
}

func (p *priorityExtractor) SupportedMIMETypes() []string { return []string{"text/plain"} }
func (p *priorityExtractor) Priority() int                { return p.priority }

func (p *priorityExtractor) Extract(_ context.Context, _ *domain.RemoteDocument, _ []byte) (*domain.Extraction, error) {
	return &domain.Extraction{Text: p.text}, nil
}

func textDoc(name string) *domain.RemoteDocument {
	return &domain.RemoteDocument{ID: "doc-1", Name: name, MIMEType: "text/plain"}
}

func extractionReason(t *testing.T, err error) domain.ExtractionFailureReason {
	t.Helper()
	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	return ee.Reason
}

func TestRegistry_Extract_Success(t *testing.T) {
	registry := NewRegistry(Config{})
	registry.Register(plaintext.New())

	ex, err := registry.Extract(context.Background(), textDoc("notes.txt"), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", ex.Text)
	assert.Equal(t, "notes.txt", ex.Metadata.Title)
}

func TestRegistry_Extract_UnsupportedType(t *testing.T) {
	registry := NewRegistry(Config{})

	doc := &domain.RemoteDocument{ID: "doc-1", Name: "movie.mp4", MIMEType: "video/mp4"}
	_, err := registry.Extract(context.Background(), doc, []byte("data"))
	assert.Equal(t, domain.FailureUnsupportedType, extractionReason(t, err))
}

func TestRegistry_Extract_SizeLimit(t *testing.T) {
	registry := NewRegistry(Config{MaxDocBytes: 4})
	registry.Register(plaintext.New())

	_, err := registry.Extract(context.Background(), textDoc("big.txt"), []byte("too large"))
	reason := extractionReason(t, err)
	assert.Equal(t, domain.FailureSizeLimit, reason)
}

func TestRegistry_Extract_Timeout(t *testing.T) {
	registry := NewRegistry(Config{Timeout: 5 * time.Millisecond})
	registry.Register(&slowExtractor{delay: time.Second})

	doc := &domain.RemoteDocument{ID: "doc-1", Name: "slow.txt", MIMEType: "text/slow"}
	_, err := registry.Extract(context.Background(), doc, []byte("data"))
	assert.Equal(t, domain.FailureTimeout, extractionReason(t, err))
}

func TestRegistry_Extract_HighestPriorityWins(t *testing.T) {
	registry := NewRegistry(Config{})
	registry.Register(&priorityExtractor{priority: 5, text: "low"})
	registry.Register(&priorityExtractor{priority: 80, text: "high"})

	ex, err := registry.Extract(context.Background(), textDoc("notes.txt"), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "high", ex.Text)
}

func TestRegistry_Extract_ForeignErrorClassifiedCorrupt(t *testing.T) {
	registry := NewRegistry(Config{})
	registry.Register(plaintext.New())

	// Invalid UTF-8 makes the plaintext extractor fail.
	_, err := registry.Extract(context.Background(), textDoc("junk.txt"), []byte{0xff, 0xfe, 0x00})
	assert.Equal(t, domain.FailureCorrupt, extractionReason(t, err))
}
