package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmem "github.com/custodia-labs/syncdex/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func TestSearchOrchestrator_Search_EmptyQueryRejected(t *testing.T) {
	svc := NewSearchOrchestrator(indexmem.NewIndexWriter())

	_, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchOrchestrator_Search_DefaultsApplied(t *testing.T) {
	index := indexmem.NewIndexWriter()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := index.Upsert(ctx, id, "1", "quarterly report", domain.DocumentMetadata{Title: id + ".txt"})
		require.NoError(t, err)
	}

	svc := NewSearchOrchestrator(index)
	results, err := svc.Search(ctx, "quarterly", domain.SearchOptions{Offset: -5})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchOrchestrator_Search_NameMatchesRankFirst(t *testing.T) {
	index := indexmem.NewIndexWriter()
	ctx := context.Background()
	_, err := index.Upsert(ctx, "body-hit", "1", "the budget figures", domain.DocumentMetadata{Title: "notes.txt"})
	require.NoError(t, err)
	_, err = index.Upsert(ctx, "name-hit", "1", "unrelated text", domain.DocumentMetadata{Title: "budget.pdf"})
	require.NoError(t, err)

	svc := NewSearchOrchestrator(index)
	results, err := svc.Search(ctx, "budget", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "name-hit", results[0].ID)
}
