package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the synchronised index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "skip this many results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.Search(cmd.Context(), args[0], domain.SearchOptions{
		Limit:  searchLimit,
		Offset: searchOffset,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return errors.New("search query must not be empty")
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results.")
		return
	}

	for i, r := range results {
		cmd.Printf("[%d] %s (%.2f)\n", searchOffset+i+1, r.Name, r.Score)
		if r.Path != "" {
			cmd.Printf("    %s\n", r.Path)
		}
		if r.WebViewLink != "" {
			cmd.Printf("    %s\n", r.WebViewLink)
		}
		for _, fragment := range r.Highlights["text"] {
			cmd.Printf("    ... %s ...\n", strings.TrimSpace(fragment))
		}
	}
}
