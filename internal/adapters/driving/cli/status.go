package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusDeadLetters int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted sync state and recent failures",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusDeadLetters, "failures", 10, "number of recent failures to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if stateStore == nil || indexWriter == nil {
		return errors.New("state store not configured")
	}
	ctx := cmd.Context()

	state, err := stateStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading sync state: %w", err)
	}
	count, err := indexWriter.Count(ctx)
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	cmd.Printf("Indexed documents: %d\n", count)
	cmd.Printf("Tracked revisions: %d\n", len(state.Revisions))
	if state.Cursor == "" {
		cmd.Println("Cursor:            none (next sync is a full reconciliation)")
	} else {
		cmd.Printf("Cursor:            %s\n", state.Cursor)
	}
	if state.LastFullSync.IsZero() {
		cmd.Println("Last full sync:    never")
	} else {
		cmd.Printf("Last full sync:    %s\n", state.LastFullSync.Format("2006-01-02 15:04:05 MST"))
	}

	pending, err := stateStore.PendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("loading pending jobs: %w", err)
	}
	if len(pending) > 0 {
		cmd.Printf("Pending jobs:      %d (re-dispatched next sync)\n", len(pending))
	}

	dls, err := stateStore.DeadLetters(ctx, statusDeadLetters)
	if err != nil {
		return fmt.Errorf("loading dead letters: %w", err)
	}
	if len(dls) > 0 {
		cmd.Println("\nRecent failures:")
		for _, dl := range dls {
			cmd.Printf("  %s  %s (%d attempts, %s)\n",
				dl.RecordedAt.Format("2006-01-02 15:04"), dl.DocumentID, dl.Attempts, dl.Reason)
		}
	}
	return nil
}
