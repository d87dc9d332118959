package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

var syncWait bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the index with the remote store",
	Long: `Triggers one synchronisation cycle: detects remote changes since the
last run, updates the index, and commits the new cursor. A first run (or an
expired delta cursor) performs a full reconciliation.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncWait, "wait", true, "wait for the cycle to finish")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	cycleID, err := syncService.TriggerSync(context.Background())
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			return errors.New("a sync cycle is already running")
		}
		return fmt.Errorf("sync failed to start: %w", err)
	}

	cmd.Printf("Sync cycle started: %s\n", cycleID)
	if !syncWait {
		return nil
	}

	status, err := syncWithProgress(cmd, cycleID)
	if err != nil {
		return err
	}

	if status.State == domain.CycleAborted {
		return fmt.Errorf("sync aborted: %w", status.Err)
	}

	cmd.Printf("Sync complete: %d updated, %d skipped, %d failed\n",
		status.Counts.Succeeded, status.Counts.Skipped, status.Counts.Failed)

	for _, dl := range status.DeadLetters {
		cmd.Printf("  failed: %s (%s, %d attempts)\n", dl.DocumentID, dl.Reason, dl.Attempts)
	}
	return nil
}

// syncWithProgress polls the cycle status while waiting for completion.
func syncWithProgress(cmd *cobra.Command, cycleID string) (*domain.CycleStatus, error) {
	done := make(chan struct{})
	var (
		final *domain.CycleStatus
		err   error
	)
	go func() {
		defer close(done)
		final, err = syncService.Wait(cycleID)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastProcessed := 0
	for {
		select {
		case <-done:
			if err != nil {
				return nil, fmt.Errorf("waiting for cycle: %w", err)
			}
			return final, nil
		case <-ticker.C:
			status, statusErr := syncService.GetSyncStatus(cycleID)
			if statusErr != nil {
				continue
			}
			processed := status.Counts.Succeeded + status.Counts.Skipped + status.Counts.Failed
			if processed > lastProcessed {
				cmd.Printf("\rProcessing... %d documents", processed)
				lastProcessed = processed
			}
		}
	}
}
