package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docsage-labs/docsage-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new PDFs",
	Long: `Watch a directory and automatically ingest PDF files as they appear.

Existing files are ingested once at startup, then the directory is
monitored until interrupted. Partially written files are handled by
waiting for writes to settle before ingesting.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// watchSettle is how long a file must be quiet before it is ingested.
// Editors and downloads write PDFs in bursts.
const watchSettle = 2 * time.Second

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	dir := args[0]
	ctx := cmd.Context()

	// Catch up on whatever is already there.
	if summary, err := ingestionService.IngestPath(ctx, dir); err != nil {
		return fmt.Errorf("initial ingestion failed: %w", err)
	} else if len(summary.FilesProcessed) > 0 {
		cmd.Printf("Ingested %d existing files (%d pages)\n",
			len(summary.FilesProcessed), summary.PagesProcessed)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for new PDFs (ctrl-c to stop)\n", dir)

	// pending maps a path to its settle deadline. A single timer loop
	// drains it so bursts of writes collapse into one ingestion.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			pending[event.Name] = time.Now().Add(watchSettle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, deadline := range pending {
				if now.Before(deadline) {
					continue
				}
				delete(pending, path)

				summary, err := ingestionService.IngestPath(ctx, path)
				if err != nil {
					logger.Warn("Failed to ingest %s: %v", path, err)
					continue
				}
				for _, e := range summary.Errors {
					cmd.Printf("  %s: %s\n", e.Filename, e.Reason)
				}
				for _, f := range summary.FilesProcessed {
					cmd.Printf("Ingested %s (%d pages)\n", f, summary.PagesProcessed)
				}
			}
		}
	}
}
