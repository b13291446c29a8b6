package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/adapters/library/local"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/logger"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the library directory and report changes",
	Long: `Watch the local library directory and re-list it whenever files change.

Bursts of changes (a camera import, a sync client) are coalesced and reported
once they settle; see watch_debounce_ms in the config.

Only the local library can be watched.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	if appConfig.Library != "local" {
		return fmt.Errorf("watch needs the local library, not %s", appConfig.Library)
	}

	debounce := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond
	w, err := local.NewWatcher(appConfig.Local.Path, debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	previous, err := listIDs(ctx, "")
	if err != nil {
		return err
	}

	fmt.Println(ui.StyleInfo.Render(ui.IconWatch) + " Watching " + ui.FormatBold(appConfig.Local.Path) +
		ui.FormatMuted(fmt.Sprintf(" (%d photos)", len(previous))))
	fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			fmt.Println(ui.FormatInfo("Stopped watching."))
			return nil
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("watcher stopped: %w", err)
			}
			return nil
		case change := <-w.Changes():
			current, err := listIDs(ctx, change.Last)
			if err != nil {
				logger.Error("failed to re-list library", logger.KeyError, err.Error())
				fmt.Println(ui.FormatError("Failed to re-list library: " + err.Error()))
				continue
			}
			added, removed := diffIDs(previous, current)
			fmt.Println(describeChange(time.Now(), change, len(current), added, removed))
			previous = current
		}
	}
}

// listIDs re-reads the library and returns its assets by identifier
func listIDs(ctx context.Context, last string) (map[string]domain.PhotoAsset, error) {
	logger.Debug("re-listing library", logger.KeyPath, last)

	result, err := photoLibrary.Fetch(ctx, domain.FetchOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	assets, err := result.Assets(ctx, 0, result.Count())
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}

	ids := make(map[string]domain.PhotoAsset, len(assets))
	for _, a := range assets {
		ids[a.ID] = a
	}
	return ids, nil
}

// diffIDs counts the identifiers that appeared and disappeared
func diffIDs(before, after map[string]domain.PhotoAsset) (added, removed int) {
	for id := range after {
		if _, ok := before[id]; !ok {
			added++
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			removed++
		}
	}
	return added, removed
}

// describeChange formats one settled change as a status line
func describeChange(at time.Time, change local.Change, total, added, removed int) string {
	stamp := ui.FormatMuted(at.Format("15:04:05"))
	summary := fmt.Sprintf("%d photos (+%d −%d) after %d event(s)", total, added, removed, change.Events)
	if added == 0 && removed == 0 {
		return fmt.Sprintf("%s %s", stamp, ui.FormatInfo(summary))
	}
	return fmt.Sprintf("%s %s", stamp, ui.FormatSuccess(summary))
}
