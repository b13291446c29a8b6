package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/bytesize"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

// dateLayout is the format accepted for --from/--to and the filter form
const dateLayout = "2006-01-02"

var (
	filterFrom    string
	filterTo      string
	filterMinSize string
	filterIDsOnly bool
)

// filterCmd represents the filter command
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Find photos taken in a date range above a size",
	Long: `Query the library for photos taken between two dates and keep those
whose size is at least the given minimum. Results keep the library order,
newest first.

An omitted --from means "from the beginning"; an omitted --to means today.
A bare number for --min-size is read as megabytes.

Examples:
  px filter --from 2023-06-01 --to 2023-08-31
  px filter --from 2024-01-01 --min-size 10
  px filter --min-size 500KB --ids`,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterFrom, "from", "", "Start date, inclusive (YYYY-MM-DD)")
	filterCmd.Flags().StringVar(&filterTo, "to", "", "End date, inclusive (YYYY-MM-DD)")
	filterCmd.Flags().StringVarP(&filterMinSize, "min-size", "m", "0", "Minimum size (e.g. 2.5, 800KB, 3MB)")
	filterCmd.Flags().BoolVar(&filterIDsOnly, "ids", false, "Print identifiers only, one per line")
}

func runFilter(cmd *cobra.Command, args []string) error {
	req, err := buildFilterRequest(filterFrom, filterTo, filterMinSize, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := getContext()
	defer cancel()

	if err := photoLibrary.Authorize(ctx); err != nil {
		return err
	}

	resp, err := filterService.Execute(ctx, req)
	if err != nil {
		fmt.Println(ui.FormatError("Filter failed"))
		return err
	}

	if filterIDsOnly {
		for _, asset := range resp.Assets {
			fmt.Println(asset.ID)
		}
		return nil
	}

	if len(resp.Assets) == 0 {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("No photos match (%d in range)", resp.Candidates)))
		return nil
	}

	fmt.Println(ui.FormatTitle(fmt.Sprintf("Photos %s", describeFilter(req))))
	fmt.Println()
	fmt.Print(assetTable(resp.Assets, resp.Sizes).Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d of %d photos in range match", len(resp.Assets), resp.Candidates)))
	return nil
}

// buildFilterRequest parses the form or flag values. An empty start means
// no lower bound; an empty end means the end of today.
func buildFilterRequest(from, to, minSize string, now time.Time) (services.FilterRequest, error) {
	var req services.FilterRequest

	if strings.TrimSpace(from) != "" {
		start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(from), time.Local)
		if err != nil {
			return req, fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", from)
		}
		req.Start = start
	}

	endDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if strings.TrimSpace(to) != "" {
		end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(to), time.Local)
		if err != nil {
			return req, fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", to)
		}
		endDay = end
	}
	// The end date is inclusive
	req.End = endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)

	mb, err := parseMinSize(minSize)
	if err != nil {
		return req, err
	}
	req.MinSizeMB = mb

	if _, err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// parseMinSize reads a size; bare numbers are megabytes
func parseMinSize(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return 0, fmt.Errorf("minimum size must not be negative: %s", s)
	}
	size, err := bytesize.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid minimum size: %w", err)
	}
	return size.MB(), nil
}

// parseOptionalRange returns nil when neither bound is given
func parseOptionalRange(from, to string) (*domain.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	req, err := buildFilterRequest(from, to, "", time.Now())
	if err != nil {
		return nil, err
	}
	return req.Validate()
}

func describeFilter(req services.FilterRequest) string {
	var parts []string
	if !req.Start.IsZero() {
		parts = append(parts, "from "+req.Start.Format(dateLayout))
	}
	parts = append(parts, "to "+req.End.Format(dateLayout))
	if req.MinSizeMB > 0 {
		parts = append(parts, fmt.Sprintf("of at least %.1f MB", req.MinSizeMB))
	}
	return strings.Join(parts, " ")
}
