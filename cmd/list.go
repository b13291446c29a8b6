package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	listSortBy  string
	listReverse bool
	listFrom    string
	listTo      string
	listMinSize string
	listLimit   int
	listIDsOnly bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list [query]",
	Short:   "List photos with their sizes",
	Aliases: []string{"ls"},
	Long: `List the photos in the library in a table.

Sizes are read from the library when it knows them and estimated from the
pixel dimensions otherwise; estimates are shown with a leading "~".

Examples:
  px list
  px list --sort size --limit 20
  px list --from 2024-01-01 --to 2024-06-30 --min-size 5MB
  px list beach
  px list --ids --sort size | head`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	// Sort defaults to the config value, handled in runList
	listCmd.Flags().StringVarP(&listSortBy, "sort", "s", "date", "Sort by field (date, size, name)")
	listCmd.Flags().BoolVarP(&listReverse, "reverse", "r", false, "Reverse sort order")
	listCmd.Flags().StringVar(&listFrom, "from", "", "Only photos taken on or after this date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Only photos taken on or before this date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listMinSize, "min-size", "", "Only photos at least this large (e.g. 2.5, 800KB, 3MB)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most this many photos")
	listCmd.Flags().BoolVar(&listIDsOnly, "ids", false, "Print identifiers only, one per line")
}

func runList(cmd *cobra.Command, args []string) error {
	// If the flag was NOT changed by the user, use the config default
	if !cmd.Flags().Changed("sort") {
		listSortBy = appConfig.DefaultSort
	}
	if !cmd.Flags().Changed("reverse") {
		listReverse = appConfig.ReverseSort
	}

	sortKey, err := domain.ParseSortKey(listSortBy)
	if err != nil {
		return err
	}

	dateRange, err := parseOptionalRange(listFrom, listTo)
	if err != nil {
		return err
	}

	minMB := appConfig.MinSize.MB()
	if listMinSize != "" {
		if minMB, err = parseMinSize(listMinSize); err != nil {
			return err
		}
	}

	req := services.ListRequest{
		Range:     dateRange,
		MinSizeMB: minMB,
		SortBy:    sortKey,
		Reverse:   listReverse,
		Limit:     listLimit,
	}
	if len(args) == 1 {
		req.Query = args[0]
	}

	ctx, cancel := getContext()
	defer cancel()

	resp, err := listService.Execute(ctx, req)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list photos"))
		return err
	}

	if listIDsOnly {
		for _, asset := range resp.Assets {
			fmt.Println(asset.ID)
		}
		return nil
	}

	// Handle empty results
	if len(resp.Assets) == 0 {
		if resp.Total == 0 {
			fmt.Println(ui.FormatWarning("No photos found in " + photoLibrary.Name() + " library"))
		} else {
			fmt.Println(ui.FormatWarning(fmt.Sprintf("None of %d photos match", resp.Total)))
		}
		return nil
	}

	fmt.Println(ui.FormatTitle(fmt.Sprintf("Photos by %s", sortKey.Label())))
	fmt.Println()
	fmt.Print(assetTable(resp.Assets, resp.Sizes).Render())
	fmt.Println()

	fmt.Println(ui.FormatMuted(fmt.Sprintf("Showing %d of %d photos", len(resp.Assets), resp.Total)))
	return nil
}

// assetTable builds the table shared by list and filter
func assetTable(assets []domain.PhotoAsset, sizes domain.SizeCache) *ui.Table {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Name", Width: 24, Align: "left"},
		{Header: "Taken", Width: 12, Align: "left"},
		{Header: "Dimensions", Width: 11, Align: "right"},
		{Header: "Size", Width: 9, Align: "right"},
		{Header: "ID", Width: 20, Align: "left"},
	})

	for _, asset := range assets {
		size, known := sizes[asset.ID]
		table.AddRow(
			truncate(asset.DisplayName(), 40),
			formatDate(asset),
			asset.GetDimensions(),
			formatSize(size, known),
			truncate(asset.ID, 48),
		)
	}
	return table
}
