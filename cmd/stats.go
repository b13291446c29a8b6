package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	statsChart string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	Long: `Analyze the library and display useful statistics.

Includes:
  - Photo count, total and average size
  - Largest photo
  - Photos and megabytes per month

Use --chart to also write an HTML bar chart of megabytes per month.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsChart, "chart", "", "Write an HTML chart of MB per month to `FILE`")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	fmt.Println(ui.FormatRocket("Analyzing library..."))

	resp, err := statsService.Execute(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(ui.FormatTitle("Library Analytics"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValues(summaryPairs(resp)))
	fmt.Println()

	if len(resp.ByMonth) > 0 {
		fmt.Println(ui.StyleHeader.Render("By Month"))
		fmt.Println(monthTable(resp.ByMonth).Render())
	}

	if statsChart != "" {
		if err := writeMonthChart(statsChart, resp); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Chart written to " + statsChart))
	}
	return nil
}

// summaryPairs flattens the headline numbers for display
func summaryPairs(resp *services.StatsResponse) [][2]string {
	pairs := [][2]string{
		{"Library", resp.Library},
		{"Photos", humanize.Comma(int64(resp.Count))},
		{"Total Size", formatMB(resp.TotalMB)},
		{"Average Size", formatMB(resp.AverageMB)},
	}
	if resp.Approximate > 0 {
		pairs = append(pairs, [2]string{"Estimated", fmt.Sprintf("%d (from pixel dimensions)", resp.Approximate)})
	}
	if resp.Undated > 0 {
		pairs = append(pairs, [2]string{"Undated", humanize.Comma(int64(resp.Undated))})
	}
	if resp.Largest != nil {
		pairs = append(pairs, [2]string{"Largest", fmt.Sprintf("%s (%s)", resp.Largest.DisplayName(), formatMB(resp.LargestMB))})
	}
	return pairs
}

func monthTable(months []services.MonthStats) *ui.Table {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Month", Width: 10, Align: "left"},
		{Header: "Photos", Width: 8, Align: "right"},
		{Header: "Size", Width: 10, Align: "right"},
		{Header: "", Width: 24, Align: "left"},
	})

	var maxMB float64
	for _, m := range months {
		if m.MB > maxMB {
			maxMB = m.MB
		}
	}
	for _, m := range months {
		table.AddRow(m.Month, humanize.Comma(int64(m.Count)), formatMB(m.MB), bar(m.MB, maxMB, 24))
	}
	return table
}

// bar draws a horizontal bar scaled against peak
func bar(value, peak float64, width int) string {
	if peak <= 0 {
		return ""
	}
	n := int(value / peak * float64(width))
	if n == 0 && value > 0 {
		n = 1
	}
	return ui.StylePrimary.Render(strings.Repeat("█", n))
}

// formatMB renders megabytes the way humanize renders bytes
func formatMB(mb float64) string {
	return formatBytes(int64(mb * 1024 * 1024))
}

// writeMonthChart renders MB per month as an HTML bar chart
func writeMonthChart(path string, resp *services.StatsResponse) error {
	months := make([]string, len(resp.ByMonth))
	sizes := make([]opts.BarData, len(resp.ByMonth))
	counts := make([]opts.BarData, len(resp.ByMonth))
	for i, m := range resp.ByMonth {
		months[i] = m.Month
		sizes[i] = opts.BarData{Value: fmt.Sprintf("%.1f", m.MB)}
		counts[i] = opts.BarData{Value: m.Count}
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "px: " + resp.Library,
			Subtitle: fmt.Sprintf("%d photos, %s", resp.Count, formatMB(resp.TotalMB)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	chart.SetXAxis(months).
		AddSeries("MB", sizes).
		AddSeries("Photos", counts)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
