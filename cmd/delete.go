package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/prompt"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	deleteYes bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [id...]",
	Aliases: []string{"rm"},
	Short:   "Delete photos from the library",
	Long: `Delete photos by identifier or filename, or pick them interactively.

The first deletion asks for confirmation. Once you have confirmed one, px
remembers it and later deletions run straight away (use 'px config reset'
to be asked again).

Examples:
  px delete                   # pick photos with a fuzzy finder
  px delete IMG_0042.JPG
  px list --ids --min-size 20MB | xargs px delete`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	// 1. Load the library
	listResp, err := listService.Execute(ctx, services.ListRequest{SortBy: defaultSortKey()})
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list photos"))
		return err
	}
	if len(listResp.Assets) == 0 {
		fmt.Println(ui.FormatWarning("No photos found"))
		return nil
	}

	// 2. Select photos
	var targets []domain.PhotoAsset
	if len(args) == 0 {
		targets, err = pickAssets(listResp.Assets, listResp.Sizes, true)
		if err != nil {
			return err
		}
	} else {
		var missing []string
		targets, missing = resolveAssets(listResp.Assets, args)
		for _, id := range missing {
			fmt.Println(ui.FormatWarning("Not in library: " + id))
		}
	}
	if len(targets) == 0 {
		fmt.Println(ui.FormatInfo("Nothing to delete."))
		return nil
	}

	// 3. Confirmation gate
	gate := newDeleteGate()
	state := gate.Request(ctx, targets[0])
	if state == domain.DeleteConfirming {
		var total float64
		for _, a := range targets {
			total += listResp.Sizes.MB(a.ID)
		}
		fmt.Println(ui.FormatTrash(fmt.Sprintf("About to delete %d photo(s), %.1f MB:", len(targets), total)))
		names := make([]string, len(targets))
		for i, a := range targets {
			names[i] = a.DisplayName()
		}
		fmt.Print(ui.RenderSimpleList(names))

		ok := deleteYes
		if !ok {
			ok, err = prompt.Confirm("Delete these photos", false)
			if err != nil && !prompt.IsAborted(err) {
				gate.Cancel()
				return err
			}
		}
		if !ok {
			gate.Cancel()
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
		gate.Confirm(ctx)
	}
	defer gate.Finish()

	// 4. Delete
	if err := deleteService.Execute(ctx, services.DeleteRequest{Assets: targets}); err != nil {
		fmt.Println(ui.FormatError("Delete failed"))
		return err
	}

	for _, a := range targets {
		fmt.Println(ui.FormatSuccess("Deleted " + a.DisplayName()))
	}
	return nil
}
