package cli

import (
	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Inspect seed files",
	}
	cmd.AddCommand(newSeedCheckCmd(app))
	return cmd
}

func newSeedCheckCmd(app *App) *cobra.Command {
	var withItems bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Load a seed and report how many records were kept and skipped",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			res, err := loadSeed(cmd.Context(), app, path)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{
				"loaded":  len(res.Items),
				"skipped": res.Skipped,
			}
			if withItems {
				data["items"] = res.Items
			} else {
				names := make([]string, 0, len(res.Items))
				for _, it := range res.Items {
					names = append(names, it.Name)
				}
				data["names"] = names
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}

	cmd.Flags().BoolVar(&withItems, "items", false, "Include full records (with image bytes) instead of names")

	return cmd
}
