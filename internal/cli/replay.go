package cli

import (
	"fmt"

	"cachemaker/internal/dragdrop"
	"cachemaker/internal/journal"
	"cachemaker/internal/script"

	"github.com/spf13/cobra"
)

func newReplayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a drag-and-drop gesture script and print the resulting lists and journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := script.LoadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := loadSeed(ctx, app, "")
			if err != nil {
				return writeErr(cmd, err)
			}
			j, err := journal.Open(ctx, app.cfg.Journal.DSN)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("open journal: %w", err))
			}
			defer j.Close()

			eng := dragdrop.NewEngine(sc.Catalog(res.Items),
				dragdrop.WithLogger(app.logger),
				dragdrop.WithRecorder(j),
			)
			rep, runErr := script.NewRunner(eng, app.logger).Run(ctx, sc)

			entries, err := j.Entries(ctx, 0)
			if err != nil {
				return writeErr(cmd, err)
			}
			if entries == nil {
				entries = []journal.Entry{}
			}
			out := map[string]any{"data": map[string]any{
				"name":    rep.Name,
				"steps":   rep.Steps,
				"lists":   rep.Lists,
				"journal": entries,
				"ok":      runErr == nil,
			}}
			if err := writeOut(cmd, app, out); err != nil {
				return err
			}
			if runErr != nil {
				return writeErr(cmd, runErr)
			}
			return nil
		},
	}
	return cmd
}
