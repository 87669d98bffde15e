package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"classclock/internal/clock"
)

type statusOptions struct {
	At   string
	JSON bool
}

func addStatus(topLevel *cobra.Command) {
	so := &statusOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the time, the current period and the minutes left.",
		Example: `
classclock status
classclock status --at 10:05
classclock status --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := ro.loadConfig(true)
			if err != nil {
				return err
			}
			a := newApp(cfg, false)
			defer a.close()

			now, err := atTime(so.At, a.loc)
			if err != nil {
				return err
			}
			ref, err := a.load(context.Background())
			if err != nil {
				return err
			}

			snap := a.clock.Snapshot(now)
			out := cmd.OutOrStdout()
			if so.JSON {
				b, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(b))
				return nil
			}

			bold := color.New(color.Bold).SprintFunc()
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold("Time"), snap.Digital)
			tbl.AddRow(bold("Timetable"), ref.String())
			if snap.Active {
				tbl.AddRow(bold("Period"), color.GreenString(snap.Name))
			} else {
				tbl.AddRow(bold("Period"), color.YellowString(clock.Placeholder))
			}
			tbl.AddRow(bold("Start"), snap.Start)
			tbl.AddRow(bold("End"), snap.End)
			tbl.AddRow(bold("Remaining"), snap.RemainingText())
			_, _ = fmt.Fprintln(out, tbl)
			return nil
		},
	}

	cmd.Flags().StringVar(&so.At, "at", "", "Evaluate at HH:MM today instead of now.")
	cmd.Flags().BoolVar(&so.JSON, "json", false, "Output as JSON.")

	topLevel.AddCommand(cmd)
}
