package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

type timetableOptions struct {
	At   string
	JSON bool
}

func addTimetable(topLevel *cobra.Command) {
	to := &timetableOptions{}
	cmd := &cobra.Command{
		Use:     "timetable",
		Aliases: []string{"tt"},
		Short:   "List the periods of the active timetable.",
		Example: `
classclock timetable
classclock timetable --timetable timetable2.json --at 13:20
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

			now, err := atTime(to.At, a.loc)
			if err != nil {
				return err
			}
			ref, err := a.load(context.Background())
			if err != nil {
				return err
			}
			cur := a.clock.Refresh(now)
			periods := a.store.Periods()

			out := cmd.OutOrStdout()
			if to.JSON {
				b, err := json.MarshalIndent(periods, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(b))
				return nil
			}

			bold := color.New(color.Bold).SprintFunc()
			_, _ = fmt.Fprintln(out, bold(ref.String()))
			if len(periods) == 0 {
				_, _ = fmt.Fprintln(out, color.YellowString("no periods"))
				return nil
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("", bold("#"), bold("Name"), bold("Start"), bold("End"))
			for i, p := range periods {
				marker, name := "", p.Name
				if i == cur.Index {
					marker, name = color.GreenString(">"), color.GreenString(p.Name)
				}
				tbl.AddRow(marker, strconv.Itoa(i+1), name, p.Start, p.End)
			}
			_, _ = fmt.Fprintln(out, tbl)
			return nil
		},
	}

	cmd.Flags().StringVar(&to.At, "at", "", "Mark the period running at HH:MM today.")
	cmd.Flags().BoolVar(&to.JSON, "json", false, "Output as JSON.")

	topLevel.AddCommand(cmd)
}
