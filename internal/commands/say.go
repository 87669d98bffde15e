package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"classclock/internal/clock"
)

func addSay(topLevel *cobra.Command) {
	at := ""
	validArgs := make([]string, 0, len(clock.Kinds()))
	for _, k := range clock.Kinds() {
		validArgs = append(validArgs, string(k))
	}

	cmd := &cobra.Command{
		Use:       "say <" + strings.Join(validArgs, "|") + ">",
		Short:     "Speak one announcement about the current period.",
		ValidArgs: validArgs,
		Example: `
classclock say time
classclock say remaining --at 09:20
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			_, err := clock.ParseKind(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			kind, _ := clock.ParseKind(args[0])

			cfg, err := ro.loadConfig(true)
			if err != nil {
				return err
			}
			a := newApp(cfg, true)
			defer a.close()

			now, err := atTime(at, a.loc)
			if err != nil {
				return err
			}
			// The period kinds still speak their "no period" sentence
			// when the timetable cannot be read.
			_, _ = a.load(context.Background())

			text := a.clock.AnnouncementText(kind, now)
			a.sink.Speak(text)
			a.metrics.IncAnnouncements(string(kind))
			if a.tts != nil {
				a.tts.Wait()
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Announce as if it were HH:MM today.")

	topLevel.AddCommand(cmd)
}
