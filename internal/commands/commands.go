// Package commands holds the classclock CLI.
package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"
)

var (
	ro = &rootOptions{}
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classclock",
		Short: base.Wrap80("Classroom wall clock that knows the timetable and reads it out loud."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addRootFlags(cmd, ro)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addServe(topLevel)
	addStatus(topLevel)
	addTimetable(topLevel)
	addSay(topLevel)
	addSnapshot(topLevel)
	addVersion(topLevel)
}
