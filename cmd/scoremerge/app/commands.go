package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/scoremerge/cmd/scoremerge/cmd/merge"
	"github.com/agentstation/scoremerge/cmd/scoremerge/cmd/months"
	"github.com/agentstation/scoremerge/cmd/scoremerge/cmd/serve"
)

// NewMergeCommand creates the merge command with app dependencies.
func (a *App) NewMergeCommand() *cobra.Command {
	return merge.NewCommand(a)
}

// NewMonthsCommand creates the months command with app dependencies.
func (a *App) NewMonthsCommand() *cobra.Command {
	return months.NewCommand(a)
}

// NewServeCommand creates the serve command with app dependencies.
func (a *App) NewServeCommand() *cobra.Command {
	return serve.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("scoremerge %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
