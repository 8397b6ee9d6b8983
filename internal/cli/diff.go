package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pgrel/relation"
)

// NewDiffCommand creates the diff command, which derives the events a
// transition between two bag files would fire.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <previous-bags-file> <current-bags-file>",
		Short: "Derive change events between two relation states",
		Args:  cobra.ExactArgs(2),

		SilenceUsage:  true,
		SilenceErrors: false,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], rootOpts, cmd)
		},
	}
}

func runDiff(prevPath, curPath string, rootOpts *RootOptions, cmd *cobra.Command) error {
	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())

	previous, err := loadSnapshot(prevPath)
	if err != nil {
		return err
	}
	current, err := loadSnapshot(curPath)
	if err != nil {
		return err
	}
	events, err := relation.Diff(previous, current)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		if events == nil {
			events = []relation.Event{}
		}
		return out.JSON(events)
	}
	out.Events(events)
	return nil
}

func loadSnapshot(path string) (*relation.Snapshot, error) {
	bags, err := LoadBags(path)
	if err != nil {
		return nil, err
	}
	return relation.BuildSnapshot(relation.DetectVersion(bags), bags)
}
