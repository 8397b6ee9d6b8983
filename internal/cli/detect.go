package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pgrel/relation"
)

// NewDetectCommand creates the detect command, which classifies the
// protocol version spoken on a relation from a bag file.
func NewDetectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <bags-file>",
		Short: "Classify the protocol version of a relation",
		Args:  cobra.ExactArgs(1),

		SilenceUsage:  true,
		SilenceErrors: false,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(args[0], rootOpts, cmd)
		},
	}
}

func runDetect(path string, rootOpts *RootOptions, cmd *cobra.Command) error {
	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())

	bags, err := LoadBags(path)
	if err != nil {
		return err
	}
	version := relation.DetectVersion(bags)

	if rootOpts.Format == "json" {
		return out.JSON(map[string]string{
			"relation_id": bags.RelationID,
			"version":     version.String(),
		})
	}
	out.Text("relation %s: %s", bags.RelationID, version)
	return nil
}
