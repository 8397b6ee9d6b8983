package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pgrel/relation"
)

// evaluateResult is the JSON shape of a single evaluation.
type evaluateResult struct {
	RelationID string             `json:"relation_id"`
	Version    relation.Version   `json:"version"`
	Readiness  relation.Readiness `json:"readiness"`
}

// NewEvaluateCommand creates the evaluate command, which builds a
// snapshot from a bag file and reports the readiness verdict.
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <bags-file>",
		Short: "Evaluate relation readiness from a bag file",
		Args:  cobra.ExactArgs(1),

		SilenceUsage:  true,
		SilenceErrors: false,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(args[0], rootOpts, cmd)
		},
	}
}

func runEvaluate(path string, rootOpts *RootOptions, cmd *cobra.Command) error {
	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())

	bags, err := LoadBags(path)
	if err != nil {
		return err
	}
	snap, err := relation.BuildSnapshot(relation.DetectVersion(bags), bags)
	if err != nil {
		return err
	}
	readiness, err := relation.Evaluate(snap)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		return out.JSON(evaluateResult{
			RelationID: snap.RelationID,
			Version:    snap.Version,
			Readiness:  readiness,
		})
	}
	out.Readiness(snap, &readiness)
	return nil
}
