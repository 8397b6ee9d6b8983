package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pgrel/reconcile"
	"github.com/roach88/pgrel/relation"
	"github.com/roach88/pgrel/store"
)

// runResult is the JSON shape of one relation's reconcile outcome.
type runResult struct {
	RelationID string              `json:"relation_id"`
	Version    *relation.Version   `json:"version,omitempty"`
	Readiness  *relation.Readiness `json:"readiness,omitempty"`
	Events     []relation.Event    `json:"events"`
	Error      string              `json:"error,omitempty"`
}

// NewRunCommand creates the run command, which reconciles a batch file
// against the persisted snapshot store and reports the derived events.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var storePath string
	var maxParallel int

	cmd := &cobra.Command{
		Use:   "run <batch-file>",
		Short: "Reconcile a batch of relations against the snapshot store",
		Long: `Run one reconcile pass: evaluate every relation in the batch file,
diff each against its persisted snapshot, emit the resulting events,
and persist the new state. Relations present in the store but absent
from the batch are reported as departed and removed.`,
		Args: cobra.ExactArgs(1),

		SilenceUsage:  true,
		SilenceErrors: false,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args[0], storePath, maxParallel, rootOpts, cmd)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "pgrel.db", "path to the snapshot store")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", 0, "max concurrent evaluations (0 = GOMAXPROCS)")

	return cmd
}

func runRun(batchPath, storePath string, maxParallel int, rootOpts *RootOptions, cmd *cobra.Command) error {
	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())

	batch, err := LoadBatch(batchPath)
	if err != nil {
		return err
	}

	st, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	var opts []reconcile.Option
	if maxParallel > 0 {
		opts = append(opts, reconcile.WithMaxParallel(maxParallel))
	}
	results, err := reconcile.New(st, opts...).Run(cmd.Context(), batch)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		return out.JSON(toRunResults(results))
	}
	renderRunResults(out, results)
	return nil
}

func toRunResults(results []reconcile.Result) []runResult {
	out := make([]runResult, 0, len(results))
	for _, res := range results {
		r := runResult{
			RelationID: res.RelationID,
			Events:     res.Events,
		}
		if r.Events == nil {
			r.Events = []relation.Event{}
		}
		if res.Snapshot != nil {
			v := res.Snapshot.Version
			r.Version = &v
			readiness := res.Readiness
			r.Readiness = &readiness
		}
		if res.Err != nil {
			r.Error = res.Err.Error()
		}
		out = append(out, r)
	}
	return out
}

func renderRunResults(out *OutputFormatter, results []reconcile.Result) {
	for _, res := range results {
		switch {
		case res.Err != nil:
			out.Text("relation %s: error: %v", res.RelationID, res.Err)
		case res.Snapshot == nil:
			out.Text("relation %s: departed", res.RelationID)
		default:
			out.Readiness(res.Snapshot, &res.Readiness)
		}
		out.Events(res.Events)
	}
}
