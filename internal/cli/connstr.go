package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pgrel/connstr"
)

// NewConnstrCommand creates the connstr command, which parses a libpq
// key/value connection string and prints its canonical form and URI.
func NewConnstrCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "connstr <conninfo>",
		Short: "Parse a connection string and print its canonical forms",
		Args:  cobra.ExactArgs(1),

		SilenceUsage:  true,
		SilenceErrors: false,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnstr(args[0], rootOpts, cmd)
		},
	}
}

func runConnstr(raw string, rootOpts *RootOptions, cmd *cobra.Command) error {
	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())

	c, err := connstr.Parse(raw)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		return out.JSON(map[string]string{
			"conninfo": c.String(),
			"uri":      c.URI(),
		})
	}
	out.Text("conninfo: %s", c)
	out.Text("uri:      %s", c.URI())
	return nil
}
