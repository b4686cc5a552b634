package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pkt.systems/repostamp/internal/collab"
	"pkt.systems/repostamp/internal/namegen"
)

func newGeneratorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List name generators and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := namegen.Default()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range reg.Names() {
				fields, err := reg.Fields(name)
				if err != nil {
					return err
				}
				rows := make([][2]string, 0, len(fields))
				for _, f := range fields {
					rows = append(rows, [2]string{f.Name, f.Info})
				}
				writeStrategy(w, name, rows)
			}
			return w.Flush()
		},
	}
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List collaborator sources and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := collab.Default()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range reg.Names() {
				fields, err := reg.Fields(name)
				if err != nil {
					return err
				}
				rows := make([][2]string, 0, len(fields))
				for _, f := range fields {
					rows = append(rows, [2]string{f.Name, f.Info})
				}
				writeStrategy(w, name, rows)
			}
			return w.Flush()
		},
	}
}

func writeStrategy(w io.Writer, name string, fields [][2]string) {
	_, _ = fmt.Fprintln(w, name)
	if len(fields) == 0 {
		_, _ = fmt.Fprintln(w, "  (no parameters)\t")
		return
	}
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", f[0], f[1])
	}
}
