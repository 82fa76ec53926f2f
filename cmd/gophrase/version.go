package main

import (
	"fmt"

	"github.com/ZaguanLabs/gophrase"
	"github.com/spf13/cobra"
)

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, gophrase.VersionInfo())
			if gophrase.GitCommit != "" {
				_, _ = fmt.Fprintf(out, "  commit:  %s\n", gophrase.GitCommit)
			}
		},
	}
}
