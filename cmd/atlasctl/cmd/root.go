package cmd

import (
	"github.com/spf13/cobra"
)

var serverAddr string

// RootCommand creates and returns the root atlasctl command.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "atlasctl",
		Short: "Submit and inspect jobs on an atlas server",
	}
	root.PersistentFlags().StringVar(&serverAddr, "addr", "http://localhost:8080", "atlas server base address")

	root.AddCommand(submitCommand())
	root.AddCommand(getCommand())
	root.AddCommand(watchCommand())

	return root
}
