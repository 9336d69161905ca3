package cmd

import (
	"github.com/spf13/cobra"
)

func getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Fetch a job's current record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverAddr)
			job, err := client.getJob(args[0])
			if err != nil {
				return err
			}
			return printJSON(job)
		},
	}
}
