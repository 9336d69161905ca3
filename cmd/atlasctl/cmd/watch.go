package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func watchCommand() *cobra.Command {
	var interval time.Duration
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it reaches SUCCESS or FAILED",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverAddr)
			deadline := time.Now().Add(timeout)

			for {
				job, err := client.getJob(args[0])
				if err != nil {
					return err
				}

				state, _ := job["state"].(string)
				fmt.Fprintf(cmd.OutOrStdout(), "state=%s attempt=%v\n", state, job["attempt"])

				if state == "SUCCESS" || state == "FAILED" {
					return printJSON(job)
				}
				if timeout > 0 && time.Now().After(deadline) {
					return fmt.Errorf("job %s still %s after %s", args[0], state, timeout)
				}
				time.Sleep(interval)
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 = wait forever)")

	return cmd
}
