package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func submitCommand() *cobra.Command {
	var jobType, payloadJSON string
	var maxRetries int
	var retryDelay float64

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new job",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]any
			if payloadJSON != "" {
				if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
					return fmt.Errorf("invalid --payload JSON: %w", err)
				}
			}

			client := newAPIClient(serverAddr)
			job, err := client.createJob(map[string]any{
				"type":                jobType,
				"payload":             payload,
				"max_retries":         maxRetries,
				"retry_delay_seconds": retryDelay,
			})
			if err != nil {
				return err
			}
			return printJSON(job)
		},
	}

	cmd.Flags().StringVar(&jobType, "type", "", "job type (required)")
	cmd.Flags().StringVar(&payloadJSON, "payload", "{}", "job payload as a JSON object")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum retries after the first attempt")
	cmd.Flags().Float64Var(&retryDelay, "retry-delay-seconds", 0, "base retry delay in seconds")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
