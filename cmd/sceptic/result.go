package main

import (
	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result <job-id>",
	Short: "Fetch an analysis result by job id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, cleanup, err := newManager()
		if err != nil {
			return err
		}
		defer cleanup()

		job, err := manager.GetResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJob(job)
	},
}
