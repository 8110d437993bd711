package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repoMaxFiles int

var repoCmd = &cobra.Command{
	Use:   "repo <url>",
	Short: "Analyze a GitHub repository",
	Long: `Repo queues a whole-repository analysis in the background and prints
the job id. Poll its state with "sceptic result <id>".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, cleanup, err := newManager()
		if err != nil {
			return err
		}
		defer cleanup()

		job, err := manager.SubmitRepository(cmd.Context(), args[0], repoMaxFiles)
		if err != nil {
			return err
		}
		fmt.Printf("Job %s is %s; poll with: sceptic result %s\n", job.ID, job.State, job.ID)
		return nil
	},
}

func init() {
	repoCmd.Flags().IntVar(&repoMaxFiles, "max-files", 0, "cap on files analyzed (0 = configured default)")
}
