package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, cleanup, err := newManager()
		if err != nil {
			return err
		}
		defer cleanup()

		analyses, err := manager.List(cmd.Context(), listLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPREDICTION\tRISK\tCREATED")
		for _, job := range analyses {
			prediction, risk := "-", "-"
			if job.Result != nil {
				prediction = string(job.Result.Prediction)
				risk = fmt.Sprintf("%.1f", job.Result.RiskScore)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				job.ID, job.State, prediction, risk, job.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum rows to show")
}
