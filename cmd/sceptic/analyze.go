package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sceptic-ai/sceptic-go/internal/models"
	"github.com/spf13/cobra"
)

var analyzeLanguage string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a code file or stdin",
	Long: `Analyze reads source code from the given file, or from stdin when the
argument is "-" or omitted, and prints the analysis result. Small inputs are
processed synchronously; large ones return a job id to poll with "result".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readInput(args)
		if err != nil {
			return err
		}

		manager, cleanup, err := newManager()
		if err != nil {
			return err
		}
		defer cleanup()

		job, err := manager.SubmitCode(cmd.Context(), code, analyzeLanguage)
		if err != nil {
			return err
		}

		if !job.State.Terminal() {
			fmt.Printf("Job %s is %s; poll with: sceptic result %s\n", job.ID, job.State, job.ID)
			return nil
		}
		return printJob(job)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "language hint (advisory)")
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printJob(job models.AnalysisJob) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
