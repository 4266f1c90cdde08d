package cmd

import (
	"github.com/Netcracker/qubership-code-review-agent/service"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "code-review-agent",
	Short: "LLM backed code review service",
	Long: `Code Review Agent sends source code to an LLM provider and returns a structured
review: overall rating, issues, positive aspects and summary.

Without a subcommand the HTTP service is started.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return service.LoadDotEnv(envFile)
	},
	RunE: runServe,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default ./.env when present)")
}
