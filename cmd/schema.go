package cmd

import (
	"fmt"

	"github.com/Netcracker/qubership-code-review-agent/client"
	"github.com/spf13/cobra"
)

var schemaInput bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the review result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := client.ReviewResultSchema
		if schemaInput {
			schema = client.OutputSchema{Name: "review_input", Schema: client.ReviewInputSchema}
		}
		data, err := schema.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&schemaInput, "input", false, "print the schema of the review request instead")
}
