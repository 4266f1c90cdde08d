package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Netcracker/qubership-code-review-agent/service"
	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

const (
	outputJson  = "json"
	outputTable = "table"
)

var (
	reviewFile     string
	reviewLanguage string
	reviewFilename string
	reviewContext  string
	reviewOutput   string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a single file or stdin",
	Long: `Reviews the code read from --file, or from stdin when no file is given, with
the configured LLM provider (or the remote workflow in remote mode).`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVarP(&reviewFile, "file", "f", "", "file to review (default stdin)")
	reviewCmd.Flags().StringVarP(&reviewLanguage, "language", "l", "", "programming language of the code")
	reviewCmd.Flags().StringVar(&reviewFilename, "filename", "", "file name reported to the reviewer (default --file)")
	reviewCmd.Flags().StringVarP(&reviewContext, "context", "c", "", "free-form context about the code")
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", outputTable, "output format: table or json")
}

func runReview(cmd *cobra.Command, args []string) error {
	if reviewOutput != outputJson && reviewOutput != outputTable {
		return fmt.Errorf("unknown output format %q, available options are: %s, %s", reviewOutput, outputTable, outputJson)
	}
	code, err := readCode(cmd.InOrStdin(), reviewFile)
	if err != nil {
		return err
	}
	filename := reviewFilename
	if filename == "" {
		filename = reviewFile
	}
	input := view.ReviewInput{
		Code:     code,
		Language: reviewLanguage,
		Filename: filename,
		Context:  reviewContext,
	}

	systemInfoService, err := service.NewSystemInfoService()
	if err != nil {
		return err
	}
	if err = configureLogging(systemInfoService); err != nil {
		return err
	}
	a, err := newApp(systemInfoService, nil)
	if err != nil {
		return err
	}

	resp, err := a.reviewService.Review(cmd.Context(), input)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	return writeReview(cmd.OutOrStdout(), resp.Data, reviewOutput)
}

func readCode(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}
	return string(data), nil
}

func writeReview(w io.Writer, result *view.ReviewResult, format string) error {
	if format == outputJson {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("Code Review")
	summary.AppendRow(table.Row{"Overall rating", fmt.Sprintf("%d/%d", result.OverallRating, view.MaxOverallRating)})
	summary.AppendRow(table.Row{"Summary", result.Summary})
	for _, aspect := range result.PositiveAspects {
		summary.AppendRow(table.Row{"Positive", aspect})
	}
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	summary.Render()

	if len(result.Issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}

	issues := table.NewWriter()
	issues.SetOutputMirror(w)
	issues.SetStyle(table.StyleLight)
	issues.AppendHeader(table.Row{"#", "Severity", "Type", "Line", "Description", "Suggestion"})
	for i, issue := range result.Issues {
		line := "-"
		if issue.Line != nil {
			line = strconv.Itoa(*issue.Line)
		}
		issues.AppendRow(table.Row{i + 1, issue.Severity, issue.Type, line, issue.Description, issue.Suggestion})
	}
	issues.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, WidthMax: 50},
		{Number: 6, WidthMax: 50},
	})
	issues.Render()
	return nil
}
