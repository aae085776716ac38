package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	adviseFramework string
	draftDocPath    string
)

var improveCmd = &cobra.Command{
	Use:   "improve [requirement]",
	Short: "Suggest how to meet a requirement",
	Long:  `Asks the LLM for a short, actionable tip for meeting one framework requirement.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImprove,
}

var draftCmd = &cobra.Command{
	Use:   "draft [requirement]",
	Short: "Draft a disclosure paragraph",
	Long: `Drafts a disclosure paragraph for one framework requirement.

With --doc, the draft is grounded on the two most relevant passages of the
report. When nothing in the report is relevant enough, a plausible paragraph
is invented and flagged as such.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

var summariseCmd = &cobra.Command{
	Use:     "summarise [file]",
	Aliases: []string{"summarize"},
	Short:   "Summarise a report in a few bullet points",
	Args:    cobra.ExactArgs(1),
	RunE:    runSummarise,
}

func init() {
	improveCmd.Flags().StringVarP(&adviseFramework, "framework", "f", "", "framework name")
	_ = improveCmd.MarkFlagRequired("framework")

	draftCmd.Flags().StringVarP(&adviseFramework, "framework", "f", "", "framework name")
	draftCmd.Flags().StringVarP(&draftDocPath, "doc", "d", "", "report file to ground the draft on")
	_ = draftCmd.MarkFlagRequired("framework")
	_ = draftCmd.MarkFlagRequired("doc")

	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(summariseCmd)
}

func runImprove(cmd *cobra.Command, args []string) error {
	if advisorService == nil {
		return errors.New("advisor service not configured")
	}

	advice, err := advisorService.Improve(cmd.Context(), adviseFramework, args[0])
	if err != nil {
		return fmt.Errorf("improve failed: %w", err)
	}
	cmd.Println(advice)
	return nil
}

func runDraft(cmd *cobra.Command, args []string) error {
	if advisorService == nil {
		return errors.New("advisor service not configured")
	}

	text, err := readDocument(cmd, draftDocPath)
	if err != nil {
		return err
	}

	draft, err := advisorService.Draft(cmd.Context(), adviseFramework, args[0], text)
	if err != nil {
		return fmt.Errorf("draft failed: %w", err)
	}

	if draft.LowMatch {
		cmd.Printf("Note: no passage in the report matched well (best %.2f); this draft is invented.\n\n", draft.TopScore)
	}
	cmd.Println(draft.Text)
	return nil
}

func runSummarise(cmd *cobra.Command, args []string) error {
	if advisorService == nil {
		return errors.New("advisor service not configured")
	}

	text, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	points, err := advisorService.Summarise(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("summarise failed: %w", err)
	}
	for _, p := range points {
		cmd.Printf("  - %s\n", p)
	}
	return nil
}
