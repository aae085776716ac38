package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

// excerptRunes bounds the top chunk printed under each requirement.
const excerptRunes = 160

var (
	checkFramework string
	checkJSON      bool
	checkNoAdvice  bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Score a report against a framework",
	Long: `Scores a plain text report against every requirement of a framework checklist.

Each requirement is matched to its most similar passage in the report and
classified as Likely Met, Unclear or Not Met. Requirements that are not met
get improvement advice when an LLM provider is configured.

Use "-" as the file to read the report from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFramework, "framework", "f", "", "framework name (gri, sasb, tcfd, csrd, ...)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output the report as JSON")
	checkCmd.Flags().BoolVar(&checkNoAdvice, "no-advice", false, "skip advice generation")
	_ = checkCmd.MarkFlagRequired("framework")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if complianceService == nil {
		return errors.New("compliance service not configured")
	}

	text, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	report, err := complianceService.Check(cmd.Context(), checkFramework, text,
		driving.CheckOptions{SkipAdvice: checkNoAdvice})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if checkJSON {
		return outputReportJSON(cmd, report)
	}
	outputReportText(cmd, report, stylesFor(cmd.OutOrStdout()))
	return nil
}

func outputReportJSON(cmd *cobra.Command, report *domain.ComplianceReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputReportText(cmd *cobra.Command, report *domain.ComplianceReport, styles *Styles) {
	cmd.Println(styles.Title.Render(strings.ToUpper(report.Framework) + " compliance report"))
	cmd.Println()

	section := ""
	for i := range report.Results {
		r := &report.Results[i]
		if r.Section != section {
			section = r.Section
			if section != "" {
				cmd.Println(styles.Section.Render(section))
			}
		}

		cmd.Printf("  [%s] %s %s\n",
			r.ID,
			styles.Status(r.Status).Render(r.Status.String()),
			styles.Muted.Render(fmt.Sprintf("(%d%%, similarity %.2f)", r.MatchScore, r.Similarity)))
		cmd.Printf("      %s\n", r.Question)
		if r.TopChunk != "" {
			cmd.Printf("      %s\n", styles.Muted.Render("> "+excerpt(r.TopChunk, excerptRunes)))
		}
		if r.Advice != "" {
			cmd.Printf("      Advice: %s\n", r.Advice)
		}
	}

	counts := report.Summary()
	cmd.Println()
	cmd.Printf("%s %d  %s %d  %s %d\n",
		styles.Met.Render("Likely Met:"), counts[domain.StatusLikelyMet],
		styles.Unclear.Render("Unclear:"), counts[domain.StatusUnclear],
		styles.NotMet.Render("Not Met:"), counts[domain.StatusNotMet])
}

// excerpt collapses whitespace and truncates s to n runes.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
