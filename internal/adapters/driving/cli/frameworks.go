package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List available frameworks",
	Long: `Lists the frameworks that reports can be checked against: the built-in
checklists plus any found in the user checklist directory.`,
	Args: cobra.NoArgs,
	RunE: runFrameworks,
}

func init() {
	rootCmd.AddCommand(frameworksCmd)
}

func runFrameworks(cmd *cobra.Command, _ []string) error {
	if complianceService == nil {
		return errors.New("compliance service not configured")
	}

	frameworks := complianceService.Frameworks()
	if len(frameworks) == 0 {
		cmd.Println("No frameworks found.")
		return nil
	}

	cmd.Println("Frameworks:")
	for _, fw := range frameworks {
		cmd.Printf("  %-8s %-10s %3d requirements  (policy: %s)\n",
			fw.Name, fw.DisplayName(), fw.Checklist.Len(), fw.Policy)
	}
	return nil
}
