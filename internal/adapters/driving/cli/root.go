// Package cli provides the comply command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/comply/internal/core/ports/driving"
	"github.com/custodia-labs/comply/internal/logger"
)

// version is set by SetVersion from build flags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	ephemeral bool
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Runner is a long-lived background task started by serve.
type Runner interface {
	Run(ctx context.Context) error
}

// Services holds the driving ports the commands call.
type Services struct {
	Compliance driving.ComplianceService
	Advisor    driving.AdvisorService
	Corpus     driving.CorpusService
	Settings   driving.SettingsService

	// PromptWatcher reloads prompt templates while serving. Optional.
	PromptWatcher Runner

	// Close releases stores and AI clients. Optional.
	Close func()
}

// Options carries global flag values to the bootstrap function.
type Options struct {
	// Ephemeral keeps the chat corpus in memory.
	Ephemeral bool
}

// BootstrapFunc builds the services once flags are parsed.
type BootstrapFunc func(opts Options) (*Services, error)

var (
	complianceService driving.ComplianceService
	advisorService    driving.AdvisorService
	corpusService     driving.CorpusService
	settingsService   driving.SettingsService
	promptWatcher     Runner
	closeServices     func()

	bootstrap BootstrapFunc
)

var rootCmd = &cobra.Command{
	Use:   "comply",
	Short: "Score sustainability reports against disclosure frameworks",
	Long: `comply matches a company disclosure against regulatory checklists (GRI, SASB,
TCFD, CSRD or your own) and scores every requirement by semantic similarity.

It can also suggest improvements, draft missing disclosures, and answer
questions about indexed reports with page citations.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the chat corpus in memory")
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly.
func SetServices(s *Services) {
	complianceService = s.Compliance
	advisorService = s.Advisor
	corpusService = s.Corpus
	settingsService = s.Settings
	promptWatcher = s.PromptWatcher
	closeServices = s.Close
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			closeServices()
		}
	}()
	// cmd.Print* default to stderr; reports belong on stdout.
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] != "" {
		return nil
	}

	services, err := bootstrap(Options{Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

// readDocument reads a plain text document from path, or from stdin when path is "-".
func readDocument(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("document is empty")
	}
	return text, nil
}
