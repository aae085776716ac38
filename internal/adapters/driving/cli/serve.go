package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/comply/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/comply/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON API used by web front ends:

  POST /api/analyze/{framework}           score a report
  POST /api/analyze/{framework}/improve   improvement tip for a requirement
  POST /api/analyze/{framework}/draft     draft a disclosure paragraph
  POST /api/analyze/summary               summarise a report
  POST /api/embed                         index a report for chat
  GET  /api/documents                     list indexed reports
  POST /api/chat                          ask about an indexed report
  GET  /api/frameworks                    list frameworks
  GET  /healthz                           liveness

Prompt files are reloaded when they change on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if complianceService == nil {
		return errors.New("compliance service not configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Compliance: complianceService,
		Advisor:    advisorService,
		Corpus:     corpusService,
	}, addr)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if promptWatcher != nil {
		watcher := promptWatcher
		g.Go(func() error {
			// A broken watcher only disables hot reload.
			if err := watcher.Run(ctx); err != nil {
				logger.Error("prompt watcher stopped: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		fmt.Fprintf(cmd.OutOrStdout(), "API listening on http://%s\n", addr)
		return server.Run(ctx)
	})

	return g.Wait()
}
