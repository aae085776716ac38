package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/comply/internal/core/domain"
)

var (
	indexName string
	askDoc    string
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index a report for questions",
	Long: `Chunks and embeds a plain text report into the chat corpus so that
"comply ask" can answer questions about it with page citations.

The document is stored under its file name unless --name is given.
Indexing a name again replaces the earlier content.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove an indexed document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsRemove,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about an indexed report",
	Long: `Answers a question from the passages of an indexed report, citing the pages
used, and suggests follow-up questions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	indexCmd.Flags().StringVarP(&indexName, "name", "n", "", "document name (defaults to the file name)")
	askCmd.Flags().StringVarP(&askDoc, "doc", "d", "", "indexed document name")

	documentsCmd.AddCommand(documentsRemoveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(askCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	text, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	name := indexName
	if name == "" {
		if args[0] == "-" {
			return errors.New("--name is required when reading from stdin")
		}
		name = filepath.Base(args[0])
	}

	n, err := corpusService.Index(cmd.Context(), name, text)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	cmd.Printf("Indexed %s: %d chunks\n", name, n)
	return nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	docs, err := corpusService.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Println("Documents:")
	for _, d := range docs {
		model := d.EmbeddingModel
		if model == "" {
			model = "unknown model"
		}
		cmd.Printf("  %s (%d chunks, %s, indexed %s)\n",
			d.Name, d.Chunks, model, d.IndexedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentsRemove(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	if err := corpusService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	answer, err := corpusService.Ask(cmd.Context(), askDoc, []domain.ChatMessage{
		{Role: "user", Content: args[0]},
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range answer.Sources {
			cmd.Printf("  %s\n", s)
		}
	}
	if len(answer.FollowUps) > 0 {
		cmd.Println()
		cmd.Println("You could also ask:")
		for _, q := range answer.FollowUps {
			cmd.Printf("  - %s\n", q)
		}
	}
	return nil
}
