package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codyseavey/jeeves/internal/config"
	"github.com/codyseavey/jeeves/internal/logging"
	"github.com/codyseavey/jeeves/internal/models"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Resolve a card query and print the reply",
	Long: `Lookup fetches the catalog, resolves the query the way the bot would,
and prints the resulting reply to the terminal.

Examples:
  jeeves lookup "deja vu"
  jeeves lookup --kind image sure gamble`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")
		kind, ok := models.ParseQueryKind(kindFlag)
		if !ok {
			return fmt.Errorf("unknown kind %q: want card, image or flavor", kindFlag)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err := logging.New("warn", cfg.Log.Development)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		c, err := newCore(cfg, nil, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Catalog.FetchTimeout.Duration)
		defer cancel()
		if _, err := c.catalog.Reload(ctx); err != nil {
			return fmt.Errorf("error loading catalog: %w", err)
		}

		query := strings.Join(args, " ")
		res, doc, err := c.lookup.Lookup(kind, query)
		if err != nil {
			logger.Debug("lookup failed", zap.String("query", query), zap.Error(err))
			return err
		}

		printDocument(doc, res.Score)
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringP("kind", "k", "card", "reply kind: card, image or flavor")
}

func printDocument(doc models.Document, score int) {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dim := color.New(color.Faint)

	title := doc.Title
	if title == "" && doc.Author != nil {
		title = doc.Author.Name
	}
	titleColor.Println(title)
	if doc.URL != "" {
		dim.Println(doc.URL)
	}
	if doc.Description != "" {
		fmt.Println()
		fmt.Println(doc.Description)
	}
	if doc.Image != "" {
		fmt.Println(doc.Image)
	}
	if doc.Footer != "" {
		fmt.Println()
		dim.Println(doc.Footer)
	}
	dim.Printf("match score %d\n", score)
}
