// Package main provides a command-line client for the Naruto catalog API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/detail"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/session"
	"github.com/meur/dattebayo/internal/view"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	baseURL string
	output  string
	timeout time.Duration
	verbose bool
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *options) client() *catalog.Client {
	return catalog.New(o.baseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: o.timeout}),
		catalog.WithLogger(o.logger()),
	)
}

func rootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the Naruto catalog API",
		Long: `Query the Dattebayo catalog from the command line.

Examples:
  catalog collections                  # List known collections
  catalog list clans --page 2          # Fetch one page
  catalog show teams 12                # Team 12 with its members
  catalog dump akatsuki -o yaml        # Every member, as YAML
  catalog dump clans --sort memberCountDesc --query uch
`,
		SilenceUsage: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.baseURL, "api", envOr("DATTEBAYO_API_URL", catalog.DefaultBaseURL), "Catalog API base URL")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(collectionsCmd(opts), listCmd(opts), showCmd(opts), dumpCmd(opts))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func lookup(slug string) (models.Collection, error) {
	c, ok := models.LookupCollection(slug)
	if !ok {
		return models.Collection{}, fmt.Errorf("%w: %s", catalog.ErrUnknownCollection, slug)
	}
	return c, nil
}

func collectionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the known collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCollections(cmd.OutOrStdout(), opts.output, models.Collections())
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Fetch one page of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := lookup(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = c.Limit
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			p, err := opts.client().FetchPage(ctx, c.Slug, page, limit)
			if err != nil {
				return err
			}
			return writeEntities(cmd.OutOrStdout(), opts.output, c, p.Items, p.Total)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (defaults to the collection's own)")
	return cmd
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <collection> <id>",
		Short: "Show one entity with its related characters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := lookup(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			d, err := detail.New(opts.client()).Resolve(ctx, c, id)
			if err != nil {
				return err
			}
			return writeDetail(cmd.OutOrStdout(), opts.output, d)
		},
	}
}

func dumpCmd(opts *options) *cobra.Command {
	var (
		query, sort string
		raw         bool
	)

	cmd := &cobra.Command{
		Use:   "dump <collection>",
		Short: "Fetch every page of a collection",
		Long: `Fetch every page of a collection the way the viewer accumulates it:
entities the viewer would not list are skipped and repeated ids keep their
first occurrence. --raw prints the pages exactly as served.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := lookup(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			client := opts.client()
			if raw {
				items, err := client.FetchAll(ctx, c.Slug, c.Limit)
				if err != nil {
					return err
				}
				return writeEntities(cmd.OutOrStdout(), opts.output, c, items, len(items))
			}

			l := session.NewFactory(client, opts.logger(), nil)(c)
			if err := l.LoadAll(ctx); err != nil {
				return err
			}
			snap := l.Snapshot()
			items := view.Derive(snap.Items, query, view.ParseSortMode(sort), c.RelationKey())
			return writeEntities(cmd.OutOrStdout(), opts.output, c, items, snap.Total)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Keep names containing this text")
	cmd.Flags().StringVar(&sort, "sort", models.SortLoaded, "Sort option id, e.g. nameAsc or memberCountDesc")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print pages as served, without filtering or deduplication")
	return cmd
}
