package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnuragC07/curatd/internal/app"
	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/render"
)

type options struct {
	config   string
	articles int
	videos   int
	json     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "curatd",
		Short:         "Daily productivity articles and videos",
		Long:          "curatd picks a small bundle of productivity articles and videos from a fixed set of sites and channels, skipping anything delivered recently.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app.Application) error {
				fmt.Fprintln(cmd.ErrOrStderr(), "Getting your daily productivity content...")
				bundle, err := a.Daily(cmd.Context(), opts.articles, opts.videos)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), bundle.View())
				}
				return render.NewConsole(cmd.OutOrStdout()).Daily(cmd.OutOrStdout(), bundle)
			})
		},
	}

	root.PersistentFlags().StringVar(&opts.config, "config", "", "path to config file (default $CURATD_CONFIG)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of tables")
	root.Flags().IntVar(&opts.articles, "articles", 2, "number of articles")
	root.Flags().IntVar(&opts.videos, "videos", 2, "number of videos")

	root.AddCommand(newTagsCmd(opts), newServeCmd(opts), newHistoryCmd(opts), newVersionCmd())
	return root
}

func newTagsCmd(opts *options) *cobra.Command {
	var articles, videos int
	cmd := &cobra.Command{
		Use:   "tags <tag>...",
		Short: "Find articles and videos whose titles mention any tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app.Application) error {
				bundle, err := a.Tags(cmd.Context(), args, articles, videos)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), bundle)
				}
				return render.NewConsole(cmd.OutOrStdout()).Tags(cmd.OutOrStdout(), args, bundle)
			})
		},
	}
	cmd.Flags().IntVar(&articles, "articles", 5, "number of articles")
	cmd.Flags().IntVar(&videos, "videos", 5, "number of videos")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app.Application) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recently delivered items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app.Application) error {
				rec := a.History()
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				return render.NewConsole(cmd.OutOrStdout()).History(cmd.OutOrStdout(), rec)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "curatd %s (commit: %s)\n", version, commit)
		},
	}
}

// withApp loads configuration, builds the application and closes it after fn.
func withApp(cmd *cobra.Command, opts *options, fn func(*app.Application) error) error {
	cfg := config.Load(opts.config)
	logger := newLogger(cmd, cfg)

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("close application", "error", cerr)
		}
	}()

	if err := fn(a); err != nil {
		logger.Error("command failed", "command", cmd.Name(), "error", err)
		return err
	}
	return nil
}

// newLogger writes to stderr so stdout carries only rendered output; the
// server logs to stdout like any long running service.
func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	if cmd.Name() == "serve" {
		return logging.New(cfg.Logging.Level)
	}
	return logging.NewWithWriter(os.Stderr, cfg.Logging.Level)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
