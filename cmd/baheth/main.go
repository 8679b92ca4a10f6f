// Package main is the baheth CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/cli"
	"github.com/hyperjump/baheth/internal/config"
	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/internal/server"
	"github.com/hyperjump/baheth/internal/watcher"
	"github.com/hyperjump/baheth/pkg/utils"
)

var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	debug      bool

	cfg      *config.Config
	resolved string
	logger   *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "baheth",
		Short:         "Arabic semantic search over local documents",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.SetVersionTemplate("baheth version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file path")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(a),
		newSearchCmd(a),
		newIndexCmd(a),
		newDeleteCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newInitCmd(a),
	)
	return cmd
}

// setup loads the config and builds the logger.
func (a *app) setup() error {
	cfg, resolved, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.Debug || a.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg, a.resolved, a.logger = cfg, resolved, logger
	return nil
}

// loadConfig loads config from path. With the default path, a config.yaml in
// the current directory wins so a project checkout uses its own config.
// A missing file yields the defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == config.DefaultPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(local); statErr == nil {
				cfg, loadErr := config.Load(local)
				return cfg, local, loadErr
			}
		}
	}
	resolved := config.ExpandHome(path)
	cfg, err := config.LoadOrDefault(resolved)
	if err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func (a *app) components() (*Components, error) {
	return initializeComponents(a.cfg, a.logger)
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and watch configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.Info("config loaded",
				zap.String("config_path", a.resolved),
				zap.Bool("debug", a.cfg.Debug || a.debug))

			c, err := a.components()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(c.Engine, c.Indexer, c.Storage, a.cfg, a.logger)
			if len(a.cfg.Watch.Directories) > 0 {
				w := watcher.New(a.cfg.Watch, c.Indexer,
					watcher.WithLogger(a.logger),
					watcher.WithInitialSync(true))
				if err := w.Start(ctx); err != nil {
					return fmt.Errorf("failed to start watcher: %w", err)
				}
				defer w.Stop()
				srv.WithWatch(w)
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}

type searchOptions struct {
	limit     int
	output    string
	explain   bool
	serverURL string
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Rank indexed snippets for a query",
		Long: `Rank indexed snippets for a query.

The query is all remaining arguments joined by spaces, so quoting is optional.

Examples:
  baheth search ما هو الصبر
  baheth search --explain "كيف أتعلم الصبر"
  baheth search --output json --limit 5 أسباب الغضب`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(opts.output)
			if err != nil {
				return err
			}
			query := &models.SearchQuery{
				Query:   buildSearchQuery(args),
				Limit:   opts.limit,
				Explain: opts.explain,
			}

			var response *models.SearchResponse
			if opts.serverURL != "" {
				response, err = searchViaHTTP(cmd.Context(), opts.serverURL, query)
			} else {
				response, err = a.searchDirect(cmd.Context(), query)
			}
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), response, format)
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "number of results (0 uses the configured default)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "print the query analysis and expanded terms")
	cmd.Flags().StringVar(&opts.serverURL, "server", "", "search through a running server instead of opening the index")
	return cmd
}

func (a *app) searchDirect(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	c, err := a.components()
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Engine.Rank(ctx, query)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchViaHTTP posts the query to a running server, which holds the index lock.
func searchViaHTTP(ctx context.Context, serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(serverURL, "/")+"/api/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func newIndexCmd(a *app) *cobra.Command {
	var (
		recursive bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "index <file-or-directory>",
		Short: "Index a file or every supported file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("failed to stat path: %w", err)
			}

			c, err := a.components()
			if err != nil {
				return err
			}
			defer c.Close()

			if info.IsDir() {
				sum, err := c.Indexer.IndexDirectory(cmd.Context(), args[0], recursive)
				if sum != nil {
					if werr := cli.WriteIndexSummary(cmd.OutOrStdout(), sum, format); werr != nil {
						return werr
					}
				}
				return err
			}
			res, err := c.Indexer.IndexFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("indexing failed: %w", err)
			}
			return cli.WriteIndexResult(cmd.OutOrStdout(), res, format)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "descend into subdirectories")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Remove a file and its snippets from the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.components()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Indexer.DeleteFile(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deletion failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "File deleted: %s\n", args[0])
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Index and follow directories without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			wcfg := a.cfg.Watch
			if len(args) > 0 {
				wcfg.Directories = nil
				for _, dir := range args {
					abs, err := filepath.Abs(dir)
					if err != nil {
						return err
					}
					wcfg.Directories = append(wcfg.Directories, abs)
				}
			}
			if len(wcfg.Directories) == 0 {
				return errors.New("no directories to watch: pass them as arguments or set watch.directories")
			}

			c, err := a.components()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watcher.New(wcfg, c.Indexer,
				watcher.WithLogger(a.logger),
				watcher.WithInitialSync(true))
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			<-w.Done()
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show corpus and index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			c, err := a.components()
			if err != nil {
				return err
			}
			defer c.Close()

			status, err := c.Indexer.Status(cmd.Context(), statusPaths(a.cfg)...)
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ExpandHome(a.configPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
