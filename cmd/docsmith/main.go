// Package main implements the docsmith CLI: one-shot documentation tasks and
// the long-running webhook server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/config"
	"github.com/fyrsmithlabs/docsmith/internal/confluence"
	"github.com/fyrsmithlabs/docsmith/internal/engine"
	"github.com/fyrsmithlabs/docsmith/internal/gitsource"
	"github.com/fyrsmithlabs/docsmith/internal/logging"
	"github.com/fyrsmithlabs/docsmith/internal/markup"
	"github.com/fyrsmithlabs/docsmith/internal/metrics"
	"github.com/fyrsmithlabs/docsmith/internal/orchestrator"
	"github.com/fyrsmithlabs/docsmith/internal/server"
	"github.com/fyrsmithlabs/docsmith/internal/task"
	"github.com/fyrsmithlabs/docsmith/internal/webhook"
)

// Version information, set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

// Flags for the generate command.
var (
	generateFile   string
	generateSpace  string
	generateParent string
)

// Flags for the update command.
var (
	updateCommit string
	updatePage   string
	updateSpace  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Automated Confluence documentation for source repositories",
	Long: `docsmith documents source files on Confluence and keeps the pages
current as the code changes, driving a tool-calling reasoning engine through
a budgeted retrieval, analysis, and publish pipeline.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	generateCmd.Flags().StringVar(&generateFile, "file", "", "source file to document (required)")
	generateCmd.Flags().StringVar(&generateSpace, "space", "", "Confluence space (defaults to configured space)")
	generateCmd.Flags().StringVar(&generateParent, "parent", "", "parent page id for the new page")
	_ = generateCmd.MarkFlagRequired("file")

	updateCmd.Flags().StringVar(&updateCommit, "commit", "", "commit whose change drives the update (required)")
	updateCmd.Flags().StringVar(&updatePage, "page", "", "page id to update, if known")
	updateCmd.Flags().StringVar(&updateSpace, "space", "", "Confluence space (defaults to configured space)")
	_ = updateCmd.MarkFlagRequired("commit")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documentation for a source file",
	Long: `Generate a new Confluence page documenting a source file.

Examples:
  docsmith generate --file src/services/billing.ts
  docsmith generate --file src/api/routes.ts --space ENG --parent 98765`,
	RunE: runGenerate,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update documentation after a code change",
	Long: `Revise an existing Confluence page after a commit.

Examples:
  docsmith update --commit 4f2a91c --page 12345
  docsmith update --commit 4f2a91cde88f01b3a7c55f6f0f6f3b19a0be77aa`,
	RunE: runUpdate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the docsmith HTTP server: the GitHub webhook receiver, the task
API, and Prometheus metrics.`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docsmith %s (commit %s, built %s)\n", version, commit, date)
	},
}

// app holds the wired collaborators behind one configuration.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *prometheus.Registry
	orch     *orchestrator.Orchestrator
}

// wire builds the full collaborator graph from configuration.
func wire() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	eng, err := engine.NewLangchainEngine(engine.Options{
		BaseURL: cfg.Engine.BaseURL,
		APIKey:  cfg.Engine.APIKey.Value(),
		Model:   cfg.Engine.Model,
	})
	if err != nil {
		return nil, err
	}

	reader, err := gitsource.NewReader(cfg.Source.RepoPath)
	if err != nil {
		return nil, err
	}

	executor := actions.NewExecutor(
		confluence.NewClient(cfg.Confluence),
		reader,
		markup.NewConverter(),
		actions.Defaults{
			SpaceID:      cfg.Confluence.SpaceID,
			ParentPageID: cfg.Confluence.ParentPageID,
			HistoryLimit: cfg.Source.HistoryLimit,
		},
	)

	orch := orchestrator.New(eng, executor, orchestrator.Config{
		TotalStepBudget:      cfg.Pipeline.TotalStepBudget,
		PlaceholderSentinels: cfg.Pipeline.PlaceholderSentinels,
	}, logger, m)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		orch:     orch,
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := wire()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	space := generateSpace
	if space == "" {
		space = a.cfg.Confluence.SpaceID
	}

	t := task.NewGenerate(space, generateFile, generateParent)
	return runTask(cmd.Context(), a, t)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := wire()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	space := updateSpace
	if space == "" {
		space = a.cfg.Confluence.SpaceID
	}

	t := task.NewUpdate(space, updateCommit, updatePage)
	return runTask(cmd.Context(), a, t)
}

// runTask executes one task and prints its outcome as JSON on stdout.
func runTask(ctx context.Context, a *app, t task.DocumentationTask) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	outcome, err := a.orch.Run(ctx, t)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	fmt.Println(string(out))

	if !outcome.Success {
		os.Exit(2)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := wire()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	a.logger.Info(ctx, "docsmith starting",
		zap.String("version", version),
		zap.String("host", a.cfg.Server.Host),
		zap.Int("port", a.cfg.Server.Port),
	)

	var hook *webhook.Handler
	if a.cfg.Webhook.Secret.IsSet() {
		hook = webhook.NewHandler(a.orch, a.cfg.Webhook.Secret, a.cfg.Confluence.SpaceID, a.logger)
	} else {
		a.logger.Warn(ctx, "webhook secret not set, webhook endpoint disabled")
	}

	srv, err := server.NewServer(a.orch, hook, a.registry, a.cfg.Confluence.SpaceID, a.logger, &server.Config{
		Host: a.cfg.Server.Host,
		Port: a.cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start(ctx)
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(ctx, "server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info(ctx, "server stopped gracefully")
	return nil
}
