// Package main is the vectorpipe CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/vectorpipe/internal/config"
	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/indexer"
	"github.com/hyperjump/vectorpipe/internal/protocol"
	"github.com/hyperjump/vectorpipe/internal/search"
	"github.com/hyperjump/vectorpipe/internal/server"
	"github.com/hyperjump/vectorpipe/internal/vector"
	"github.com/hyperjump/vectorpipe/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/vectorpipe/config.yaml"

// Global flags
var (
	configPath string
	socketPath string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "vectorpipe [similarityThreshold [resultLimit [embeddingSource]]]",
	Short: "Local in-memory vector database served over a unix socket",
	Long: `vectorpipe keeps sentences and their embeddings in memory and answers
similarity queries over a line protocol on a unix socket.

Positional arguments (all optional):
  similarityThreshold  drop results scoring below this value (default 0 = keep all)
  resultLimit          maximum results per query (default 5)
  embeddingSource      blank for the built-in local embedder, an http(s) URL for a
                       self-hosted OpenAI-compatible endpoint, or an API key for the
                       hosted embedding API

Protocol (one line per request):
  first non-blank line   initialization text, split into sentences on "."
  Update                 the next line is appended to the database
  any other line         similarity query; reply is the matching sentences`,
	Args:          cobra.MaximumNArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vectorpipe version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file path (default: ./config.yaml, then %s)", defaultConfigPath))
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "unix socket path (default: $TMPDIR/VectorPipe)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads config from path when given explicitly. Otherwise it looks for
// config.yaml in the current directory (for development), then the default path,
// and falls back to built-in defaults when neither exists.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	if cwd, cwdErr := os.Getwd(); cwdErr == nil {
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			cfg, loadErr := config.Load(fallback)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, fallback, nil
		}
	}
	if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
		cfg, err := config.Load(defaultConfigPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, defaultConfigPath, nil
	}
	cfg, err := config.LoadOrDefault("")
	return cfg, "", err
}

// loadRuntime resolves the config, applies flag overrides and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if socketPath != "" {
		cfg.Socket.Path = socketPath
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Info("Config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("socket", cfg.Socket.Path),
		zap.Bool("debug", debugMode),
	)
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionCfg, sourceArg, _ := config.ParseArgs(args, cfg.Session(), cfg.Embedding.Source)
	src, err := embedding.ParseSource(sourceArg)
	if err != nil {
		return serveConfigError(ctx, cfg, logger, err)
	}
	logger.Info("Session configured",
		zap.Int("result_limit", sessionCfg.ResultLimit),
		zap.Float64("similarity_threshold", sessionCfg.SimilarityThreshold),
		zap.Bool("threshold_active", sessionCfg.ThresholdActive()),
		zap.Stringer("embedding_source", src),
	)

	components, err := initializeComponents(cfg, src, sessionCfg, logger)
	if err != nil {
		return serveConfigError(ctx, cfg, logger, err)
	}
	defer components.Close()

	return serve(ctx, cfg, components, logger)
}

// serve runs the socket session and, when enabled, the status server until the
// client disconnects or ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, components *Components, logger *zap.Logger) error {
	srv := server.NewServer(cfg.Socket.Path, components.Session, server.WithLogger(logger))
	if err := srv.Listen(); err != nil {
		return err
	}
	defer srv.Close()

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, endSession := context.WithCancel(gctx)
	defer endSession()

	g.Go(func() error {
		defer endSession()
		return srv.Serve(sessionCtx)
	})

	if cfg.Status.Enabled() {
		status := server.NewStatusServer(
			cfg.Status.Addr(),
			components.Session,
			components.Store,
			components.Embedder,
			cfg.Socket.Path,
			logger,
		)
		g.Go(status.Start)
		g.Go(func() error {
			<-sessionCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return status.Stop(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return err
	}
	logger.Info("Shutting down...", zap.Int("entries", components.Store.Size()))
	return nil
}

// serveConfigError reports reason to the first client and returns it so the
// process exits non-zero.
func serveConfigError(ctx context.Context, cfg *config.Config, logger *zap.Logger, reason error) error {
	logger.Error("Configuration error", zap.Error(reason))
	srv := server.NewServer(cfg.Socket.Path, nil, server.WithLogger(logger))
	defer srv.Close()
	if err := srv.ServeConfigError(ctx, reason); err != nil {
		return errors.Join(reason, err)
	}
	return fmt.Errorf("configuration error: %w", reason)
}

// Components holds the initialized services.
type Components struct {
	Embedder embedding.Embedder
	Store    *vector.Store
	Indexer  *indexer.Indexer
	Engine   *search.Engine
	Session  *protocol.Session
}

// Close releases resources held by the components.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, src embedding.Source, sessionCfg config.SessionConfig, logger *zap.Logger) (*Components, error) {
	cacheSize := cfg.Embedding.CacheSize
	if cacheSize < 0 {
		cacheSize = 0
	}
	embedder, err := embedding.New(src, embedding.Options{
		Dimensions:        cfg.Embedding.Dimensions,
		RemoteModel:       cfg.Embedding.RemoteModel,
		RemoteBaseURL:     cfg.Embedding.RemoteBaseURL,
		LocalHTTPModel:    cfg.Embedding.LocalHTTPModel,
		Timeout:           cfg.Embedding.Timeout(),
		CacheSize:         cacheSize,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	store := vector.NewStore()
	idx := indexer.NewIndexer(store, embedder, indexer.WithLogger(logger))
	engine := search.NewEngine(store, embedder, search.WithLogger(logger))
	session := protocol.NewSession(idx, engine, store, sessionCfg, protocol.WithLogger(logger))

	logger.Info("Components initialized",
		zap.Stringer("embedder", embedder.Kind()),
		zap.Int("dimensions", embedder.Dimensions()),
		zap.Int("cache_size", cacheSize),
	)
	return &Components{
		Embedder: embedder,
		Store:    store,
		Indexer:  idx,
		Engine:   engine,
		Session:  session,
	}, nil
}
