package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/rubysgifts/giftd/internal/advisor"
	"github.com/rubysgifts/giftd/internal/api"
	"github.com/rubysgifts/giftd/internal/config"
	"github.com/rubysgifts/giftd/internal/enrichment"
	"github.com/rubysgifts/giftd/internal/images"
	"github.com/rubysgifts/giftd/internal/shopping"
	"github.com/rubysgifts/giftd/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the giftd server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running giftd server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show giftd system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "giftd.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "giftd version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	logger := slog.Default()

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("giftd is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("giftd is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the generation pipeline.
	client := advisor.NewClient(cfg.OpenAI.APIKey,
		advisor.WithBaseURL(cfg.OpenAI.BaseURL),
		advisor.WithModel(cfg.OpenAI.Model),
		advisor.WithMaxTokens(cfg.OpenAI.MaxTokens),
		advisor.WithTemperature(cfg.OpenAI.Temperature),
	)
	adv := advisor.New(client, logger)

	chain := images.DefaultChain(cfg.Images.PexelsAPIKey, cfg.Images.UnsplashAccessKey)
	resolver := images.NewCachedResolver(images.NewResolver(chain, logger), cfg.ImageCacheTTL())
	links := shopping.NewBuilder(cfg.Shopping.AffiliateTag)
	enricher := enrichment.New(resolver, links, cfg.Images.PerIdea, logger)

	handler := api.NewRouter(api.Deps{
		Advisor:          adv,
		Enricher:         enricher,
		Store:            store,
		BaseURL:          cfg.BaseURL(),
		ResultTTL:        cfg.ResultTTL(),
		Version:          version,
		CORSOrigins:      cfg.CORSOrigins(),
		OpenAIConfigured: client.Configured(),
		Probe:            client.Probe,
		Logger:           logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start result sweeper.
	sweeper := storage.NewSweeper(store, time.Hour, logger)
	go sweeper.Run(ctx)

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Advisor:  adv,
		Enricher: enricher,
		Resolver: resolver,
		Links:    links,
		Store:    store,
		Version:  version,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "giftd listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("giftd is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop giftd (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to giftd (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.OpenAI.APIKey != "" {
		printStatus("OpenAI", "configured (model %s)", cfg.OpenAI.Model)
	} else {
		printStatus("OpenAI", "not configured")
	}
	if cfg.Images.PexelsAPIKey != "" {
		printStatus("Pexels", "configured")
	} else {
		printStatus("Pexels", "keyless mode")
	}
	if cfg.Images.UnsplashAccessKey != "" {
		printStatus("Unsplash", "configured")
	} else {
		printStatus("Unsplash", "keyless mode")
	}

	printStatus("Affiliate tag", "%s", cfg.Shopping.AffiliateTag)
	printStatus("Result TTL", "%s", cfg.Storage.ResultTTL)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
