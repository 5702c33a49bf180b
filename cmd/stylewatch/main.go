// CLAUDE:SUMMARY CLI entry point for stylewatch — HTTP service, optional MCP stdio, one-shot capture mode.
// Command stylewatch captures how UI element styles change across
// interaction states.
//
// Usage:
//
//	stylewatch -config stylewatch.yaml               # HTTP service
//	stylewatch -mcp                                  # MCP over stdio
//	stylewatch -url https://x.test -selector "#btn"  # one-shot, matrix JSON on stdout
//	stylewatch -html page.html -selector ".save"     # one-shot against a saved page
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/stylewatch"
	"github.com/hazyhaar/stylewatch/connectivity"
	"github.com/hazyhaar/stylewatch/internal/dbopen"
	"github.com/hazyhaar/stylewatch/internal/journal"
)

func main() {
	configPath := flag.String("config", "", "path to stylewatch.yaml config file")
	pageURL := flag.String("url", "", "one-shot: page URL to open")
	htmlPath := flag.String("html", "", "one-shot: saved HTML file instead of a live page")
	selector := flag.String("selector", "", "one-shot: element selector to capture (enables one-shot mode)")
	mcpStdio := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *htmlPath, *selector, *mcpStdio); err != nil {
		logger.Error("stylewatch: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, htmlPath, selector string, mcpStdio bool) error {
	cfg := stylewatch.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = stylewatch.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	router := connectivity.New(connectivity.WithLogger(logger))
	defer router.Close()

	var jour *journal.Journal
	if cfg.Journal.Enabled {
		db, err := dbopen.Open(cfg.Journal.Path,
			dbopen.WithMkdirAll(), dbopen.WithSchema(journal.Schema))
		if err != nil {
			return fmt.Errorf("journal db: %w", err)
		}
		defer db.Close()
		jour = journal.New(db, journal.WithLogger(logger))
		go func() {
			if err := journal.Cleanup(ctx, db, cfg.Journal.RetentionDays, false); err != nil {
				logger.Warn("stylewatch: journal cleanup", "error", err)
			}
		}()
	}

	// Optional routing table: lets an operator point styledriver or any
	// other service at a remote endpoint without restarting the process.
	if routesPath := os.Getenv("ROUTES_DB"); routesPath != "" {
		routesDB, err := connectivity.OpenDB(routesPath)
		if err != nil {
			return fmt.Errorf("routes db: %w", err)
		}
		defer routesDB.Close()
		if err := connectivity.Init(routesDB); err != nil {
			return fmt.Errorf("routes init: %w", err)
		}
		go router.Watch(ctx, routesDB, 2*time.Second)
	}

	opts := []stylewatch.Option{stylewatch.WithRouter(router)}
	if jour != nil {
		opts = append(opts, stylewatch.WithJournal(jour))
	}
	engine := stylewatch.New(cfg, logger, opts...)
	defer engine.Close()
	engine.RegisterConnectivity(router)

	if selector != "" {
		return runOnce(ctx, engine, pageURL, htmlPath, selector)
	}

	if err := engine.Start(ctx); err != nil {
		// Static sessions and fallback inference work without a browser;
		// live session opens will report the condition to the caller.
		logger.Warn("stylewatch: browser unavailable, live sessions disabled", "error", err)
	}

	if mcpStdio {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "stylewatch",
			Version: "1.0.0",
		}, nil)
		engine.RegisterMCP(srv)
		logger.Info("stylewatch: MCP stdio starting")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return fmt.Errorf("mcp stdio: %w", err)
		}
		return nil
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newHTTPHandler(engine, jour),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("stylewatch: http starting", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("stylewatch: http", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("stylewatch: shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shCtx)
}

// runOnce captures one element and prints the assembled matrix. Live
// capture of the default state plus stylesheet inference for the rest,
// the same path an agent would walk tool by tool.
func runOnce(ctx context.Context, engine *stylewatch.Engine, pageURL, htmlPath, selector string) error {
	var info stylewatch.SessionInfo
	var err error
	switch {
	case htmlPath != "":
		raw, rerr := os.ReadFile(htmlPath)
		if rerr != nil {
			return rerr
		}
		info, err = engine.OpenStaticSession(ctx, string(raw), pageURL)
	case pageURL != "":
		if err := engine.Start(ctx); err != nil {
			return err
		}
		info, err = engine.OpenSession(ctx, pageURL)
	default:
		return errors.New("one-shot mode needs -url or -html")
	}
	if err != nil {
		return err
	}
	defer engine.CloseSession(ctx, info.ID)

	res, err := engine.Capture(ctx, info.ID, selector, stylewatch.CaptureOptions{})
	if err != nil {
		return err
	}
	if res.NotFound {
		return fmt.Errorf("element %q not found", selector)
	}
	if _, err := engine.Fallback(ctx, info.ID, selector); err != nil {
		slog.Warn("stylewatch: fallback", "error", err)
	}

	recs, err := engine.Matrix(info.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
