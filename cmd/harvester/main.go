package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsharvest/internal/fetch"
	"newsharvest/internal/pipeline"
	"newsharvest/internal/server"
	"newsharvest/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger       *zap.Logger
	redisAddr    string
	badgerPath   string
	websitesPath string
	settle       time.Duration
	port         string
)

var rootCmd = &cobra.Command{
	Use:           "harvester",
	Short:         "newsharvest - scrape article pages into a local archive",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Errors propagate instead of calling logger.Fatal so the deferred store and
// renderer teardown below runs on every exit path.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape every URL from the websites file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		st, err := store.NewHybridStore(redisAddr, badgerPath)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer st.Close()

		// The browser session is the only resource worth failing the whole
		// run for; nothing can be scraped without it.
		logger.Info("Starting headless browser...")
		renderer, err := fetch.NewChromeRenderer(settle)
		if err != nil {
			return fmt.Errorf("start rendering session: %w", err)
		}
		defer renderer.Close()

		fetcher := fetch.NewFetcher(st, renderer, logger)
		p := pipeline.New(st, fetcher, logger)

		summary, err := p.Run(ctx, websitesPath)
		if err != nil {
			return err
		}

		fmt.Printf("Done. saved=%d updated=%d skipped=%d\n",
			summary.Saved, summary.Updated, summary.Skipped)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only article API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		st, err := store.NewHybridStore(redisAddr, badgerPath)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer st.Close()

		srv := server.NewServer(st, logger)
		go func() {
			if err := srv.Start(port); err != nil {
				logger.Error("Server stopped", zap.Error(err))
				cancel()
			}
		}()

		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown error", zap.Error(err))
		}
		return nil
	},
}

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "Address of Redis server")
	rootCmd.PersistentFlags().StringVar(&badgerPath, "badger", "./badger-data", "Path to BadgerDB data directory")
	runCmd.Flags().StringVar(&websitesPath, "websites", "websites.json", "Path to the JSON array of URLs to scrape")
	runCmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "Delay after navigation before capturing page source")
	serveCmd.Flags().StringVar(&port, "port", "8000", "HTTP port for the article API")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
