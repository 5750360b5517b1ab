package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/danielledeleo/wikilite/internal/config"
	"github.com/danielledeleo/wikilite/internal/embedded"
	"github.com/danielledeleo/wikilite/internal/logger"
	"github.com/danielledeleo/wikilite/internal/server"
	"github.com/danielledeleo/wikilite/internal/storage"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		cfgFile     string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:           "wikilite",
		Short:         "A small wiki with linked pages, attachments and full-text search",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfgFile, openBrowser)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", config.DefaultFilename, "configuration file")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "open the wiki in a browser once the server is up")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(cmd *cobra.Command, cfgFile string, openBrowser bool) error {
	conf, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		slog.Error("failed to read config", "category", "config", "file", cfgFile, "error", err)
		return err
	}

	var logWriter io.Writer
	if conf.LogsDir != "" {
		f, err := logger.OpenLogFile(conf.LogsDir, conf.LogFileName)
		if err != nil {
			slog.Error("failed to open log file", "category", "config", "dir", conf.LogsDir, "error", err)
			return err
		}
		defer f.Close()
		logWriter = f
	}
	logger.InitLogger(
		logger.ParseLogFormat(conf.LogFormat),
		logger.ParseLogLevel(conf.LogLevel),
		logWriter,
	)

	db, err := storage.Open(conf.DatabaseFile)
	if err != nil {
		slog.Error("failed to open database", "category", "storage", "file", conf.DatabaseFile, "error", err)
		return err
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "category", "storage", "error", err)
		return err
	}

	app, renderQueue, err := server.Setup(conf, db)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		return err
	}

	if conf.SeedHelp {
		if err := seedHelp(app); err != nil {
			slog.Warn("failed to create help pages", "category", "page", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              conf.Host,
		Handler:           server.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	slog.Info("server starting", "url", "http://"+conf.Host)

	if openBrowser {
		go func() {
			time.Sleep(250 * time.Millisecond)
			if err := browse(localURL(conf.Host)); err != nil {
				slog.Warn("failed to open browser", "error", err)
			}
		}()
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			slog.Error("server error", "error", err)
			renderQueue.Shutdown(context.Background())
			return err
		}
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server first (stop accepting new requests)
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Shutdown render queue (wait for in-flight jobs)
	slog.Info("shutting down render queue...")
	if err := renderQueue.Shutdown(ctx); err != nil {
		slog.Error("render queue shutdown error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// localURL is the address a browser on this machine uses to reach host.
func localURL(host string) string {
	_, port, err := net.SplitHostPort(host)
	if err != nil {
		return "http://localhost"
	}
	return "http://localhost:" + port
}

func browse(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func seedHelp(app *server.App) error {
	pages, err := embedded.Help()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err = embedded.Seed(ctx, app.Pages, pages)
	return err
}
