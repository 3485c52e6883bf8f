package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/XWAP06yg/viscose-uploader/pkg/api"
	"github.com/XWAP06yg/viscose-uploader/pkg/config"
	"github.com/XWAP06yg/viscose-uploader/pkg/sheets"
	"github.com/XWAP06yg/viscose-uploader/pkg/uploader"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	dataDir := flag.String("data-dir", "", "Override the default data directory (defaults to ~/.viscose-uploader)")

	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	paths, err := resolvePaths(*dataDir)
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := paths.Ensure(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg, err := config.Load(paths.ConfigFile())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	values, err := sheets.NewGoogleValues(context.Background(), cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("Unable to create Sheets client: %v", err)
	}

	u := uploader.New(paths, cfg, sheets.NewClient(values))

	if cfg.ListenAddress != "" {
		router := api.GetRouter(u.Status)
		go startServer(cfg.ListenAddress, router)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u.Watch(ctx)
}

func resolvePaths(dataDir string) (config.Paths, error) {
	if dataDir != "" {
		return config.Paths{BaseDir: dataDir}, nil
	}
	return config.DefaultPaths()
}

func startServer(addr string, router http.Handler) {
	server := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	log.Infof("listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("ListenAndServeError", err)
		os.Exit(1)
	}
}
