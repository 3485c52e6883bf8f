package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/XWAP06yg/viscose-uploader/pkg/config"
	"github.com/XWAP06yg/viscose-uploader/pkg/sheets"
	"github.com/XWAP06yg/viscose-uploader/pkg/uploader"
)

// One-shot entry point: run a single synchronization pass and exit. With
// -full every stats file is re-ingested, re-resolving and re-syncing all
// personal bests.
func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	dataDir := flag.String("data-dir", "", "Override the default data directory (defaults to ~/.viscose-uploader)")
	full := flag.Bool("full", false, "Rescan all stats files and resync every personal best")

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
	updated, err := u.ProcessOnce(!*full)
	if err != nil {
		log.Fatalf("Synchronization pass failed: %v", err)
	}
	if updated {
		log.Info("Personal bests updated.")
	} else {
		log.Info("Sheet already up to date.")
	}
}

func resolvePaths(dataDir string) (config.Paths, error) {
	if dataDir != "" {
		return config.Paths{BaseDir: dataDir}, nil
	}
	return config.DefaultPaths()
}
