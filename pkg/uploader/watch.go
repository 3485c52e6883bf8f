package uploader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// debounceDelay gives KovaaK's time to finish writing a stats file before
// an event-triggered pass reads it.
const debounceDelay = 500 * time.Millisecond

// Watch runs synchronization passes until ctx is cancelled: once
// immediately, then on a fixed poll interval, and additionally shortly
// after a new stats file lands. Polling is the correctness mechanism; the
// filesystem watcher only shortens the latency and is best-effort.
func (u *Uploader) Watch(ctx context.Context) {
	interval := u.cfg.PollInterval
	if interval < 1 {
		interval = 1
	}
	pollEvery := time.Duration(interval * float64(time.Second))

	log.Info("Starting watch loop. Press Ctrl+C to stop.")

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("File watching unavailable, relying on polling: %v", err)
	} else {
		defer watcher.Close()
		if err := u.watchStatsDirs(watcher); err != nil {
			log.Warnf("File watching unavailable, relying on polling: %v", err)
		} else {
			events = watcher.Events
			errs = watcher.Errors
		}
	}

	runPass := func() {
		updated, err := u.ProcessOnce(true)
		if err != nil {
			log.Errorf("Synchronization pass failed: %v", err)
			return
		}
		if updated {
			log.Info("Personal bests updated.")
		}
	}

	runPass()

	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopped watch loop.")
			return
		case <-ticker.C:
			runPass()
		case <-debounce.C:
			runPass()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if strings.EqualFold(filepath.Ext(ev.Name), ".csv") {
				debounce.Reset(debounceDelay)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warnf("Stats watcher error: %v", err)
		}
	}
}

// watchStatsDirs registers the stats root and its existing subdirectories.
// fsnotify does not recurse; directories created later are only covered by
// the poll ticker.
func (u *Uploader) watchStatsDirs(watcher *fsnotify.Watcher) error {
	if err := watcher.Add(u.cfg.StatsRoot); err != nil {
		return err
	}
	entries, err := os.ReadDir(u.cfg.StatsRoot)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := watcher.Add(filepath.Join(u.cfg.StatsRoot, entry.Name())); err != nil {
				log.Debugf("Could not watch %s: %v", entry.Name(), err)
			}
		}
	}
	return nil
}
