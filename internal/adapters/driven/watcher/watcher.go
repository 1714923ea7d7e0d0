// Package watcher watches a drop folder and ingests files as they appear.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kbridge/kbridge/internal/core/ports/driving"
	"github.com/kbridge/kbridge/internal/logger"
)

// Default configuration values.
const (
	// DefaultSettleDelay is how long a file must be quiet before ingest.
	// Editors and downloads write in bursts; ingesting mid-write produces
	// truncated documents.
	DefaultSettleDelay = 2 * time.Second
)

// Config holds configuration for the drop-folder watcher.
type Config struct {
	// Dir is the folder to watch (required).
	Dir string

	// SettleDelay overrides the write-settle delay.
	SettleDelay time.Duration

	// DeleteAfterIngest removes files from the folder after a successful
	// upload.
	DeleteAfterIngest bool
}

// Watcher ingests files dropped into a folder.
type Watcher struct {
	documents driving.DocumentService
	cfg       Config
	watcher   *fsnotify.Watcher
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// New creates a watcher over cfg.Dir. The directory must exist.
func New(documents driving.DocumentService, cfg Config) (*Watcher, error) {
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		documents: documents,
		cfg:       cfg,
		watcher:   fsw,
	}, nil
}

// Run processes events until the context is cancelled. Files already in
// the folder at startup are ingested first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.ingestExisting(ctx)

	// Pending files and their settle timers.
	pending := make(map[string]*time.Timer)
	settled := make(chan string, 16)

	for {
		select {
		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			path := event.Name
			if timer, exists := pending[path]; exists {
				timer.Reset(w.cfg.SettleDelay)
				continue
			}
			pending[path] = time.AfterFunc(w.cfg.SettleDelay, func() {
				select {
				case settled <- path:
				case <-ctx.Done():
				}
			})

		case path := <-settled:
			delete(pending, path)
			w.ingest(ctx, path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: %v", err)
		}
	}
}

func (w *Watcher) ingestExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		logger.Error("watcher: reading %s: %v", w.cfg.Dir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.ingest(ctx, filepath.Join(w.cfg.Dir, entry.Name()))
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	src := driving.UploadSource{Path: path}

	var result *driving.UploadResult
	if imageExts[strings.ToLower(filepath.Ext(name))] {
		result, err = w.documents.UploadImage(ctx, src)
	} else {
		result, err = w.documents.UploadDocument(ctx, src)
	}
	if err != nil {
		logger.Error("watcher: ingesting %s: %v", name, err)
		return
	}

	logger.Info("watcher: ingested %s (%d/%d chunks)", name, result.ChunksCreated, result.TotalChunks)

	if w.cfg.DeleteAfterIngest {
		if err := os.Remove(path); err != nil {
			logger.Warn("watcher: removing %s: %v", name, err)
		}
	}
}
