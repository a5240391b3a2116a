package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Watcher ingests raw event CSV batches dropped into the configured data
// directory. Processed files are renamed with a .done suffix so a restart
// does not re-ingest them.
type Watcher struct {
	log      *zap.Logger
	dir      string
	svc      ingestdomain.Service
	notifier *fsnotify.Watcher
	done     chan struct{}
}

type WatcherParam struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Svc    ingestdomain.Service
}

func NewWatcher(p WatcherParam) *Watcher {
	return &Watcher{
		log:  p.Log.Named("ingest.watcher"),
		dir:  p.Config.Ingest.WatchDir,
		svc:  p.Svc,
		done: make(chan struct{}),
	}
}

func (w *Watcher) Start(ctx context.Context) error {
	if w.dir == "" {
		w.log.Info("no watch directory configured; file ingestion disabled")
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := notifier.Add(w.dir); err != nil {
		_ = notifier.Close()
		return err
	}
	w.notifier = notifier

	go w.run()
	w.log.Info("watching for raw event batches", zap.String("dir", w.dir))
	return nil
}

func (w *Watcher) Stop(context.Context) error {
	if w.notifier == nil {
		return nil
	}
	err := w.notifier.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.notifier.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			// Give the producer a moment to finish writing.
			time.Sleep(200 * time.Millisecond)
			w.ingestFile(event.Name)
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) ingestFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		w.log.Error("open batch file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := w.svc.IngestCSV(ctx, f)
	if err != nil {
		w.log.Error("ingest batch file", zap.String("path", path), zap.Error(err))
		return
	}
	if err := os.Rename(path, path+".done"); err != nil {
		w.log.Warn("mark batch file done", zap.String("path", path), zap.Error(err))
	}
	w.log.Info("ingested batch file", zap.String("path", path), zap.Int("events", count))
}
