package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
)

const DefaultDebounce = 500 * time.Millisecond

type WatchConfig struct {
	Dir string
	// InitialScan importa lo que ya hay en Dir antes de escuchar eventos.
	InitialScan bool
	// Debounce agrupa ráfagas de escrituras sobre el mismo archivo.
	Debounce time.Duration
	// OnResult recibe cada importación (opcional).
	OnResult func(FileResult)
}

// Watch importa las fichas .txt que se crean o modifican en Dir hasta que ctx
// se cancela. Devuelve nil al cancelar.
func (im *Importer) Watch(ctx context.Context, cfg WatchConfig) error {
	if strings.TrimSpace(cfg.Dir) == "" {
		return errors.New("watch: dir required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(cfg.Dir); err != nil {
		return err
	}

	emit := func(res FileResult) {
		if cfg.OnResult != nil {
			cfg.OnResult(res)
		}
	}

	if cfg.InitialScan {
		rep, err := im.ImportAll(ctx)
		if err != nil {
			return err
		}
		for _, f := range rep.Files {
			emit(f)
		}
	}

	im.log.Info("ingest.watch.started", map[string]any{"dir": cfg.Dir, "debounce_ms": cfg.Debounce.Milliseconds()})

	pending := map[string]struct{}{}
	timer := time.NewTimer(cfg.Debounce)
	timer.Stop()

	flush := func() {
		names := make([]string, 0, len(pending))
		for n := range pending {
			names = append(names, n)
		}
		clear(pending)
		sort.Strings(names)
		for _, n := range names {
			emit(im.ImportOne(ctx, n))
		}
	}

	for {
		select {
		case <-ctx.Done():
			im.log.Info("ingest.watch.stopped", map[string]any{"dir": cfg.Dir})
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(e.Name)
			if documents.ValidateName(name) != nil {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(cfg.Debounce)

		case <-timer.C:
			flush()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.log.Warn("ingest.watch.error", map[string]any{"error": err})
		}
	}
}
