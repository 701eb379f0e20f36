// Package ingest importa fichas desde la fuente configurada hacia el store de
// registros, en lote o siguiendo un directorio.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
)

// Parser lo cumple *documents.Service.
type Parser interface {
	List(ctx context.Context) ([]documents.DocumentInfo, error)
	Parse(ctx context.Context, name string, keepRaw bool) (documents.Result, error)
}

// Saver lo cumple *records.Service.
type Saver interface {
	Save(ctx context.Context, doc parser.ParsedDocument) (records.SaveResult, error)
}

type FileResult struct {
	Name     string   `json:"name"`
	Encoding string   `json:"encoding,omitempty"`
	OwnerIDs []string `json:"ownerIds,omitempty"`
	PetIDs   []string `json:"petIds,omitempty"`
	Visits   int      `json:"visitsCreated"`
	Err      string   `json:"error,omitempty"`
}

type Stats struct {
	Matched   int `json:"matched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type Report struct {
	Files []FileResult `json:"files"`
	Stats Stats        `json:"stats"`
}

type Importer struct {
	docs    Parser
	saver   Saver
	log     logger.Logger
	keepRaw bool
}

func NewImporter(docs Parser, saver Saver, log logger.Logger, keepRaw bool) *Importer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Importer{docs: docs, saver: saver, log: log, keepRaw: keepRaw}
}

// ImportAll importa cada ficha listada. Un fallo por archivo queda en el
// reporte y no corta el lote; sólo fallar el List es error.
func (im *Importer) ImportAll(ctx context.Context) (Report, error) {
	start := time.Now()

	list, err := im.docs.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list documents: %w", err)
	}

	rep := Report{Files: make([]FileResult, 0, len(list))}
	for _, info := range list {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res := im.ImportOne(ctx, info.Name)
		rep.Files = append(rep.Files, res)
		rep.Stats.Matched++
		if res.Err != "" {
			rep.Stats.Failed++
		} else {
			rep.Stats.Succeeded++
		}
	}

	im.log.Info("ingest.batch.done", map[string]any{
		"matched":     rep.Stats.Matched,
		"succeeded":   rep.Stats.Succeeded,
		"failed":      rep.Stats.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return rep, nil
}

// ImportOne parsea y guarda una ficha.
func (im *Importer) ImportOne(ctx context.Context, name string) FileResult {
	out := FileResult{Name: name}

	res, err := im.docs.Parse(ctx, name, im.keepRaw)
	if err != nil {
		out.Err = err.Error()
		im.logFailure(name, "parse", err)
		return out
	}
	out.Encoding = res.Encoding

	saved, err := im.saver.Save(ctx, res.Document)
	if err != nil {
		out.Err = err.Error()
		im.logFailure(name, "save", err)
		return out
	}
	out.OwnerIDs = saved.OwnerIDs
	out.PetIDs = saved.PetIDs
	out.Visits = saved.VisitsCreated

	im.log.Debug("ingest.file.ok", map[string]any{
		"document": name,
		"owners":   len(saved.OwnerIDs),
		"pets":     len(saved.PetIDs),
		"visits":   saved.VisitsCreated,
	})
	return out
}

func (im *Importer) logFailure(name, stage string, err error) {
	fields := map[string]any{"document": name, "stage": stage, "error": err}
	if errors.Is(err, documents.ErrNotFound) || errors.Is(err, documents.ErrInvalidName) {
		im.log.Warn("ingest.file.skipped", fields)
		return
	}
	im.log.Error("ingest.file.failed", fields)
}
