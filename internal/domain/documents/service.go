package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/metrics"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/textdecode"
)

// Orígenes para métricas.
const (
	OriginSource = "source"
	OriginUpload = "upload"
)

type Service struct {
	src     Source
	cache   ParseCache
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithCache(c ParseCache) Option         { return func(s *Service) { s.cache = c } }
func WithLogger(l logger.Logger) Option     { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// NewService: src puede ser nil si sólo se usa ParseBytes (CLI).
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src: src,
		log: logger.NewNop(),
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]DocumentInfo, error) {
	if s.src == nil {
		return nil, ErrNoSource
	}
	items, err := s.src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return items, nil
}

// Parse lee la ficha name de la fuente, la decodifica y la parsea.
func (s *Service) Parse(ctx context.Context, name string, keepRaw bool) (Result, error) {
	if s.src == nil {
		return Result{}, ErrNoSource
	}
	if err := ValidateName(name); err != nil {
		return Result{}, err
	}
	b, err := s.src.Read(ctx, name)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", name, err)
	}
	return s.parse(ctx, name, OriginSource, b, keepRaw), nil
}

// ParseBytes parsea contenido recibido directamente (upload, CLI).
func (s *Service) ParseBytes(ctx context.Context, name string, b []byte, keepRaw bool) (Result, error) {
	if len(b) == 0 {
		return Result{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		name = "upload"
	}
	return s.parse(ctx, name, OriginUpload, b, keepRaw), nil
}

func (s *Service) parse(ctx context.Context, name, origin string, b []byte, keepRaw bool) Result {
	key := CacheKey(b, keepRaw)
	if res, ok := s.cached(ctx, key); ok {
		res.Name = name
		return res
	}

	start := s.now()
	text, enc := textdecode.DecodeWithLabel(b)
	doc := parser.ParseDocument(text, keepRaw)
	elapsed := s.now().Sub(start)

	visits := 0
	for _, p := range doc.Pets {
		visits += len(p.Visits)
	}
	s.metrics.ObserveParse(origin, len(doc.Owners), len(doc.Pets), visits, elapsed)
	s.log.Info("document parsed", map[string]any{
		"document":    name,
		"encoding":    enc,
		"owners":      len(doc.Owners),
		"pets":        len(doc.Pets),
		"visits":      visits,
		"duration_ms": elapsed.Milliseconds(),
	})

	res := Result{Name: name, Encoding: enc, Document: doc}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.log.Warn("parse cache set failed", map[string]any{"document": name, "error": err})
		}
	}
	return res
}

func (s *Service) cached(ctx context.Context, key string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	res, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("parse cache get failed", map[string]any{"error": err})
		return Result{}, false
	}
	if !ok {
		s.metrics.CacheMiss()
		return Result{}, false
	}
	s.metrics.CacheHit()
	return res, true
}
