package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/WINTERANDREA/vet-sheet-parser/docs"
	mem "github.com/WINTERANDREA/vet-sheet-parser/internal/adapters/storage/memory"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/export"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/middleware"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/metrics"
)

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Opcionales: si no vienen, documentos sin fuente (sólo upload) y
	// registros en memoria.
	Documents *documents.Service
	Records   *records.Service
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.Observe(log, opts.Metrics))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	docsSvc := opts.Documents
	if docsSvc == nil {
		docsSvc = documents.NewService(nil,
			documents.WithLogger(log), documents.WithMetrics(opts.Metrics))
	}
	recordsSvc := opts.Records
	if recordsSvc == nil {
		recordsSvc = records.NewService(mem.NewRecordsRepo(),
			records.WithLogger(log), records.WithMetrics(opts.Metrics))
	}

	// Rutas por módulo
	documents.RegisterRoutes(r, docsSvc)
	records.RegisterRoutes(r, recordsSvc)
	export.RegisterRoutes(r, export.NewService(recordsSvc, log))

	return r
}
