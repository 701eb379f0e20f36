package export

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/export/records.xlsx", exportXLSXHandler(svc))
}

// exportXLSXHandler godoc
// @Summary Exportar registros
// @Description Libro XLSX con hojas Owners, Pets y Visits.
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {string} string "internal error"
// @Router /export/records.xlsx [get]
func exportXLSXHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.XLSX(r.Context())
		if err != nil {
			svc.log.Error("export.xlsx.failed", map[string]any{"error": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		name := "records-" + time.Now().UTC().Format("20060102") + ".xlsx"
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}
