package documents

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// MaxUploadBytes limita el cuerpo de POST /documents/parse.
const MaxUploadBytes = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/documents", func(dr chi.Router) {
		dr.Get("/", listDocumentsHandler(svc))
		dr.Post("/parse", parseUploadHandler(svc))
		dr.Get("/{name}/parse", parseDocumentHandler(svc))
	})
}

// listDocumentsHandler godoc
// @Summary Listar fichas
// @Description Lista las fichas .txt disponibles en la fuente configurada, ordenadas por nombre.
// @Tags documents
// @Produce json
// @Success 200 {array} DocumentInfo
// @Failure 500 {string} string "internal error"
// @Router /documents [get]
func listDocumentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if items == nil {
			items = []DocumentInfo{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// parseDocumentHandler godoc
// @Summary Parsear ficha
// @Description Decodifica y parsea una ficha de la fuente. Devuelve dueños, mascotas y visitas.
// @Tags documents
// @Produce json
// @Param name path string true "Nombre de la ficha (.txt)"
// @Param raw query bool false "Incluir el texto original en document.raw"
// @Success 200 {object} Result
// @Failure 400 {string} string "invalid document name"
// @Failure 404 {string} string "document not found"
// @Router /documents/{name}/parse [get]
func parseDocumentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Parse(r.Context(), chi.URLParam(r, "name"), keepRawParam(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// parseUploadHandler godoc
// @Summary Parsear texto subido
// @Description Parsea el cuerpo del request (bytes crudos, cualquier codificación). No persiste nada.
// @Tags documents
// @Accept plain
// @Produce json
// @Param name query string false "Nombre para logs y respuesta"
// @Param raw query bool false "Incluir el texto original en document.raw"
// @Success 200 {object} Result
// @Failure 400 {string} string "empty document"
// @Failure 413 {string} string "document too large"
// @Router /documents/parse [post]
func parseUploadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		res, err := svc.ParseBytes(r.Context(), r.URL.Query().Get("name"), body, keepRawParam(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func keepRawParam(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("raw"))
	return err == nil && v
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, ErrNoSource):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
