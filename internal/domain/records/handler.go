package records

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/parser"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/records", func(rr chi.Router) {
		rr.Post("/", saveDocumentHandler(svc))
		rr.Get("/owners", listOwnersHandler(svc))
		rr.Get("/owners/{ownerID}", getOwnerHandler(svc))
		rr.Put("/owners/{ownerID}", updateOwnerHandler(svc))
	})
}

// saveDocumentHandler godoc
// @Summary Guardar documento parseado
// @Description Persiste dueños, mascotas, vínculos y visitas de un documento parseado. Reimportar el mismo documento no duplica visitas.
// @Tags records
// @Accept json
// @Produce json
// @Param payload body parser.ParsedDocument true "Documento tal como lo devuelve /documents/{name}/parse (campo document)"
// @Success 201 {object} SaveResult
// @Failure 400 {string} string "invalid json"
// @Failure 500 {string} string "internal error"
// @Router /records [post]
func saveDocumentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc parser.ParsedDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		res, err := svc.Save(r.Context(), doc)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// listOwnersHandler godoc
// @Summary Listar dueños
// @Description Lista los dueños guardados ordenados por nombre, con cantidad de mascotas, visitas y fecha de la última visita.
// @Tags records
// @Produce json
// @Success 200 {array} OwnerSummary
// @Router /records/owners [get]
func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListOwners(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// getOwnerHandler godoc
// @Summary Detalle de dueño
// @Description Devuelve el dueño con sus mascotas, la línea de tiempo de dueños de cada mascota y las visitas (más recientes primero).
// @Tags records
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Success 200 {object} OwnerDetail
// @Failure 404 {string} string "owner not found"
// @Router /records/owners/{ownerID} [get]
func getOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetOwner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// updateOwnerHandler godoc
// @Summary Actualizar dueño
// @Description Reemplaza nombre, código fiscal, dirección, emails y teléfonos del dueño, y actualiza las mascotas y visitas listadas por ID.
// @Tags records
// @Accept json
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Param payload body OwnerUpdate true "Datos completos a guardar"
// @Success 200 {object} OwnerDetail
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 404 {string} string "owner, pet or visit not found"
// @Router /records/owners/{ownerID} [put]
func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in OwnerUpdate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		out, err := svc.UpdateOwner(r.Context(), chi.URLParam(r, "ownerID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
