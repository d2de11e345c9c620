package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/juliancavero/mirestaurante-back/internal/service"
)

// TableHandler exposes the dining tables under the reservation routes the
// front-end uses.
type TableHandler struct {
	Svc service.TableService
}

func (h TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reservations", h.list)
	r.Get("/takenReservations", h.listTaken)
	r.Post("/reservations/new", h.create)
	r.Put("/reservations/update", h.replace)
	r.Delete("/reservations", h.delete)
}

func (h TableHandler) list(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Svc.List(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toTableResponses(tables))
}

func (h TableHandler) listTaken(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Svc.List(r.Context(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toTableResponses(tables))
}

func (h TableHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	table, err := h.Svc.Create(r.Context(), req.Size)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTableSize) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(*table))
}

func (h TableHandler) replace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64   `json:"id"`
		Status string  `json:"status"`
		Size   int     `json:"size"`
		Name   *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	table, err := h.Svc.Replace(r.Context(), domain.Table{
		ID:        req.ID,
		Status:    domain.TableStatus(req.Status),
		Size:      req.Size,
		GuestName: req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "table not found")
		case errors.Is(err, service.ErrInvalidTableSize),
			errors.Is(err, service.ErrInvalidTableStatus),
			errors.Is(err, service.ErrGuestNameRequired),
			errors.Is(err, service.ErrGuestNameForbidden):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(*table))
}

func (h TableHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Svc.Delete(r.Context(), req.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID})
}

func toTableResponse(t domain.Table) map[string]any {
	resp := map[string]any{
		"id":     t.ID,
		"status": string(t.Status),
		"size":   t.Size,
	}
	if t.GuestName != nil {
		resp["name"] = *t.GuestName
	}
	return resp
}

func toTableResponses(tables []domain.Table) []map[string]any {
	out := make([]map[string]any, 0, len(tables))
	for _, t := range tables {
		out = append(out, toTableResponse(t))
	}
	return out
}
