package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/juliancavero/mirestaurante-back/internal/service"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	Svc service.OrderService
}

func (h OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/{orderid}", h.get)
	r.Post("/orders/new", h.create)
	r.Put("/orders/update", h.update)
	r.Delete("/orders/delete", h.settle)
}

type orderLinePayload struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Photo    string          `json:"photo"`
	Quantity int             `json:"quantity"`
}

func (h OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderid")
	order, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

func (h OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string             `json:"name"`
		TableID int64              `json:"tableId"`
		Items   []orderLinePayload `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	order, err := h.Svc.Create(r.Context(), req.TableID, req.Name, toOrderItems(req.Items))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

func (h OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string             `json:"_id"`
		Name  string             `json:"name"`
		Items []orderLinePayload `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	order, err := h.Svc.Update(r.Context(), req.ID, req.Name, toOrderItems(req.Items))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// settle closes the open order of a table: archive, income credit and
// table release in one store transaction.
func (h OrderHandler) settle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID int64 `json:"tableId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	archived, err := h.Svc.Settle(r.Context(), req.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no open order for this table")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tableId":   archived.TableID,
		"totalCost": archived.TotalCost.InexactFloat64(),
		"date":      archived.Date.Format("2006-01-02"),
	})
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrNoOrderItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func toOrderItems(lines []orderLinePayload) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			Name:     l.Name,
			Price:    l.Price,
			Photo:    l.Photo,
			Quantity: l.Quantity,
		})
	}
	return items
}

func toOrderResponse(o domain.Order) map[string]any {
	return map[string]any{
		"_id":       o.ID,
		"tableId":   o.TableID,
		"name":      o.Name,
		"items":     toOrderLineResponses(o.Items),
		"totalCost": o.TotalCost.InexactFloat64(),
	}
}

func toOrderLineResponses(items []domain.OrderItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"name":     it.Name,
			"price":    it.Price.InexactFloat64(),
			"photo":    it.Photo,
			"quantity": it.Quantity,
		})
	}
	return out
}
