package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/shopspring/decimal"
)

// MenuHandler exposes the carta: categories with their nested items.
type MenuHandler struct {
	Repo repository.MenuRepository
}

func (h MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/carta", h.list)
	r.Get("/cartaCategories", h.categoryNames)
	r.Get("/carta/{category}", h.getCategory)
}

func (h MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/carta/new", h.addItems)
	r.Post("/carta/newCategory", h.createCategory)
	r.Put("/carta/update", h.updateItem)
	r.Delete("/carta/deleteItem", h.deleteItem)
	r.Delete("/carta/deleteCategory", h.deleteCategory)
}

func (h MenuHandler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Repo.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MenuHandler) categoryNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.Repo.CategoryNames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (h MenuHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")
	category, err := h.Repo.GetCategory(r.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(*category))
}

func (h MenuHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	category, err := h.Repo.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(*category))
}

type menuItemPayload struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Photo string          `json:"photo"`
}

func (h MenuHandler) addItems(w http.ResponseWriter, r *http.Request) {
	// The front-end sends either a single item or a batch under "items".
	var req struct {
		Name  string            `json:"name"`
		Items []menuItemPayload `json:"items"`
		Item  *menuItemPayload  `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Item != nil {
		req.Items = append(req.Items, *req.Item)
	}
	if req.Name == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "category name and items are required")
		return
	}

	items := make([]domain.MenuItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Name == "" {
			writeError(w, http.StatusBadRequest, "item name is required")
			return
		}
		if it.Price.IsNegative() {
			writeError(w, http.StatusBadRequest, "item price must not be negative")
			return
		}
		items = append(items, domain.MenuItem{Name: it.Name, Price: it.Price, Photo: it.Photo})
	}

	created, err := h.Repo.AddItems(r.Context(), req.Name, items)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":  req.Name,
		"items": toItemResponses(created),
	})
}

func (h MenuHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required")
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "item price must not be negative")
		return
	}
	item, err := h.Repo.UpdateItem(r.Context(), req.ID, req.Name, req.Price)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h MenuHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Repo.DeleteItemByName(r.Context(), req.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"itemDelete": req.Name})
}

func (h MenuHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Repo.DeleteCategory(r.Context(), req.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categoryDelete": req.Name})
}

func toCategoryResponse(c domain.MenuCategory) map[string]any {
	return map[string]any{
		"name":  c.Name,
		"items": toItemResponses(c.Items),
	}
}

func toItemResponse(it domain.MenuItem) map[string]any {
	return map[string]any{
		"id":    it.ID,
		"name":  it.Name,
		"price": it.Price.InexactFloat64(),
		"photo": it.Photo,
	}
}

func toItemResponses(items []domain.MenuItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out
}
