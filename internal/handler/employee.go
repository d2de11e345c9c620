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

type EmployeeHandler struct {
	Repo  repository.EmployeeRepository
	Users repository.UserRepository
}

func (h EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.list)
	r.Post("/employees", h.create)
	r.Put("/employees", h.update)
	r.Delete("/employees", h.delete)
	r.Get("/users", h.listUsers)
}

type employeePayload struct {
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	Payslip  decimal.Decimal `json:"payslip"`
	UserName string          `json:"userName"`
	DNI      string          `json:"dni"`
}

func (h EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, toEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req employeePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.UserName == "" || req.DNI == "" {
		writeError(w, http.StatusBadRequest, "name, userName and dni are required")
		return
	}
	role := domain.EmployeeRole(req.Role)
	if role == "" {
		role = domain.RoleWaiter
	}
	if !domain.ValidEmployeeRole(role) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	employee, err := h.Repo.Create(r.Context(), domain.Employee{
		Name:     req.Name,
		Role:     role,
		Payslip:  req.Payslip,
		UserName: req.UserName,
		DNI:      req.DNI,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "employee already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(*employee))
}

func (h EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	var req employeePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.DNI == "" {
		writeError(w, http.StatusBadRequest, "dni is required")
		return
	}
	if req.Role != "" && !domain.ValidEmployeeRole(domain.EmployeeRole(req.Role)) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	employee, err := h.Repo.UpdateByDNI(r.Context(), domain.Employee{
		Name:     req.Name,
		Role:     domain.EmployeeRole(req.Role),
		Payslip:  req.Payslip,
		UserName: req.UserName,
		DNI:      req.DNI,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(*employee))
}

func (h EmployeeHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"userName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Repo.DeleteByUserName(r.Context(), req.UserName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userNameDelete": req.UserName})
}

func (h EmployeeHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(users))
	for _, u := range users {
		// Password hashes stay server-side.
		resp = append(resp, map[string]any{
			"userName": u.UserName,
			"dni":      u.DNI,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toEmployeeResponse(e domain.Employee) map[string]any {
	return map[string]any{
		"name":     e.Name,
		"role":     string(e.Role),
		"payslip":  e.Payslip.InexactFloat64(),
		"userName": e.UserName,
		"dni":      e.DNI,
	}
}
