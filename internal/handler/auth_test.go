package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/juliancavero/mirestaurante-back/internal/config"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/juliancavero/mirestaurante-back/internal/service"
)

type stubAccounts struct {
	users     map[string]domain.User
	employees map[string]domain.Employee
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{
		users:     make(map[string]domain.User),
		employees: make(map[string]domain.Employee),
	}
}

func (s *stubAccounts) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	u, ok := s.users[userName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *stubAccounts) CreateWithEmployee(ctx context.Context, user domain.User, employee domain.Employee) error {
	if _, ok := s.users[user.UserName]; ok {
		return repository.ErrDuplicate
	}
	s.users[user.UserName] = user
	s.employees[employee.UserName] = employee
	return nil
}

type stubEmployees struct{ accounts *stubAccounts }

func (s stubEmployees) GetByUserName(ctx context.Context, userName string) (*domain.Employee, error) {
	e, ok := s.accounts.employees[userName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

type stubSecrets struct{ key string }

func (s *stubSecrets) Get(ctx context.Context) (string, error) {
	if s.key == "" {
		return "", repository.ErrNotFound
	}
	return s.key, nil
}

func (s *stubSecrets) Save(ctx context.Context, key string) error {
	s.key = key
	return nil
}

func newAuthRouter(accounts *stubAccounts, secrets *stubSecrets) http.Handler {
	svc := service.AuthService{
		Config: config.Config{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Users:     accounts,
		Employees: stubEmployees{accounts: accounts},
		Secrets:   secrets,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r := chi.NewRouter()
	AuthHandler{Service: &svc}.RegisterRoutes(r)
	return r
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const registerBody = `{"name":"Ana Garcia","userName":"anag","password":"s3cret","dni":"12345678Z","secretKey":"password"}`

func TestAuthHandlerRegister(t *testing.T) {
	t.Run("success returns the dni", func(t *testing.T) {
		router := newAuthRouter(newStubAccounts(), &stubSecrets{key: "password"})
		rec := postJSON(router, "/register", registerBody)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["dni"] != "12345678Z" {
			t.Fatalf("unexpected response: %v", resp)
		}
	})

	t.Run("wrong secret is forbidden", func(t *testing.T) {
		router := newAuthRouter(newStubAccounts(), &stubSecrets{key: "other"})
		rec := postJSON(router, "/register", registerBody)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("duplicate user is a conflict", func(t *testing.T) {
		router := newAuthRouter(newStubAccounts(), &stubSecrets{key: "password"})
		if rec := postJSON(router, "/register", registerBody); rec.Code != http.StatusOK {
			t.Fatalf("first register failed: %d", rec.Code)
		}
		if rec := postJSON(router, "/register", registerBody); rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		router := newAuthRouter(newStubAccounts(), &stubSecrets{key: "password"})
		rec := postJSON(router, "/register", `{"userName":"anag"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	setup := func(t *testing.T) http.Handler {
		t.Helper()
		router := newAuthRouter(newStubAccounts(), &stubSecrets{key: "password"})
		if rec := postJSON(router, "/register", registerBody); rec.Code != http.StatusOK {
			t.Fatalf("register failed: %d", rec.Code)
		}
		return router
	}

	t.Run("returns tokens and the role", func(t *testing.T) {
		router := setup(t)
		rec := postJSON(router, "/login", `{"userName":"anag","password":"s3cret"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["token"] == "" || resp["refreshToken"] == "" || resp["role"] != string(domain.RoleWaiter) {
			t.Fatalf("unexpected response: %v", resp)
		}
	})

	t.Run("bad password", func(t *testing.T) {
		router := setup(t)
		rec := postJSON(router, "/login", `{"userName":"anag","password":"nope"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("refresh round trip", func(t *testing.T) {
		router := setup(t)
		rec := postJSON(router, "/login", `{"userName":"anag","password":"s3cret"}`)
		var login map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
			t.Fatalf("decode login: %v", err)
		}
		refresh, _ := login["refreshToken"].(string)

		body, _ := json.Marshal(map[string]string{"refreshToken": refresh})
		rec = postJSON(router, "/refresh", string(body))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
	})
}
