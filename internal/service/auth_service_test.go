package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juliancavero/mirestaurante-back/internal/config"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccountStore struct {
	users     map[string]domain.User
	employees map[string]domain.Employee
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		users:     make(map[string]domain.User),
		employees: make(map[string]domain.Employee),
	}
}

func (f *fakeAccountStore) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	u, ok := f.users[userName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeAccountStore) CreateWithEmployee(ctx context.Context, user domain.User, employee domain.Employee) error {
	if _, ok := f.users[user.UserName]; ok {
		return repository.ErrDuplicate
	}
	f.users[user.UserName] = user
	f.employees[employee.UserName] = employee
	return nil
}

// employeeStore adapts the employee side of the fake.
type fakeEmployeeStore struct {
	accounts *fakeAccountStore
}

func (f fakeEmployeeStore) GetByUserName(ctx context.Context, userName string) (*domain.Employee, error) {
	e, ok := f.accounts.employees[userName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

type fakeSecretStore struct {
	key   string
	saved []string
}

func (f *fakeSecretStore) Get(ctx context.Context) (string, error) {
	if f.key == "" {
		return "", repository.ErrNotFound
	}
	return f.key, nil
}

func (f *fakeSecretStore) Save(ctx context.Context, key string) error {
	f.key = key
	f.saved = append(f.saved, key)
	return nil
}

func newAuthService(accounts *fakeAccountStore, secrets *fakeSecretStore) AuthService {
	return AuthService{
		Config: config.Config{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Users:     accounts,
		Employees: fakeEmployeeStore{accounts: accounts},
		Secrets:   secrets,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func registerInput() RegisterInput {
	return RegisterInput{
		Name:      "Ana Garcia",
		UserName:  "anag",
		Password:  "s3cret",
		DNI:       "12345678Z",
		SecretKey: "password",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	t.Run("creates credential and employee together", func(t *testing.T) {
		accounts := newFakeAccountStore()
		svc := newAuthService(accounts, &fakeSecretStore{key: "password"})

		if err := svc.Register(context.Background(), registerInput()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		user, ok := accounts.users["anag"]
		if !ok {
			t.Fatalf("user not created")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
			t.Fatalf("stored hash does not match password: %v", err)
		}
		employee, ok := accounts.employees["anag"]
		if !ok {
			t.Fatalf("employee not created")
		}
		if employee.Role != domain.RoleWaiter {
			t.Fatalf("role = %s, want waiter", employee.Role)
		}
		if !employee.Payslip.Equal(defaultPayslip) {
			t.Fatalf("payslip = %s, want %s", employee.Payslip, defaultPayslip)
		}
	})

	t.Run("secret mismatch writes nothing", func(t *testing.T) {
		accounts := newFakeAccountStore()
		svc := newAuthService(accounts, &fakeSecretStore{key: "password"})

		in := registerInput()
		in.SecretKey = "wrong"
		if err := svc.Register(context.Background(), in); !errors.Is(err, ErrSecretMismatch) {
			t.Fatalf("expected ErrSecretMismatch, got %v", err)
		}
		if len(accounts.users) != 0 || len(accounts.employees) != 0 {
			t.Fatalf("partial write on rejected registration")
		}
	})

	t.Run("registration is closed without a configured secret", func(t *testing.T) {
		svc := newAuthService(newFakeAccountStore(), &fakeSecretStore{})
		if err := svc.Register(context.Background(), registerInput()); !errors.Is(err, ErrSecretMismatch) {
			t.Fatalf("expected ErrSecretMismatch, got %v", err)
		}
	})

	t.Run("duplicate user name", func(t *testing.T) {
		accounts := newFakeAccountStore()
		svc := newAuthService(accounts, &fakeSecretStore{key: "password"})

		if err := svc.Register(context.Background(), registerInput()); err != nil {
			t.Fatalf("first register: %v", err)
		}
		if err := svc.Register(context.Background(), registerInput()); !errors.Is(err, ErrUserExists) {
			t.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newAuthService(newFakeAccountStore(), &fakeSecretStore{key: "password"})
		in := registerInput()
		in.DNI = ""
		if err := svc.Register(context.Background(), in); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("expected ErrMissingFields, got %v", err)
		}
	})
}

func TestAuthServiceLogin(t *testing.T) {
	setup := func(t *testing.T) (AuthService, *fakeAccountStore) {
		t.Helper()
		accounts := newFakeAccountStore()
		svc := newAuthService(accounts, &fakeSecretStore{key: "password"})
		if err := svc.Register(context.Background(), registerInput()); err != nil {
			t.Fatalf("register: %v", err)
		}
		return svc, accounts
	}

	t.Run("issues an access token carrying the role", func(t *testing.T) {
		svc, _ := setup(t)
		res, err := svc.Login(context.Background(), "anag", "s3cret")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Role != domain.RoleWaiter {
			t.Fatalf("role = %s, want waiter", res.Role)
		}

		token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("access token does not verify: %v", err)
		}
		claims := token.Claims.(jwt.MapClaims)
		if claims["sub"] != "anag" || claims["role"] != string(domain.RoleWaiter) || claims["token_type"] != "access" {
			t.Fatalf("unexpected claims: %v", claims)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := setup(t)
		if _, err := svc.Login(context.Background(), "anag", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := setup(t)
		if _, err := svc.Login(context.Background(), "ghost", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("credential without an employee row is a bad login", func(t *testing.T) {
		svc, accounts := setup(t)
		delete(accounts.employees, "anag")
		if _, err := svc.Login(context.Background(), "anag", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	setup := func(t *testing.T) (AuthService, *fakeAccountStore, *AuthResult) {
		t.Helper()
		accounts := newFakeAccountStore()
		svc := newAuthService(accounts, &fakeSecretStore{key: "password"})
		if err := svc.Register(context.Background(), registerInput()); err != nil {
			t.Fatalf("register: %v", err)
		}
		res, err := svc.Login(context.Background(), "anag", "s3cret")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		return svc, accounts, res
	}

	t.Run("exchanges a refresh token and re-resolves the role", func(t *testing.T) {
		svc, accounts, res := setup(t)

		promoted := accounts.employees["anag"]
		promoted.Role = domain.RoleManager
		accounts.employees["anag"] = promoted

		renewed, err := svc.Refresh(context.Background(), res.RefreshToken)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if renewed.Role != domain.RoleManager {
			t.Fatalf("role = %s, want manager after promotion", renewed.Role)
		}
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		svc, _, res := setup(t)
		if _, err := svc.Refresh(context.Background(), res.AccessToken); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := setup(t)
		if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestAuthServiceRotateSecret(t *testing.T) {
	secrets := &fakeSecretStore{key: "password"}
	svc := newAuthService(newFakeAccountStore(), secrets)

	if err := svc.RotateSecret(context.Background(), ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if err := svc.RotateSecret(context.Background(), "rotated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, err := svc.CurrentSecret(context.Background())
	if err != nil || key != "rotated" {
		t.Fatalf("secret = %q err = %v, want rotated", key, err)
	}
}
