package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juliancavero/mirestaurante-back/internal/config"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/ports"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSecretMismatch     = errors.New("secret key mismatch")
	ErrUserExists         = errors.New("user name already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingFields      = errors.New("missing required fields")
)

// New hires register themselves as waiters; payroll adjusts the payslip
// later through the employees endpoints.
var defaultPayslip = decimal.NewFromInt(12000)

// AuthService is the credential gate: it guards self-registration behind
// the shared secret and exchanges credentials for role-carrying tokens.
type AuthService struct {
	Config    config.Config
	Users     ports.UserStore
	Employees ports.EmployeeStore
	Secrets   ports.SecretStore
	Logger    *slog.Logger
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	UserName     string
	Role         domain.EmployeeRole
	ExpiresAt    time.Time
}

type RegisterInput struct {
	Name      string
	UserName  string
	Password  string
	DNI       string
	SecretKey string
}

// Register creates a credential record and its employee row together.
// Nothing is written when the secret does not match or the user name is
// already taken.
func (s AuthService) Register(ctx context.Context, in RegisterInput) error {
	if in.UserName == "" || in.Password == "" || in.Name == "" || in.DNI == "" {
		return ErrMissingFields
	}

	current, err := s.Secrets.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No secret configured means registration is closed.
			return ErrSecretMismatch
		}
		return err
	}
	if in.SecretKey != current {
		return ErrSecretMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Users.CreateWithEmployee(ctx,
		domain.User{
			UserName:     in.UserName,
			PasswordHash: string(hash),
			DNI:          in.DNI,
		},
		domain.Employee{
			Name:     in.Name,
			Role:     domain.RoleWaiter,
			Payslip:  defaultPayslip,
			UserName: in.UserName,
			DNI:      in.DNI,
		})
	if err != nil {
		if repository.IsDuplicate(err) {
			return ErrUserExists
		}
		return err
	}

	s.Logger.Info("user registered", "userName", in.UserName)
	return nil
}

// Login checks the credentials against the user record and resolves the
// role from the paired employee for the token claims.
func (s AuthService) Login(ctx context.Context, userName, password string) (*AuthResult, error) {
	user, err := s.Users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	employee, err := s.Employees.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Credential without an employee row; treat as a bad login
			// rather than leaking the inconsistency.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issueTokens(userName, employee.Role)
}

// Refresh exchanges a valid refresh token for a new token pair. The role
// is resolved again so a promotion or demotion takes effect here.
func (s AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	userName, ok := claims["sub"].(string)
	if !ok || userName == "" {
		return nil, ErrInvalidToken
	}

	employee, err := s.Employees.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issueTokens(userName, employee.Role)
}

// RotateSecret replaces the stored registration secret.
func (s AuthService) RotateSecret(ctx context.Context, key string) error {
	if key == "" {
		return ErrMissingFields
	}
	return s.Secrets.Save(ctx, key)
}

func (s AuthService) CurrentSecret(ctx context.Context) (string, error) {
	return s.Secrets.Get(ctx)
}

func (s AuthService) issueTokens(userName string, role domain.EmployeeRole) (*AuthResult, error) {
	now := time.Now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        userName,
		"role":       string(role),
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        userName,
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserName:     userName,
		Role:         role,
		ExpiresAt:    accessExp,
	}, nil
}
