package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/juliancavero/mirestaurante-back/internal/config"
	"github.com/juliancavero/mirestaurante-back/internal/db"
	"github.com/juliancavero/mirestaurante-back/internal/handler"
	"github.com/juliancavero/mirestaurante-back/internal/repository"
	"github.com/juliancavero/mirestaurante-back/internal/server"
	"github.com/juliancavero/mirestaurante-back/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	tableRepo := repository.TableRepository{DB: pg}
	menuRepo := repository.MenuRepository{DB: pg}
	incomeRepo := repository.IncomeRepository{DB: pg}
	orderRepo := repository.OrderRepository{DB: pg, Income: incomeRepo, Tables: tableRepo}
	historyRepo := repository.HistoryRepository{DB: pg}
	employeeRepo := repository.EmployeeRepository{DB: pg}
	userRepo := repository.UserRepository{DB: pg}
	secretRepo := repository.SecretRepository{DB: pg}

	// services
	tableSvc := service.TableService{Tables: tableRepo}
	orderSvc := service.OrderService{Orders: orderRepo}
	authSvc := service.AuthService{
		Config:    cfg,
		Users:     userRepo,
		Employees: employeeRepo,
		Secrets:   secretRepo,
		Logger:    logger,
	}

	// handlers
	healthHandler := handler.HealthHandler{Checker: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	homeHandler := handler.HomeHandler{}
	tableHandler := handler.TableHandler{Svc: tableSvc}
	menuHandler := handler.MenuHandler{Repo: menuRepo}
	orderHandler := handler.OrderHandler{Svc: orderSvc}
	uploadHandler := handler.UploadHandler{Dir: cfg.UploadDir}
	employeeHandler := handler.EmployeeHandler{Repo: employeeRepo, Users: userRepo}
	reportHandler := handler.ReportHandler{History: historyRepo, Income: incomeRepo}

	router := server.NewRouter(cfg, logger, healthHandler, authHandler, homeHandler, tableHandler, menuHandler, orderHandler, uploadHandler, employeeHandler, reportHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
