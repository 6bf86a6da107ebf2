package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	billingStore "github.com/MrJamesThe3rd/daycare/internal/billing/store"
	"github.com/MrJamesThe3rd/daycare/internal/config"
	"github.com/MrJamesThe3rd/daycare/internal/database"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	familyStore "github.com/MrJamesThe3rd/daycare/internal/family/store"
	"github.com/MrJamesThe3rd/daycare/internal/fee"
	feeStore "github.com/MrJamesThe3rd/daycare/internal/fee/store"
	daycareHttp "github.com/MrJamesThe3rd/daycare/internal/http"
	billingHandler "github.com/MrJamesThe3rd/daycare/internal/http/billing"
	familyHandler "github.com/MrJamesThe3rd/daycare/internal/http/family"
	feeHandler "github.com/MrJamesThe3rd/daycare/internal/http/fee"
	importHandler "github.com/MrJamesThe3rd/daycare/internal/http/importcsv"
	statementHandler "github.com/MrJamesThe3rd/daycare/internal/http/statement"
	userHandler "github.com/MrJamesThe3rd/daycare/internal/http/user"
	"github.com/MrJamesThe3rd/daycare/internal/identifier"
	"github.com/MrJamesThe3rd/daycare/internal/identifier/rediscounter"
	sequenceStore "github.com/MrJamesThe3rd/daycare/internal/identifier/store"
	"github.com/MrJamesThe3rd/daycare/internal/importer"
	"github.com/MrJamesThe3rd/daycare/internal/statement"
	"github.com/MrJamesThe3rd/daycare/internal/user"
	userStore "github.com/MrJamesThe3rd/daycare/internal/user/store"
)

const overdueInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	sequences := sequenceStore.New(db)

	var counter identifier.Counter = sequences

	if cfg.Sequence.Backend == config.SequenceRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}

		counter = rediscounter.New(rdb, sequences, cfg.Redis.LockTimeout)
	}

	slog.Info("identifier sequences", "backend", cfg.Sequence.Backend)

	var (
		tokens = auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		ids    = identifier.NewGenerator(counter)

		feeService       = fee.NewService(feeStore.New(db))
		familyService    = family.NewService(familyStore.New(db), ids)
		billingService   = billing.NewService(billingStore.New(db), ids, feeService, familyService)
		userService      = user.NewService(userStore.New(db), familyService, tokens)
		statementService = statement.NewService(familyService, billingService)
		importService    = importer.NewService(billingService)
	)

	router := daycareHttp.New(tokens, cfg.CORS.AllowedOrigins, daycareHttp.Handlers{
		Users:     userHandler.NewHandler(userService),
		Fees:      feeHandler.NewHandler(feeService),
		Families:  familyHandler.NewHandler(familyService),
		Billing:   billingHandler.NewHandler(billingService),
		Statement: statementHandler.NewHandler(statementService, cfg.App.Name),
		Import:    importHandler.NewHandler(importService),
	})

	go markOverdue(ctx, billingService)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// markOverdue flips sent invoices past their due date to overdue, once at
// start and then every overdueInterval.
func markOverdue(ctx context.Context, svc *billing.Service) {
	ticker := time.NewTicker(overdueInterval)
	defer ticker.Stop()

	for {
		if _, err := svc.MarkOverdue(ctx); err != nil && ctx.Err() == nil {
			slog.Error("failed to mark overdue invoices", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
