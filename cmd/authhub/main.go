package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyos/authhub/internal/authz"
	"github.com/societyos/authhub/internal/config"
	"github.com/societyos/authhub/internal/events"
	"github.com/societyos/authhub/internal/httpserver"
	"github.com/societyos/authhub/internal/logging"
	"github.com/societyos/authhub/internal/mailer"
	"github.com/societyos/authhub/internal/middleware"
	"github.com/societyos/authhub/internal/repo"
	"github.com/societyos/authhub/internal/search"
	"github.com/societyos/authhub/internal/service"
	"github.com/societyos/authhub/internal/tokens"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store := repo.New(db)
	tokenSvc := tokens.NewService(cfg.AccessSecret, cfg.RefreshSecret)
	engine := authz.NewEngine(authz.DefaultPolicy(), store)

	var notifier mailer.Notifier = mailer.Noop{}
	if cfg.SMTPHost != "" {
		notifier = &mailer.SMTP{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	var index *search.Index
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("elasticsearch unavailable, user search disabled", "error", err)
		} else {
			index = search.NewIndex(esClient, cfg.ESIndex)
		}
	}

	svc := &service.AuthService{
		Repo:            store,
		Tokens:          tokenSvc,
		Notifier:        notifier,
		Events:          producer,
		Index:           index,
		BcryptCost:      cfg.BcryptCost,
		RequireVerified: cfg.RequireEmailVerification,
		FrontendURL:     cfg.FrontendURL,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:   &httpserver.AuthHTTP{Svc: svc},
		Admin:  &httpserver.AdminHTTP{Svc: svc},
		Bearer: middleware.NewBearerAuth(tokenSvc),
		Engine: engine,
	})

	go func() {
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
