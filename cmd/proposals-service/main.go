package main

import (
	"fmt"
	"os"

	"github.com/nurpe/procure-proposals/internal/auth"
	"github.com/nurpe/procure-proposals/internal/config"
	"github.com/nurpe/procure-proposals/internal/db"
	"github.com/nurpe/procure-proposals/internal/excel"
	httphandler "github.com/nurpe/procure-proposals/internal/http"
	"github.com/nurpe/procure-proposals/internal/http/middleware"
	"github.com/nurpe/procure-proposals/internal/logger"
	"github.com/nurpe/procure-proposals/internal/notify"
	"github.com/nurpe/procure-proposals/internal/pdf"
	"github.com/nurpe/procure-proposals/internal/repository"
	"github.com/nurpe/procure-proposals/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	proposalRepo := repository.NewProposalRepository(database)

	var notifier service.Notifier
	if cfg.NATS.URL != "" {
		natsNotifier, err := notify.NewNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect nats")
		}
		defer natsNotifier.Close()
		notifier = natsNotifier
	} else {
		log.Warn().Msg("NATS_URL not set, logging events instead of publishing")
		notifier = notify.NewLog(log)
	}

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	proposalService := service.NewProposalService(proposalRepo, notifier)
	exportService := service.NewExportService(proposalRepo, pdfGenerator, excelGenerator)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(proposalService, exportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting proposals service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
