// Command import registers students from a CSV or XLSX list without going
// through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-headhunter-backend/config"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/internal/repository/postgres"
	"go-headhunter-backend/internal/usecase"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/database"
	"go-headhunter-backend/pkg/email"
	"go-headhunter-backend/pkg/logger"
	"go-headhunter-backend/pkg/security"
	"go-headhunter-backend/pkg/studentimport"
)

func main() {
	file := flag.String("file", "", "path to the student list (.csv or .xlsx)")
	flag.Parse()
	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	if err := security.ValidateImportFile(*file, data); err != nil {
		log.Fatalf("Rejected %s: %v", *file, err)
	}
	source, err := studentimport.FromUpload(*file, data)
	if err != nil {
		log.Fatalf("Failed to open student list: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	auditLogger := audit.NewLogger("headhunter-import")
	defer func() { _ = auditLogger.Sync() }()

	var mailer domain.ActivationMailer
	if emailService := email.NewEmailService(cfg); emailService.IsConfigured() {
		mailer = emailService
	}

	registrationUC := usecase.NewRegistrationUsecase(usecase.RegistrationDeps{
		Users:      postgres.NewUserRepository(dbPool),
		HrProfiles: postgres.NewHrProfileRepository(dbPool),
		Students:   postgres.NewStudentRepository(dbPool),
		Tx:         postgres.NewTransactor(dbPool),
		Mailer:     mailer,
		Audit:      auditLogger,
	}, usecase.RegistrationOptions{
		SendStudentEmails: cfg.SendStudentActivationEmails,
		TokenTTL:          cfg.ActivationTokenTTL,
	})

	summary, err := registrationUC.RegisterStudents(ctx, source)
	if err != nil {
		log.Fatalf("Import aborted: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}
}
