package main

import (
	"context"
	"net/http"
	"time"

	"caregiver-access/internal/adapters/accounts/directory"
	"caregiver-access/internal/adapters/auth/atenea"
	pg "caregiver-access/internal/adapters/storage/postgres"
	"caregiver-access/internal/config"
	"caregiver-access/internal/platform/logger"
	"caregiver-access/internal/ports/accounts"
	"caregiver-access/internal/ports/auth"
	"caregiver-access/internal/ports/identity"
	"caregiver-access/internal/router"

	"go.uber.org/zap"
)

// @title Caregiver Access API
// @description Permisos delegados de cuidadores para cuentas de vendedor de Hands and Hope: presets de permisos, ciclo de vida de grants, evaluación de acceso y log de actividad.
// @version 1.0
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	opts := router.Options{Logger: log}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pg.Migrate(ctx, db, cfg.MigrationsDir, log); err != nil {
			cancel()
			log.Fatal("migrate database", zap.Error(err))
		}
		cancel()

		opts.DB = db
	} else {
		log.Warn("DB_DSN not set, using in-memory repositories (dev only)")
	}

	if cfg.AteneaBaseURL != "" {
		idp := atenea.NewClient(atenea.Config{
			BaseURL: cfg.AteneaBaseURL,
			APIKey:  cfg.AteneaAPIKey,
		})
		var verifier auth.AuthVerifier = atenea.NewVerifier(idp)
		var provisioner identity.Provisioner = idp
		opts.AuthVerifier = verifier
		opts.Provisioner = provisioner
	} else {
		log.Warn("ATENEA_BASE_URL not set, running in dev auth mode (X-Debug-* headers)")
	}

	if cfg.AccountsBaseURL != "" {
		dir, err := directory.NewClient(directory.Config{
			BaseURL: cfg.AccountsBaseURL,
			APIKey:  cfg.AccountsAPIKey,
		})
		if err != nil {
			log.Fatal("accounts directory client", zap.Error(err))
		}
		var d accounts.Directory = dir
		opts.Directory = d
	}

	r := router.NewRouter(opts)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", zap.String("addr", cfg.Addr()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
}
