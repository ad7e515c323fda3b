package router

import (
	"database/sql"
	"net/http"

	mem "caregiver-access/internal/adapters/storage/memory"
	pg "caregiver-access/internal/adapters/storage/postgres"
	"caregiver-access/internal/domain/activity"
	"caregiver-access/internal/domain/grants"
	"caregiver-access/internal/middleware"
	"caregiver-access/internal/ports/accounts"
	"caregiver-access/internal/ports/auth"
	"caregiver-access/internal/ports/identity"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "caregiver-access/docs" // swagger generado
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: headers X-Debug-*)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Colaboradores externos; pueden ser nil en dev.
	Provisioner identity.Provisioner
	Directory   accounts.Directory

	Logger *zap.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		grantsRepo   grants.Repository
		activityRepo activity.Repository
	)

	if opts.DB != nil {
		grantsRepo = pg.NewGrantsRepo(opts.DB)
		activityRepo = pg.NewActivityRepo(opts.DB)
	} else {
		grantsRepo = mem.NewGrantsRepo()
		activityRepo = mem.NewActivityRepo()
	}

	// Services por módulo
	grantsSvc := grants.NewService(grantsRepo, opts.Provisioner, log)
	activitySvc := activity.NewService(activityRepo, log)

	// Rutas por módulo
	grants.RegisterRoutes(r, grantsSvc, opts.Directory)
	activity.RegisterRoutes(r, activitySvc, grantsSvc)

	return r
}
