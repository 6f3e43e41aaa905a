package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	healthAPI "notevault/internal/app/server/api/http/health"
	"notevault/internal/app/server/api/http/middleware"
	"notevault/internal/app/server/api/http/middleware/auth"
	loggerMW "notevault/internal/app/server/api/http/middleware/logger"
	noteAPI "notevault/internal/app/server/api/http/note"
	shareAPI "notevault/internal/app/server/api/http/share"
	syncAPI "notevault/internal/app/server/api/http/sync"
	userAPI "notevault/internal/app/server/api/http/user"
	"notevault/internal/crypto"
	"notevault/internal/domain/note"
	"notevault/internal/domain/replication"
	"notevault/internal/domain/session"
	"notevault/internal/domain/share"
	"notevault/internal/domain/user"
	"notevault/internal/infrastructure/storage/sqlite"
	"notevault/internal/logger"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Note   *noteAPI.Handler
	Share  *shareAPI.Handler
	Sync   *syncAPI.Handler
}

// New builds a *chi.Mux with every operation registered through huma.
func New(storage *sqlite.Storage, engine *replication.Engine, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Notevault API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(storage, engine, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Note.SetupRoutes(API)
	h.Share.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(storage *sqlite.Storage, engine *replication.Engine, log *slog.Logger) *Handlers {
	sessionRepo := sqlite.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	logMW := loggerMW.New(log)
	middlewares := middleware.NewContainer()

	userRepo := sqlite.NewUserRepository(storage, log)
	userService := user.NewService(userRepo, logger.Security(log))

	middlewares.Add(logMW.Middleware())
	healthHandler := healthAPI.NewHandler(engine, log, middlewares.GetAllAndClear())

	middlewares.Add(logMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, logger.Security(log), middlewares.GetAllAndClear())

	noteRepo := sqlite.NewNoteRepository(storage, log)
	lockRepo := sqlite.NewLockRepository(storage, log)
	noteService := note.NewService(noteRepo, lockRepo, crypto.NewCipher(), log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(logMW.Middleware())
	noteHandler := noteAPI.NewHandler(noteService, userService, log, middlewares.GetAllAndClear())

	shareRepo := sqlite.NewShareRepository(storage, log)
	shareService := share.NewService(shareRepo, noteService, userService, logger.Access(log))
	middlewares.Add(authMW.Middleware())
	middlewares.Add(logMW.Middleware())
	shareHandler := shareAPI.NewHandler(shareService, logger.Access(log), middlewares.GetAllAndClear())

	middlewares.Add(logMW.Middleware())
	syncHandler := syncAPI.NewHandler(engine, logger.Replication(log), middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Note:   noteHandler,
		Share:  shareHandler,
		Sync:   syncHandler,
	}
}
